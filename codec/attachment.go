package codec

import (
	"github.com/wippyai/anycodec/external"
	"github.com/wippyai/anycodec/reflection"
	"github.com/wippyai/anycodec/typecode"
)

// attachment carries a typed value inside an external token.
type attachment struct {
	c   *Codec
	val reflection.Any
}

func (a *attachment) Unroll(recurse bool) (external.Value, error) {
	return a.c.Extract(a.val, recurse)
}

// Value returns the attached value.
func (a *attachment) Value() reflection.Any {
	return a.val
}

// Attached returns the typed value carried by v, if v is a token made by a
// codec.
func Attached(v external.Value) (reflection.Any, bool) {
	tok, ok := v.(*external.Token)
	if !ok {
		return reflection.Any{}, false
	}
	att, ok := tok.Attachment().(*attachment)
	if !ok {
		return reflection.Any{}, false
	}
	return att.val, true
}

// attached returns the value carried by v when its type equals tc.
func attached(v external.Value, tc *typecode.TypeCode) (reflection.Any, bool) {
	a, ok := Attached(v)
	if !ok || !typecode.Equal(a.Type, tc) {
		return reflection.Any{}, false
	}
	return a, true
}

// byteSequence reports whether tc is an unbounded sequence of octets or
// chars.
func byteSequence(tc *typecode.TypeCode) bool {
	tc = tc.Unalias()
	return tc.Kind == typecode.KindSequence && tc.Length == 0 && byteElements(tc)
}

func byteElements(tc *typecode.TypeCode) bool {
	k := tc.Content.Unalias().Kind
	return k == typecode.KindOctet || k == typecode.KindChar
}

// wrap turns a nested value into a token. Byte sequences and values that
// may hold object references are extracted right away instead: the former
// have a cheap exact form, the latter must mint their handles now.
func (x *extractor) wrap(v reflection.Any) (external.Value, error) {
	if byteSequence(v.Type) || v.Type.ContainsObjref() {
		return x.extractAny(v)
	}
	return external.NewToken(&attachment{c: x.c, val: v}), nil
}
