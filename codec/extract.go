package codec

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/external"
	"github.com/wippyai/anycodec/reflection"
	"github.com/wippyai/anycodec/typecode"
)

type extractFunc func(x *extractor, cur reflection.Cursor, tc *typecode.TypeCode) (external.Value, error)

var extractors [typecode.NumKinds]extractFunc

func init() {
	extractors = [typecode.NumKinds]extractFunc{
		typecode.KindNull:       exVoid,
		typecode.KindVoid:       exVoid,
		typecode.KindShort:      exShort,
		typecode.KindLong:       exLong,
		typecode.KindUShort:     exUShort,
		typecode.KindULong:      exULong,
		typecode.KindFloat:      exFloat,
		typecode.KindDouble:     exDouble,
		typecode.KindBoolean:    exBoolean,
		typecode.KindChar:       exChar,
		typecode.KindOctet:      exOctet,
		typecode.KindAny:        exAny,
		typecode.KindTypeCode:   exTypeCode,
		typecode.KindLongLong:   exLongLong,
		typecode.KindULongLong:  exULongLong,
		typecode.KindLongDouble: exLongDouble,
		typecode.KindWChar:      exWChar,
		typecode.KindString:     exString,
		typecode.KindWString:    exWString,
		typecode.KindFixed:      exFixed,
		typecode.KindObjref:     exObjref,
		typecode.KindSequence:   exSequence,
		typecode.KindArray:      exSequence,
		typecode.KindStruct:     exStruct,
		typecode.KindException:  exException,
		typecode.KindUnion:      exUnion,
		typecode.KindEnum:       exEnum,
		typecode.KindValue:      exValue,
		typecode.KindValueBox:   exValueBox,
	}
}

// extractor holds the state of one Extract call.
type extractor struct {
	c       *Codec
	recurse bool
}

func (x *extractor) extractAny(v reflection.Any) (external.Value, error) {
	cur, err := x.c.provider.CreateCursor(v.Type, &v)
	if err != nil {
		return nil, errors.Reflection(errors.PhaseExtract, err, "cannot read a value of type "+typecode.Describe(v.Type))
	}
	defer cur.Destroy()
	return x.extract(cur)
}

// extract dispatches on the unaliased kind of the cursor's type.
func (x *extractor) extract(cur reflection.Cursor) (external.Value, error) {
	cur.Rewind()
	tc := cur.Type().Unalias()
	if tc == nil {
		return nil, errors.InvalidInput(errors.PhaseExtract, "cursor without a type descriptor")
	}
	fn := extractors[tc.Kind]
	if fn == nil {
		return nil, errors.Unsupported(errors.PhaseExtract, "cannot extract a value of kind "+tc.Kind.String())
	}
	return fn(x, cur, tc)
}

// component extracts a nested value. Without recurse, aggregates become
// tokens.
func (x *extractor) component(cur reflection.Cursor) (external.Value, error) {
	if x.recurse || !aggregate(cur.Type()) {
		return x.extract(cur)
	}
	v, err := cur.ToAny()
	if err != nil {
		return nil, errors.Reflection(errors.PhaseExtract, err, "cannot copy a nested value")
	}
	return x.wrap(v)
}

func aggregate(tc *typecode.TypeCode) bool {
	switch tc.Unalias().Kind {
	case typecode.KindStruct, typecode.KindException, typecode.KindUnion,
		typecode.KindSequence, typecode.KindArray, typecode.KindValue,
		typecode.KindValueBox, typecode.KindAny:
		return true
	}
	return false
}

// each visits the components of cur in order.
func each(cur reflection.Cursor, fn func(i int, comp reflection.Cursor) error) error {
	n := cur.ComponentCount()
	for i := 0; i < n; i++ {
		if !cur.Seek(i) {
			return errors.Reflection(errors.PhaseExtract, nil, "cannot seek to component")
		}
		comp, err := cur.CurrentComponent()
		if err != nil {
			return err
		}
		if err := fn(i, comp); err != nil {
			return err
		}
	}
	return nil
}

func exVoid(*extractor, reflection.Cursor, *typecode.TypeCode) (external.Value, error) {
	return external.List{}, nil
}

func exShort(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetShort()
	return external.Int(int64(v)), err
}

func exLong(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetLong()
	return external.Int(int64(v)), err
}

func exLongLong(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetLongLong()
	return external.Int(v), err
}

func exUShort(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetUShort()
	return external.Uint(uint64(v)), err
}

func exULong(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetULong()
	return external.Uint(uint64(v)), err
}

func exULongLong(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetULongLong()
	return external.Uint(v), err
}

func exFloat(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetFloat()
	return external.Float(float64(v)), err
}

func exDouble(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetDouble()
	return external.Float(v), err
}

func exLongDouble(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetLongDouble()
	return external.Float(v), err
}

func exBoolean(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetBoolean()
	return external.Bool(v), err
}

func exChar(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetChar()
	return external.Scalar(external.Bytes{v}.String()), err
}

func exOctet(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetOctet()
	return external.Bytes{v}, err
}

func exWChar(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetWChar()
	return external.Scalar(string(rune(v))), err
}

func exString(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetString()
	return external.Scalar(v), err
}

func exWString(x *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	units, err := cur.GetWString()
	if err != nil {
		return nil, err
	}
	s, err := decodeWide(units, x.c.provider.WideCharWidth())
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err, "malformed wide string")
	}
	return external.Scalar(s), nil
}

// decodeWide turns wide string code units into text. 16-bit units are
// UTF-16; 32-bit units are code points.
func decodeWide(units []uint32, width int) (string, error) {
	if width != 16 {
		runes := make([]rune, len(units))
		for i, u := range units {
			runes[i] = rune(u)
		}
		return string(runes), nil
	}
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(u))
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(buf)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func exTypeCode(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	v, err := cur.GetTypeCode()
	if err != nil {
		return nil, err
	}
	return typecode.Print(v), nil
}

func exAny(x *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	inner, err := cur.GetAny()
	if err != nil {
		return nil, err
	}
	var content external.Value
	if x.recurse || !aggregate(inner.Type) {
		content, err = x.extractAny(inner)
	} else {
		content, err = x.wrap(inner)
	}
	if err != nil {
		return nil, err
	}
	return external.List{typecode.Print(inner.Type), content}, nil
}

func exObjref(x *extractor, cur reflection.Cursor, tc *typecode.TypeCode) (external.Value, error) {
	ref, err := cur.GetReference()
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return external.Scalar("0"), nil
	}
	h, err := x.c.handles.Mint(ref)
	if err != nil {
		return nil, errors.Within(err, "while extracting %q", typecode.Describe(tc))
	}
	x.c.handles.Refine(h, tc.ID)
	return h, nil
}

func exFixed(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	fv, err := reflection.AsFixed(cur)
	if err != nil {
		return nil, err
	}
	s, err := fv.FixedValue()
	return external.Scalar(s), err
}

func exStruct(x *extractor, cur reflection.Cursor, tc *typecode.TypeCode) (external.Value, error) {
	out := make(external.List, 0, 2*len(tc.Members))
	err := each(cur, func(i int, comp reflection.Cursor) error {
		v, err := x.component(comp)
		if err != nil {
			return err
		}
		out = append(out, external.Scalar(tc.Members[i].Name), v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func exException(x *extractor, cur reflection.Cursor, tc *typecode.TypeCode) (external.Value, error) {
	members, err := exStruct(x, cur, tc)
	if err != nil {
		return nil, err
	}
	return external.List{external.Scalar(tc.ID), members}, nil
}

func exSequence(x *extractor, cur reflection.Cursor, tc *typecode.TypeCode) (external.Value, error) {
	if byteElements(tc) {
		return extractBytes(cur)
	}
	out := make(external.List, 0, cur.ComponentCount())
	err := each(cur, func(_ int, comp reflection.Cursor) error {
		v, err := x.component(comp)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// extractBytes reads an octet or char aggregate as one byte string.
func extractBytes(cur reflection.Cursor) (external.Value, error) {
	if bb, ok := reflection.AsByteBlock(cur); ok {
		b, err := bb.Octets()
		if err != nil {
			return nil, err
		}
		return external.Bytes(b), nil
	}
	out := make(external.Bytes, 0, cur.ComponentCount())
	err := each(cur, func(_ int, comp reflection.Cursor) error {
		var b byte
		var err error
		if comp.Type().Unalias().Kind == typecode.KindChar {
			b, err = comp.GetChar()
		} else {
			b, err = comp.GetOctet()
		}
		out = append(out, b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func exEnum(_ *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	ev, err := reflection.AsEnum(cur)
	if err != nil {
		return nil, err
	}
	name, err := ev.AsString()
	return external.Scalar(name), err
}

func exUnion(x *extractor, cur reflection.Cursor, tc *typecode.TypeCode) (external.Value, error) {
	uv, err := reflection.AsUnion(cur)
	if err != nil {
		return nil, err
	}

	var disc external.Value
	if tc.DefaultIndex >= 0 && uv.MemberIndex() == tc.DefaultIndex {
		disc = external.Scalar("(default)")
	} else {
		dc, err := uv.Discriminator()
		if err != nil {
			return nil, err
		}
		if disc, err = x.extract(dc); err != nil {
			return nil, err
		}
	}

	if uv.HasNoActiveMember() {
		return external.List{disc, external.List{}}, nil
	}
	mc, err := uv.Member()
	if err != nil {
		return nil, err
	}
	member, err := x.component(mc)
	if err != nil {
		return nil, err
	}
	return external.List{disc, member}, nil
}

// flatten lists a valuetype's members across its chain, base members
// first, with the descriptor that declares each.
func flatten(tc *typecode.TypeCode) ([]typecode.Member, []*typecode.TypeCode) {
	chain := tc.Chain()
	var members []typecode.Member
	var owners []*typecode.TypeCode
	for i := len(chain) - 1; i >= 0; i-- {
		for _, m := range chain[i].Members {
			members = append(members, m)
			owners = append(owners, chain[i])
		}
	}
	return members, owners
}

func exValue(x *extractor, cur reflection.Cursor, tc *typecode.TypeCode) (external.Value, error) {
	vv, err := reflection.AsValue(cur)
	if err != nil {
		return nil, err
	}
	if vv.IsNull() {
		return external.Scalar("0"), nil
	}

	members, _ := flatten(tc)
	out := make(external.List, 0, 2*len(members)+2)
	err = each(cur, func(i int, comp reflection.Cursor) error {
		if i >= len(members) {
			return errors.Reflection(errors.PhaseExtract, nil, "valuetype has more components than members")
		}
		v, err := x.component(comp)
		if err != nil {
			return err
		}
		out = append(out, external.Scalar(members[i].Name), v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return append(out, external.Scalar("_tc_"), typecode.Print(tc)), nil
}

func exValueBox(x *extractor, cur reflection.Cursor, _ *typecode.TypeCode) (external.Value, error) {
	bv, err := reflection.AsBox(cur)
	if err != nil {
		return nil, err
	}
	if bv.IsNull() {
		return external.Scalar("0"), nil
	}
	boxed, err := bv.Boxed()
	if err != nil {
		return nil, err
	}
	return x.extract(boxed)
}
