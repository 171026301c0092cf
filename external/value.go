// Package external models the host scripting runtime's dynamically typed
// values: printable scalars, byte strings, ordered lists, object handles and
// tokens carrying an attached typed value.
//
// Every value has a printable string form. Lists print with the host's list
// quoting rules, so a List and the Scalar holding its printed form are
// interchangeable wherever a list is expected.
package external

import (
	"sync"

	"golang.org/x/text/encoding/charmap"
)

// Value is a sealed interface implemented by Scalar, Bytes, List, Handle
// and *Token.
type Value interface {
	String() string
	isValue()
}

// Scalar is a printable string value. Numbers are scalars too.
type Scalar string

func (Scalar) isValue() {}

func (s Scalar) String() string { return string(s) }

// Bytes is a byte string. Its printable form maps each byte to the code
// point of the same value.
type Bytes []byte

func (Bytes) isValue() {}

func (b Bytes) String() string {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// List is an ordered sequence of values.
type List []Value

func (List) isValue() {}

func (l List) String() string { return Join(l) }

// Handle names an object registered with a handle registry.
type Handle string

func (Handle) isValue() {}

func (h Handle) String() string { return string(h) }

// Attachment is a typed value carried by a Token. Unroll converts it into
// a plain value, either fully or one level deep.
type Attachment interface {
	Unroll(recurse bool) (Value, error)
}

// Token wraps an Attachment so that a typed value can travel through the
// host runtime without being converted. Its printable form is the fully
// unrolled value, computed once.
type Token struct {
	att  Attachment
	once sync.Once
	text string
	err  error
}

func (*Token) isValue() {}

// NewToken wraps att.
func NewToken(att Attachment) *Token {
	return &Token{att: att}
}

// Attachment returns the wrapped typed value.
func (t *Token) Attachment() Attachment {
	return t.att
}

// Unroll converts the attachment into a plain value.
func (t *Token) Unroll(recurse bool) (Value, error) {
	return t.att.Unroll(recurse)
}

// Text returns the fully unrolled printable form.
func (t *Token) Text() (string, error) {
	t.once.Do(func() {
		v, err := t.att.Unroll(true)
		if err != nil {
			t.err = err
			return
		}
		t.text = v.String()
	})
	return t.text, t.err
}

func (t *Token) String() string {
	s, _ := t.Text()
	return s
}
