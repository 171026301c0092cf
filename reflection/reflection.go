// Package reflection declares what the codec consumes from a runtime
// reflection provider: self-describing values, cursors bound to a
// descriptor, narrowing views for aggregates, and object references with
// an is-a query.
package reflection

import (
	"github.com/wippyai/anycodec/typecode"
)

// Any pairs a descriptor with a provider-owned value. Values are treated
// as immutable once an Any has been produced; sharing one by reference is
// always safe.
type Any struct {
	Type  *typecode.TypeCode
	Value any
}

// ObjectRef is an opaque object reference.
type ObjectRef interface {
	RepositoryID() string
	IsA(id string) bool
}

// TypeOracle answers inheritance questions about repository identities.
type TypeOracle interface {
	IsA(typeID, baseID string) bool
}

// Provider creates cursors. A nil existing value yields a cursor holding
// the descriptor's default value; otherwise the cursor holds a copy of it.
type Provider interface {
	CreateCursor(tc *typecode.TypeCode, existing *Any) (Cursor, error)
	WideCharWidth() int
}

// Cursor is a stateful, single-owner accessor bound to one descriptor and
// one value. Component cursors returned by CurrentComponent write through
// to their parent.
type Cursor interface {
	Type() *typecode.TypeCode
	ToAny() (Any, error)
	Assign(v Any) error
	Destroy()

	ComponentCount() int
	CurrentComponent() (Cursor, error)
	Next() bool
	Seek(i int) bool
	Rewind()

	GetBoolean() (bool, error)
	GetOctet() (byte, error)
	GetChar() (byte, error)
	GetWChar() (uint32, error)
	GetShort() (int16, error)
	GetUShort() (uint16, error)
	GetLong() (int32, error)
	GetULong() (uint32, error)
	GetLongLong() (int64, error)
	GetULongLong() (uint64, error)
	GetFloat() (float32, error)
	GetDouble() (float64, error)
	GetLongDouble() (float64, error)
	GetString() (string, error)
	GetWString() ([]uint32, error)
	GetTypeCode() (*typecode.TypeCode, error)
	GetAny() (Any, error)
	GetReference() (ObjectRef, error)

	InsertBoolean(v bool) error
	InsertOctet(v byte) error
	InsertChar(v byte) error
	InsertWChar(v uint32) error
	InsertShort(v int16) error
	InsertUShort(v uint16) error
	InsertLong(v int32) error
	InsertULong(v uint32) error
	InsertLongLong(v int64) error
	InsertULongLong(v uint64) error
	InsertFloat(v float32) error
	InsertDouble(v float64) error
	InsertLongDouble(v float64) error
	InsertString(v string) error
	InsertWString(v []uint32) error
	InsertTypeCode(v *typecode.TypeCode) error
	InsertAny(v Any) error
	InsertReference(v ObjectRef) error
}

// StructView narrows a struct or exception cursor.
type StructView interface {
	Cursor
	MemberName() (string, error)
}

// UnionView narrows a union cursor.
type UnionView interface {
	Cursor
	Discriminator() (Cursor, error)
	SetToDefaultMember() error
	HasNoActiveMember() bool
	Member() (Cursor, error)
	MemberIndex() int
}

// SequenceView narrows a sequence cursor.
type SequenceView interface {
	Cursor
	Length() int
	SetLength(n int) error
}

// EnumView narrows an enum cursor.
type EnumView interface {
	Cursor
	AsString() (string, error)
	SetAsString(name string) error
	AsOrdinal() (uint32, error)
	SetAsOrdinal(n uint32) error
}

// ValueView narrows a valuetype cursor. A non-null value exposes the
// members of its whole inheritance chain as components, base first.
type ValueView interface {
	Cursor
	IsNull() bool
	SetToNull() error
	SetToValue() error
}

// BoxView narrows a valuebox cursor.
type BoxView interface {
	Cursor
	IsNull() bool
	SetToNull() error
	Boxed() (Cursor, error)
}

// FixedView narrows a fixed-point cursor.
type FixedView interface {
	Cursor
	FixedValue() (string, error)
	SetFixedValue(text string) error
}

// ByteBlock is implemented by sequence and array cursors whose element
// type is octet or char, for moving the whole run at once.
type ByteBlock interface {
	Octets() ([]byte, error)
	SetOctets(b []byte) error
}
