package dynany

import (
	"unicode/utf8"

	"github.com/wippyai/anycodec/internal/numeric"
	"github.com/wippyai/anycodec/reflection"
	"github.com/wippyai/anycodec/typecode"
)

// cursor implements reflection.Cursor and every narrowing view. The views
// are reachable only through the reflection.As helpers, which check the
// descriptor kind first.
type cursor struct {
	p   *Provider
	n   *node
	pos int
}

var (
	_ reflection.StructView   = (*cursor)(nil)
	_ reflection.UnionView    = (*cursor)(nil)
	_ reflection.SequenceView = (*cursor)(nil)
	_ reflection.EnumView     = (*cursor)(nil)
	_ reflection.ValueView    = (*cursor)(nil)
	_ reflection.BoxView      = (*cursor)(nil)
	_ reflection.FixedView    = (*cursor)(nil)
	_ reflection.ByteBlock    = (*cursor)(nil)
)

func (c *cursor) Type() *typecode.TypeCode { return c.n.tc }

func (c *cursor) ToAny() (reflection.Any, error) {
	return reflection.Any{Type: c.n.tc, Value: copyNode(c.n)}, nil
}

// Assign replaces the value in place, so component cursors held by a
// parent see the change.
func (c *cursor) Assign(v reflection.Any) error {
	n, err := c.p.adopt(c.n.tc, v)
	if err != nil {
		return err
	}
	*c.n = *n
	c.pos = 0
	return nil
}

// Destroy releases the cursor. It must not be used afterwards.
func (c *cursor) Destroy() {
	c.n = nil
}

func (c *cursor) ComponentCount() int { return c.n.componentCount() }

func (c *cursor) CurrentComponent() (reflection.Cursor, error) {
	if c.pos < 0 || c.pos >= c.n.componentCount() {
		return nil, fail("no component at position %d of %s", c.pos, typecode.Describe(c.n.tc))
	}
	comp, err := c.n.component(c.pos)
	if err != nil {
		return nil, err
	}
	return &cursor{p: c.p, n: comp}, nil
}

func (c *cursor) Next() bool {
	c.pos++
	return c.pos < c.n.componentCount()
}

func (c *cursor) Seek(i int) bool {
	c.pos = i
	return i >= 0 && i < c.n.componentCount()
}

func (c *cursor) Rewind() { c.pos = 0 }

func (c *cursor) mismatch(op string, want typecode.Kind) error {
	return fail("cannot %s %s on a cursor for %s", op, want, typecode.Describe(c.n.tc))
}

func get[T any](c *cursor, want typecode.Kind) (T, error) {
	var zero T
	if c.n.kind() != want {
		return zero, c.mismatch("get", want)
	}
	v, ok := c.n.prim.(T)
	if !ok {
		return zero, c.mismatch("get", want)
	}
	return v, nil
}

func (c *cursor) put(want typecode.Kind, v any) error {
	if c.n.kind() != want {
		return c.mismatch("insert", want)
	}
	c.n.prim = v
	return nil
}

func (c *cursor) GetBoolean() (bool, error)     { return get[bool](c, typecode.KindBoolean) }
func (c *cursor) GetOctet() (byte, error)       { return get[byte](c, typecode.KindOctet) }
func (c *cursor) GetChar() (byte, error)        { return get[byte](c, typecode.KindChar) }
func (c *cursor) GetWChar() (uint32, error)     { return get[uint32](c, typecode.KindWChar) }
func (c *cursor) GetShort() (int16, error)      { return get[int16](c, typecode.KindShort) }
func (c *cursor) GetUShort() (uint16, error)    { return get[uint16](c, typecode.KindUShort) }
func (c *cursor) GetLong() (int32, error)       { return get[int32](c, typecode.KindLong) }
func (c *cursor) GetULong() (uint32, error)     { return get[uint32](c, typecode.KindULong) }
func (c *cursor) GetLongLong() (int64, error)   { return get[int64](c, typecode.KindLongLong) }
func (c *cursor) GetULongLong() (uint64, error) { return get[uint64](c, typecode.KindULongLong) }
func (c *cursor) GetFloat() (float32, error)    { return get[float32](c, typecode.KindFloat) }
func (c *cursor) GetDouble() (float64, error)   { return get[float64](c, typecode.KindDouble) }
func (c *cursor) GetLongDouble() (float64, error) {
	return get[float64](c, typecode.KindLongDouble)
}
func (c *cursor) GetString() (string, error) { return get[string](c, typecode.KindString) }

func (c *cursor) GetWString() ([]uint32, error) {
	w, err := get[[]uint32](c, typecode.KindWString)
	if err != nil {
		return nil, err
	}
	return append([]uint32(nil), w...), nil
}

func (c *cursor) GetTypeCode() (*typecode.TypeCode, error) {
	return get[*typecode.TypeCode](c, typecode.KindTypeCode)
}

func (c *cursor) GetAny() (reflection.Any, error) {
	return get[reflection.Any](c, typecode.KindAny)
}

func (c *cursor) GetReference() (reflection.ObjectRef, error) {
	if c.n.kind() != typecode.KindObjref {
		return nil, c.mismatch("get", typecode.KindObjref)
	}
	ref, _ := c.n.prim.(reflection.ObjectRef)
	return ref, nil
}

func (c *cursor) InsertBoolean(v bool) error     { return c.put(typecode.KindBoolean, v) }
func (c *cursor) InsertOctet(v byte) error       { return c.put(typecode.KindOctet, v) }
func (c *cursor) InsertChar(v byte) error        { return c.put(typecode.KindChar, v) }
func (c *cursor) InsertShort(v int16) error      { return c.put(typecode.KindShort, v) }
func (c *cursor) InsertUShort(v uint16) error    { return c.put(typecode.KindUShort, v) }
func (c *cursor) InsertLong(v int32) error       { return c.put(typecode.KindLong, v) }
func (c *cursor) InsertULong(v uint32) error     { return c.put(typecode.KindULong, v) }
func (c *cursor) InsertLongLong(v int64) error   { return c.put(typecode.KindLongLong, v) }
func (c *cursor) InsertULongLong(v uint64) error { return c.put(typecode.KindULongLong, v) }
func (c *cursor) InsertFloat(v float32) error    { return c.put(typecode.KindFloat, v) }
func (c *cursor) InsertDouble(v float64) error   { return c.put(typecode.KindDouble, v) }
func (c *cursor) InsertLongDouble(v float64) error {
	return c.put(typecode.KindLongDouble, v)
}

func (c *cursor) maxWChar() uint32 {
	if c.p.width == 16 {
		return 0xFFFF
	}
	return utf8.MaxRune
}

func (c *cursor) InsertWChar(v uint32) error {
	if v > c.maxWChar() {
		return fail("wide character %#x does not fit %d bits", v, c.p.width)
	}
	return c.put(typecode.KindWChar, v)
}

func (c *cursor) InsertString(v string) error {
	if bound := c.n.rt().Length; bound > 0 && uint32(utf8.RuneCountInString(v)) > bound {
		return fail("string of length %d exceeds bound %d", utf8.RuneCountInString(v), bound)
	}
	return c.put(typecode.KindString, v)
}

func (c *cursor) InsertWString(v []uint32) error {
	if bound := c.n.rt().Length; bound > 0 && uint32(len(v)) > bound {
		return fail("wide string of length %d exceeds bound %d", len(v), bound)
	}
	limit := c.maxWChar()
	for _, u := range v {
		if u > limit {
			return fail("wide character %#x does not fit %d bits", u, c.p.width)
		}
	}
	return c.put(typecode.KindWString, append([]uint32(nil), v...))
}

func (c *cursor) InsertTypeCode(v *typecode.TypeCode) error {
	if v == nil {
		return fail("nil type descriptor")
	}
	return c.put(typecode.KindTypeCode, v)
}

func (c *cursor) InsertAny(v reflection.Any) error {
	if v.Type == nil {
		return fail("any without a type descriptor")
	}
	if v.Value != nil {
		n, ok := v.Value.(*node)
		if !ok {
			return fail("value of type %s was not built by this provider", typecode.Describe(v.Type))
		}
		v.Value = copyNode(n)
	}
	return c.put(typecode.KindAny, v)
}

func (c *cursor) InsertReference(v reflection.ObjectRef) error {
	if c.n.kind() != typecode.KindObjref {
		return c.mismatch("insert", typecode.KindObjref)
	}
	if id := c.n.rt().ID; v != nil && id != "" && id != typecode.ObjectID && !v.IsA(id) {
		return fail("object of type %s is not a %s", v.RepositoryID(), id)
	}
	c.n.prim = v
	return nil
}

// MemberName returns the name of the member at the current position of a
// struct, exception or valuetype.
func (c *cursor) MemberName() (string, error) {
	rt := c.n.rt()
	var members []typecode.Member
	switch rt.Kind {
	case typecode.KindStruct, typecode.KindException:
		members = rt.Members
	case typecode.KindValue:
		members = valueMembers(rt)
	default:
		return "", c.mismatch("name members of", typecode.KindStruct)
	}
	if c.pos < 0 || c.pos >= len(members) {
		return "", fail("no member at position %d of %s", c.pos, rt.DisplayName())
	}
	return members[c.pos].Name, nil
}

func (c *cursor) Discriminator() (reflection.Cursor, error) {
	if c.n.disc == nil {
		return nil, c.mismatch("get discriminator of", typecode.KindUnion)
	}
	return &cursor{p: c.p, n: c.n.disc}, nil
}

func (c *cursor) SetToDefaultMember() error {
	if c.n.kind() != typecode.KindUnion {
		return c.mismatch("select default member of", typecode.KindUnion)
	}
	return c.n.setDefaultMember()
}

func (c *cursor) HasNoActiveMember() bool {
	return c.MemberIndex() < 0
}

func (c *cursor) Member() (reflection.Cursor, error) {
	if c.n.kind() != typecode.KindUnion {
		return nil, c.mismatch("get member of", typecode.KindUnion)
	}
	m, err := c.n.component(1)
	if err != nil {
		return nil, err
	}
	return &cursor{p: c.p, n: m}, nil
}

// MemberIndex returns the index of the active union member, or -1.
func (c *cursor) MemberIndex() int {
	if c.n.kind() != typecode.KindUnion {
		return -1
	}
	c.n.syncArm()
	return c.n.arm
}

func (c *cursor) Length() int { return len(c.n.comps) }

func (c *cursor) SetLength(n int) error {
	rt := c.n.rt()
	if rt.Kind != typecode.KindSequence {
		return c.mismatch("set length of", typecode.KindSequence)
	}
	if n < 0 || (rt.Length > 0 && uint32(n) > rt.Length) {
		return fail("sequence length %d exceeds bound %d", n, rt.Length)
	}
	if n <= len(c.n.comps) {
		c.n.comps = c.n.comps[:n:n]
	} else {
		c.n.comps = append(c.n.comps, make([]*node, n-len(c.n.comps))...)
	}
	if c.pos > n {
		c.pos = n
	}
	return nil
}

func (c *cursor) AsString() (string, error) {
	ord, err := c.AsOrdinal()
	if err != nil {
		return "", err
	}
	return c.n.rt().Members[ord].Name, nil
}

func (c *cursor) SetAsString(name string) error {
	if c.n.kind() != typecode.KindEnum {
		return c.mismatch("set", typecode.KindEnum)
	}
	i := c.n.rt().MemberIndex(name)
	if i < 0 {
		return fail("%q is not a member of enum %s", name, c.n.rt().DisplayName())
	}
	c.n.prim = uint32(i)
	return nil
}

func (c *cursor) AsOrdinal() (uint32, error) {
	return get[uint32](c, typecode.KindEnum)
}

func (c *cursor) SetAsOrdinal(n uint32) error {
	if c.n.kind() != typecode.KindEnum {
		return c.mismatch("set", typecode.KindEnum)
	}
	if int(n) >= len(c.n.rt().Members) {
		return fail("ordinal %d out of range for enum %s", n, c.n.rt().DisplayName())
	}
	c.n.prim = n
	return nil
}

func (c *cursor) IsNull() bool { return c.n.null }

func (c *cursor) SetToNull() error {
	if k := c.n.kind(); k != typecode.KindValue && k != typecode.KindValueBox {
		return c.mismatch("set null on", typecode.KindValue)
	}
	c.n.null = true
	c.n.comps = nil
	c.pos = 0
	return nil
}

// SetToValue makes a null value non-null with default members. A non-null
// value is left alone.
func (c *cursor) SetToValue() error {
	if !c.n.null {
		return nil
	}
	switch c.n.kind() {
	case typecode.KindValue:
		c.n.comps = make([]*node, len(valueMembers(c.n.rt())))
	case typecode.KindValueBox:
		c.n.comps = make([]*node, 1)
	default:
		return c.mismatch("set value on", typecode.KindValue)
	}
	c.n.null = false
	c.pos = 0
	return nil
}

// Boxed returns the boxed content, making a null box non-null first.
func (c *cursor) Boxed() (reflection.Cursor, error) {
	if c.n.kind() != typecode.KindValueBox {
		return nil, c.mismatch("unbox", typecode.KindValueBox)
	}
	if err := c.SetToValue(); err != nil {
		return nil, err
	}
	comp, err := c.n.component(0)
	if err != nil {
		return nil, err
	}
	return &cursor{p: c.p, n: comp}, nil
}

func (c *cursor) FixedValue() (string, error) {
	return get[string](c, typecode.KindFixed)
}

func (c *cursor) SetFixedValue(text string) error {
	rt := c.n.rt()
	if rt.Kind != typecode.KindFixed {
		return c.mismatch("set", typecode.KindFixed)
	}
	v, err := numeric.ParseFixed(text, rt.Digits, rt.Scale)
	if err != nil {
		return fail("%q is not a fixed %d %d value: %v", text, rt.Digits, rt.Scale, err)
	}
	c.n.prim = v
	return nil
}

func (c *cursor) byteElements() bool {
	rt := c.n.rt()
	if rt.Kind != typecode.KindSequence && rt.Kind != typecode.KindArray {
		return false
	}
	k := rt.Content.Unalias().Kind
	return k == typecode.KindOctet || k == typecode.KindChar
}

func (c *cursor) Octets() ([]byte, error) {
	if !c.byteElements() {
		return nil, fail("%s is not a byte sequence", typecode.Describe(c.n.tc))
	}
	out := make([]byte, len(c.n.comps))
	for i, e := range c.n.comps {
		if e != nil {
			out[i] = e.prim.(byte)
		}
	}
	return out, nil
}

func (c *cursor) SetOctets(b []byte) error {
	if !c.byteElements() {
		return fail("%s is not a byte sequence", typecode.Describe(c.n.tc))
	}
	rt := c.n.rt()
	if rt.Kind == typecode.KindArray {
		if uint32(len(b)) != rt.Length {
			return fail("array of length %d cannot hold %d bytes", rt.Length, len(b))
		}
	} else if err := c.SetLength(len(b)); err != nil {
		return err
	}
	for i, v := range b {
		e, err := c.n.component(i)
		if err != nil {
			return err
		}
		e.prim = v
	}
	return nil
}
