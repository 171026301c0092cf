package codec

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/external"
	"github.com/wippyai/anycodec/internal/numeric"
	"github.com/wippyai/anycodec/reflection"
	"github.com/wippyai/anycodec/typecode"
)

type packFunc func(p *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error

var packers [typecode.NumKinds]packFunc

func init() {
	packers = [typecode.NumKinds]packFunc{
		typecode.KindNull:       packVoid,
		typecode.KindVoid:       packVoid,
		typecode.KindShort:      packInteger,
		typecode.KindLong:       packInteger,
		typecode.KindUShort:     packInteger,
		typecode.KindULong:      packInteger,
		typecode.KindLongLong:   packInteger,
		typecode.KindULongLong:  packInteger,
		typecode.KindFloat:      packFloat,
		typecode.KindDouble:     packFloat,
		typecode.KindLongDouble: packFloat,
		typecode.KindBoolean:    packBoolean,
		typecode.KindChar:       packChar,
		typecode.KindOctet:      packOctet,
		typecode.KindWChar:      packWChar,
		typecode.KindAny:        packAny,
		typecode.KindTypeCode:   packTypeCode,
		typecode.KindString:     packString,
		typecode.KindWString:    packWString,
		typecode.KindFixed:      packFixed,
		typecode.KindObjref:     packObjref,
		typecode.KindSequence:   packSequence,
		typecode.KindArray:      packArray,
		typecode.KindStruct:     packStruct,
		typecode.KindException:  packException,
		typecode.KindUnion:      packUnion,
		typecode.KindEnum:       packEnum,
		typecode.KindValue:      packValue,
		typecode.KindValueBox:   packValueBox,
	}
}

// packer holds the state of one Pack call.
type packer struct {
	c *Codec
}

// pack stores v into cur, whose type is tc. Every failure gains one line
// naming the descriptor and the text being packed.
func (p *packer) pack(v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	if a, ok := attached(v, cur.Type()); ok {
		Logger().Debug("pack shortcut")
		if err := cur.Assign(a); err != nil {
			return errors.Reflection(errors.PhasePack, err, "cannot assign "+typecode.Describe(tc))
		}
		return nil
	}

	var err error
	if tc.Kind == typecode.KindAlias {
		err = p.pack(v, tc.Content, cur)
		if err != nil {
			return errors.Within(err, "while packing %s", tc.ID)
		}
		return nil
	}

	rt := cur.Type().Unalias()
	if fn := packers[rt.Kind]; fn != nil {
		err = fn(p, v, rt, cur)
	} else {
		err = errors.Unsupported(errors.PhasePack, "cannot pack a value of kind "+rt.Kind.String())
	}
	if err != nil {
		return errors.Within(err, "while packing %q from %q", typecode.Describe(rt), v.String())
	}
	return nil
}

// component packs v into the component cursor comp.
func (p *packer) component(v external.Value, comp reflection.Cursor) error {
	return p.pack(v, comp.Type(), comp)
}

func packVoid(_ *packer, v external.Value, _ *typecode.TypeCode, _ reflection.Cursor) error {
	if !external.IsEmpty(v) {
		s := v.String()
		return errors.ShapeMismatch(errors.PhasePack, s, "void", fmt.Sprintf("expecting void, but got %q", s))
	}
	return nil
}

func packInteger(_ *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	t, _ := typecode.IntTarget(tc.Kind)
	text := v.String()
	fail := func(err error) error {
		if err == numeric.ErrRange {
			return errors.Range(errors.PhasePack, text, t.Name)
		}
		return errors.Mismatch(errors.PhasePack, text, t.Name)
	}

	if t.Signed {
		n, err := numeric.ParseInt(text, t)
		if err != nil {
			return fail(err)
		}
		switch tc.Kind {
		case typecode.KindShort:
			return cur.InsertShort(int16(n))
		case typecode.KindLong:
			return cur.InsertLong(int32(n))
		}
		return cur.InsertLongLong(n)
	}

	n, err := numeric.ParseUint(text, t)
	if err != nil {
		return fail(err)
	}
	switch tc.Kind {
	case typecode.KindUShort:
		return cur.InsertUShort(uint16(n))
	case typecode.KindULong:
		return cur.InsertULong(uint32(n))
	}
	return cur.InsertULongLong(n)
}

func packFloat(_ *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	f, err := external.AsFloat(v)
	if err != nil {
		return errors.Mismatch(errors.PhasePack, v.String(), typecode.Describe(tc))
	}
	switch tc.Kind {
	case typecode.KindFloat:
		return cur.InsertFloat(float32(f))
	case typecode.KindDouble:
		return cur.InsertDouble(f)
	}
	return cur.InsertLongDouble(f)
}

func packBoolean(_ *packer, v external.Value, _ *typecode.TypeCode, cur reflection.Cursor) error {
	b, err := external.AsBool(v)
	if err != nil {
		return errors.Mismatch(errors.PhasePack, v.String(), "boolean")
	}
	return cur.InsertBoolean(b)
}

// packChar accepts a one-byte string or a single code point up to 0xFF.
func packChar(_ *packer, v external.Value, _ *typecode.TypeCode, cur reflection.Cursor) error {
	if b, ok := v.(external.Bytes); ok && len(b) == 1 {
		return cur.InsertChar(b[0])
	}
	s := v.String()
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 || n != len(s) || r > 0xFF {
		return errors.Mismatch(errors.PhasePack, s, "char")
	}
	return cur.InsertChar(byte(r))
}

func packOctet(_ *packer, v external.Value, _ *typecode.TypeCode, cur reflection.Cursor) error {
	b := external.AsBytes(v)
	if len(b) != 1 {
		return errors.Mismatch(errors.PhasePack, v.String(), "octet")
	}
	return cur.InsertOctet(b[0])
}

func packWChar(p *packer, v external.Value, _ *typecode.TypeCode, cur reflection.Cursor) error {
	s := v.String()
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 || n != len(s) || (r == utf8.RuneError && n == 1) {
		return errors.Mismatch(errors.PhasePack, s, "wchar")
	}
	if p.c.provider.WideCharWidth() == 16 && r > 0xFFFF {
		return errors.Range(errors.PhasePack, s, "wchar")
	}
	return cur.InsertWChar(uint32(r))
}

func packTypeCode(_ *packer, v external.Value, _ *typecode.TypeCode, cur reflection.Cursor) error {
	tc, err := typecode.Parse(v)
	if err != nil {
		return errors.Within(err, "while packing TypeCode")
	}
	return cur.InsertTypeCode(tc)
}

func packAny(p *packer, v external.Value, _ *typecode.TypeCode, cur reflection.Cursor) error {
	l, err := external.AsList(v)
	if err != nil || len(l) != 2 {
		s := v.String()
		return errors.ShapeMismatch(errors.PhasePack, s, "any", fmt.Sprintf("not an any value: %q", s))
	}
	tc, err := typecode.Parse(l[0])
	if err != nil {
		return errors.Within(err, "while packing TypeCode in an Any")
	}
	inner, err := p.c.Pack(l[1], tc)
	if err != nil {
		return errors.Within(err, "while packing contents of an Any")
	}
	return cur.InsertAny(inner)
}

func packObjref(p *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	if v.String() == "0" {
		return cur.InsertReference(nil)
	}
	ref, err := p.c.handles.Resolve(v)
	if err != nil {
		return err
	}
	if tc.ID != "" && tc.ID != typecode.ObjectID && !ref.IsA(tc.ID) {
		return errors.HandleResolution(errors.PhasePack, v.String(),
			fmt.Sprintf("illegal type for object reference: should be %q", tc.ID))
	}
	return cur.InsertReference(ref)
}

func packFixed(_ *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	text := v.String()
	if _, err := numeric.ParseFixed(text, tc.Digits, tc.Scale); err != nil {
		if err == numeric.ErrRange {
			return errors.Range(errors.PhasePack, text, typecode.Describe(tc))
		}
		return errors.Mismatch(errors.PhasePack, text, typecode.Describe(tc))
	}
	fv, err := reflection.AsFixed(cur)
	if err != nil {
		return err
	}
	return fv.SetFixedValue(text)
}

func boundError(text string, tc *typecode.TypeCode) error {
	name := fmt.Sprintf("%s<%d>", tc.Kind, tc.Length)
	return errors.New(errors.PhasePack, errors.KindShapeMismatch).
		Text(text).
		Expected(name).
		Detail("%q exceeds boundary of %q", text, name).
		Build()
}

func packString(_ *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	s := v.String()
	if tc.Length > 0 && uint32(utf8.RuneCountInString(s)) > tc.Length {
		return boundError(s, tc)
	}
	return cur.InsertString(s)
}

func packWString(p *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	s := v.String()
	units, err := encodeWide(s, p.c.provider.WideCharWidth())
	if err != nil {
		return errors.Mismatch(errors.PhasePack, s, "wstring")
	}
	if tc.Length > 0 && uint32(len(units)) > tc.Length {
		return boundError(s, tc)
	}
	return cur.InsertWString(units)
}

// encodeWide turns text into wide string code units of the given width.
func encodeWide(s string, width int) ([]uint32, error) {
	if width != 16 {
		runes := []rune(s)
		units := make([]uint32, len(runes))
		for i, r := range runes {
			units[i] = uint32(r)
		}
		return units, nil
	}
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	buf, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	units := make([]uint32, len(buf)/2)
	for i := range units {
		units[i] = uint32(binary.LittleEndian.Uint16(buf[2*i:]))
	}
	return units, nil
}

// packRecord fills the members of a struct or exception from a flat
// name/value list given in any order.
func (p *packer) packRecord(v external.Value, l external.List, tc *typecode.TypeCode, cur reflection.Cursor) error {
	owner := recordName(tc)
	s := v.String()
	if len(l) != 2*len(tc.Members) {
		return errors.ShapeMismatch(errors.PhasePack, s, owner,
			fmt.Sprintf("%q does not match %q: wrong # of elements (got %d, expected %d)",
				s, owner, len(l), 2*len(tc.Members)))
	}

	scramble, err := scrambleMembers(l, tc.Members, owner, false)
	if err != nil {
		return err
	}
	for i, m := range tc.Members {
		if !cur.Seek(i) {
			return errors.Reflection(errors.PhasePack, nil, "cannot seek to member "+m.Name)
		}
		comp, err := cur.CurrentComponent()
		if err != nil {
			return errors.Reflection(errors.PhasePack, err, "cannot access member "+m.Name)
		}
		if err := p.component(l[scramble[i]+1], comp); err != nil {
			return errors.Within(err, "while packing member %q of %q", m.Name, owner)
		}
	}
	return nil
}

// scrambleMembers maps each declared member to the position of its name in
// the flat list l. Names are tried at their own position first. All names
// in l are checked before any member is packed. When l may carry extra
// pairs, a member that cannot be found is reported as missing.
func scrambleMembers(l external.List, members []typecode.Member, owner string, extras bool) ([]int, error) {
	seen := make(map[string]bool, len(l)/2)
	for j := 0; j+1 < len(l); j += 2 {
		name := l[j].String()
		if seen[name] {
			return nil, errors.DuplicateMember(errors.PhasePack, name)
		}
		seen[name] = true
	}

	scramble := make([]int, len(members))
	for i, m := range members {
		if 2*i < len(l) && l[2*i].String() == m.Name {
			scramble[i] = 2 * i
			continue
		}
		found := -1
		for j := 0; j+1 < len(l); j += 2 {
			if l[j].String() == m.Name {
				found = j
				break
			}
		}
		if found < 0 {
			if !extras {
				return nil, unknownName(l, members, owner)
			}
			return nil, errors.ShapeMismatch(errors.PhasePack, l.String(), owner,
				fmt.Sprintf("%q does not match %q: member %q is missing", l.String(), owner, m.Name))
		}
		scramble[i] = found
	}
	return scramble, nil
}

// unknownName reports the first name in l that is not a member.
func unknownName(l external.List, members []typecode.Member, owner string) error {
	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.Name] = true
	}
	for j := 0; j+1 < len(l); j += 2 {
		if name := l[j].String(); !known[name] {
			return errors.UnknownMember(errors.PhasePack, name, owner)
		}
	}
	return errors.UnknownMember(errors.PhasePack, "", owner)
}

func recordName(tc *typecode.TypeCode) string {
	kind := tc.Kind.String()
	if tc.Kind == typecode.KindValue {
		kind = "valuetype"
	}
	return kind + " " + tc.DisplayName()
}

func packStruct(p *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	l, err := external.AsList(v)
	if err != nil {
		s := v.String()
		return errors.ShapeMismatch(errors.PhasePack, s, recordName(tc),
			fmt.Sprintf("%q is not a structure, was expecting %q", s, recordName(tc)))
	}
	return p.packRecord(v, l, tc, cur)
}

func packException(p *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	owner := recordName(tc)
	s := v.String()
	l, err := external.AsList(v)
	if err != nil || len(l) < 1 || len(l) > 2 {
		return errors.ShapeMismatch(errors.PhasePack, s, owner,
			fmt.Sprintf("%q is not an exception, was expecting %q", s, owner))
	}
	if got := l[0].String(); got != tc.ID {
		return errors.ShapeMismatch(errors.PhasePack, s, owner,
			fmt.Sprintf("was expecting %q but got %q", owner, got))
	}
	if len(l) == 1 {
		if len(tc.Members) != 0 {
			return errors.ShapeMismatch(errors.PhasePack, s, owner,
				fmt.Sprintf("%q does not match %q: wrong # of elements (expected %d)",
					s, owner, 2*len(tc.Members)))
		}
		return nil
	}
	members, err := external.AsList(l[1])
	if err != nil {
		return errors.ShapeMismatch(errors.PhasePack, s, owner,
			fmt.Sprintf("%q is not an exception, was expecting %q", s, owner))
	}
	return p.packRecord(l[1], members, tc, cur)
}

func packSequence(p *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	sv, err := reflection.AsSequence(cur)
	if err != nil {
		return err
	}
	desc := typecode.Describe(tc)
	s := v.String()

	if byteElements(tc) {
		b := external.AsBytes(v)
		if tc.Length > 0 && uint32(len(b)) > tc.Length {
			return errors.New(errors.PhasePack, errors.KindShapeMismatch).Text(s).Expected(desc).
				Detail("%q exceeds bound of %q", s, desc).Build()
		}
		return packBytes(b, cur, sv)
	}

	l, err := external.AsList(v)
	if err != nil {
		return errors.ShapeMismatch(errors.PhasePack, s, desc,
			fmt.Sprintf("%q is not a sequence, was expecting %q", s, desc))
	}
	if tc.Length > 0 && uint32(len(l)) > tc.Length {
		return errors.New(errors.PhasePack, errors.KindShapeMismatch).Text(s).Expected(desc).
			Detail("%q exceeds bound of %q", s, desc).Build()
	}
	if err := sv.SetLength(len(l)); err != nil {
		return errors.Reflection(errors.PhasePack, err, "cannot resize "+desc)
	}
	return p.packItems(l, desc, cur)
}

func packArray(p *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	desc := typecode.Describe(tc)
	s := v.String()

	if byteElements(tc) {
		b := external.AsBytes(v)
		if uint32(len(b)) != tc.Length {
			return errors.ShapeMismatch(errors.PhasePack, s, desc,
				fmt.Sprintf("%q does not match item count of %q", s, desc))
		}
		return packBytes(b, cur, nil)
	}

	l, err := external.AsList(v)
	if err != nil || uint32(len(l)) != tc.Length {
		return errors.ShapeMismatch(errors.PhasePack, s, desc,
			fmt.Sprintf("%q does not match item count of %q", s, desc))
	}
	return p.packItems(l, desc, cur)
}

func (p *packer) packItems(l external.List, desc string, cur reflection.Cursor) error {
	for i, item := range l {
		if !cur.Seek(i) {
			return errors.Reflection(errors.PhasePack, nil, fmt.Sprintf("cannot seek to item %d of %s", i, desc))
		}
		comp, err := cur.CurrentComponent()
		if err != nil {
			return errors.Reflection(errors.PhasePack, err, fmt.Sprintf("cannot access item %d of %s", i, desc))
		}
		if err := p.component(item, comp); err != nil {
			return errors.Within(err, "while packing item # %d of %q", i, desc)
		}
	}
	return nil
}

// packBytes stores a byte string into an octet or char aggregate, as one
// block when the cursor allows it.
func packBytes(b []byte, cur reflection.Cursor, sv reflection.SequenceView) error {
	if bb, ok := reflection.AsByteBlock(cur); ok {
		return bb.SetOctets(b)
	}
	if sv != nil {
		if err := sv.SetLength(len(b)); err != nil {
			return err
		}
	}
	for i, c := range b {
		if !cur.Seek(i) {
			return errors.Reflection(errors.PhasePack, nil, fmt.Sprintf("cannot seek to byte %d", i))
		}
		comp, err := cur.CurrentComponent()
		if err != nil {
			return err
		}
		if comp.Type().Unalias().Kind == typecode.KindChar {
			err = comp.InsertChar(c)
		} else {
			err = comp.InsertOctet(c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func packEnum(_ *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	ev, err := reflection.AsEnum(cur)
	if err != nil {
		return err
	}
	s := v.String()
	if tc.MemberIndex(s) < 0 {
		return errors.New(errors.PhasePack, errors.KindUnknownMember).
			Text(s).
			Expected(tc.DisplayName()).
			Detail("%q is not member of enum %q", s, tc.DisplayName()).
			Build()
	}
	return ev.SetAsString(s)
}

func packUnion(p *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	desc := typecode.Describe(tc)
	s := v.String()
	l, err := external.AsList(v)
	if err != nil || len(l) != 2 {
		return errors.ShapeMismatch(errors.PhasePack, s, desc,
			fmt.Sprintf("%q is not a union, was expecting %q", s, desc))
	}
	uv, err := reflection.AsUnion(cur)
	if err != nil {
		return err
	}

	disc := l[0].String()
	if disc == "(default)" {
		if err := uv.SetToDefaultMember(); err != nil {
			return errors.Reflection(errors.PhasePack, err, "cannot select the default member of "+desc)
		}
	} else {
		dc, err := uv.Discriminator()
		if err != nil {
			return errors.Reflection(errors.PhasePack, err, "cannot access the discriminator of "+desc)
		}
		if err := p.component(l[0], dc); err != nil {
			return errors.Within(err, "while packing discriminator of union %q", tc.ID)
		}
	}

	if uv.HasNoActiveMember() {
		if !external.IsEmpty(l[1]) {
			m := l[1].String()
			err := errors.ShapeMismatch(errors.PhasePack, m, desc,
				fmt.Sprintf("expecting empty union, got %q", m))
			return errors.Within(err, "while packing member of union %q for discriminator %q", tc.ID, disc)
		}
		return nil
	}
	mc, err := uv.Member()
	if err != nil {
		return errors.Reflection(errors.PhasePack, err, "cannot access the member of "+desc)
	}
	if err := p.component(l[1], mc); err != nil {
		return errors.Within(err, "while packing member of union %q for discriminator %q", tc.ID, disc)
	}
	return nil
}

func packValue(p *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	vv, err := reflection.AsValue(cur)
	if err != nil {
		return err
	}
	s := v.String()
	if s == "0" {
		return vv.SetToNull()
	}

	owner := recordName(tc)
	l, err := external.AsList(v)
	if err != nil {
		return errors.ShapeMismatch(errors.PhasePack, s, owner,
			fmt.Sprintf("%q is not a valuetype, was expecting %q", s, owner))
	}
	members, owners := flatten(tc)
	if len(l) < 2*len(members) {
		return errors.ShapeMismatch(errors.PhasePack, s, owner,
			fmt.Sprintf("%q does not match %q: wrong # of elements (got %d, expected at least %d)",
				s, owner, len(l), 2*len(members)))
	}

	// Trailing pairs such as the descriptor marker are not members.
	scramble, err := scrambleMembers(l, members, owner, true)
	if err != nil {
		return err
	}
	if err := vv.SetToValue(); err != nil {
		return errors.Reflection(errors.PhasePack, err, "cannot set "+owner)
	}
	for i, m := range members {
		if !cur.Seek(i) {
			return errors.Reflection(errors.PhasePack, nil, "cannot seek to member "+m.Name)
		}
		comp, err := cur.CurrentComponent()
		if err != nil {
			return errors.Reflection(errors.PhasePack, err, "cannot access member "+m.Name)
		}
		if err := p.component(l[scramble[i]+1], comp); err != nil {
			return errors.Within(err, "while packing member %q of %q", m.Name, recordName(owners[i]))
		}
	}
	return nil
}

func packValueBox(p *packer, v external.Value, tc *typecode.TypeCode, cur reflection.Cursor) error {
	bv, err := reflection.AsBox(cur)
	if err != nil {
		return err
	}
	if v.String() == "0" {
		return bv.SetToNull()
	}
	boxed, err := bv.Boxed()
	if err != nil {
		return errors.Reflection(errors.PhasePack, err, "cannot unbox "+typecode.Describe(tc))
	}
	if err := p.component(v, boxed); err != nil {
		return errors.Within(err, "while packing %s", typecode.Describe(tc.Content))
	}
	return nil
}
