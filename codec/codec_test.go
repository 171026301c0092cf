package codec

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/anycodec/dynany"
	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/external"
	"github.com/wippyai/anycodec/handle"
	"github.com/wippyai/anycodec/reflection"
	"github.com/wippyai/anycodec/typecode"
)

type fixture struct {
	codec    *Codec
	provider *dynany.Provider
	registry *handle.Registry
}

func setup(t *testing.T, opts ...dynany.Option) *fixture {
	t.Helper()
	p := dynany.New(opts...)
	reg := handle.NewRegistry(p.Hierarchy())
	t.Cleanup(func() { _ = reg.Close() })
	return &fixture{codec: New(p, reg), provider: p, registry: reg}
}

func prim(k typecode.Kind) *typecode.TypeCode { return typecode.Primitive(k) }

func pointType() *typecode.TypeCode {
	return typecode.NewStruct("IDL:Point:1.0", "Point", []typecode.Member{
		{Name: "x", Type: prim(typecode.KindLong)},
		{Name: "y", Type: prim(typecode.KindLong)},
	})
}

func endpointType() *typecode.TypeCode {
	return typecode.NewStruct("IDL:Endpoint:1.0", "Endpoint", []typecode.Member{
		{Name: "host", Type: typecode.String},
		{Name: "port", Type: prim(typecode.KindUShort)},
	})
}

func placeType() *typecode.TypeCode {
	return typecode.NewStruct("IDL:Place:1.0", "Place", []typecode.Member{
		{Name: "name", Type: typecode.String},
		{Name: "at", Type: pointType()},
	})
}

func shapeType() *typecode.TypeCode {
	rect := typecode.NewStruct("IDL:Rect:1.0", "Rect", []typecode.Member{
		{Name: "w", Type: prim(typecode.KindDouble)},
		{Name: "h", Type: prim(typecode.KindDouble)},
	})
	return typecode.NewUnion("IDL:Shape:1.0", "Shape", prim(typecode.KindLong), []typecode.Member{
		{Name: "radius", Type: prim(typecode.KindDouble), Label: 1},
		{Name: "rect", Type: rect, Label: 2},
		{Name: "label", Type: typecode.String},
	}, 2)
}

func optionType() *typecode.TypeCode {
	return typecode.NewUnion("IDL:Option:1.0", "Option", prim(typecode.KindBoolean), []typecode.Member{
		{Name: "some", Type: prim(typecode.KindLong), Label: 1},
	}, -1)
}

func derivedType() *typecode.TypeCode {
	base := typecode.NewValue("IDL:Base:1.0", "Base", typecode.ModNone, nil, []typecode.Member{
		{Name: "id", Type: prim(typecode.KindLong), Visibility: typecode.Public},
	})
	return typecode.NewValue("IDL:Derived:1.0", "Derived", typecode.ModTruncatable, base, []typecode.Member{
		{Name: "note", Type: typecode.NewString(16), Visibility: typecode.Private},
	})
}

func (f *fixture) pack(t *testing.T, text string, tc *typecode.TypeCode) reflection.Any {
	t.Helper()
	v, err := f.codec.Pack(external.Scalar(text), tc)
	require.NoError(t, err)
	return v
}

func (f *fixture) extract(t *testing.T, v reflection.Any) string {
	t.Helper()
	out, err := f.codec.Extract(v, true)
	require.NoError(t, err)
	return out.String()
}

func asError(t *testing.T, err error) *errors.Error {
	t.Helper()
	require.Error(t, err)
	var e *errors.Error
	require.True(t, stderrors.As(err, &e), "expected *errors.Error, got %T", err)
	return e
}

func TestRoundTrip(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		tc   *typecode.TypeCode
		in   string
		want string
	}{
		{"void", prim(typecode.KindVoid), "", ""},
		{"short hex", prim(typecode.KindShort), "0x10", "16"},
		{"long negative", prim(typecode.KindLong), "-42", "-42"},
		{"ushort max", prim(typecode.KindUShort), "65535", "65535"},
		{"ulonglong", prim(typecode.KindULongLong), "18446744073709551615", "18446744073709551615"},
		{"longlong min", prim(typecode.KindLongLong), "-9223372036854775808", "-9223372036854775808"},
		{"boolean word", prim(typecode.KindBoolean), "yes", "1"},
		{"double", prim(typecode.KindDouble), "1.5", "1.5"},
		{"double integral", prim(typecode.KindDouble), "2", "2.0"},
		{"float", prim(typecode.KindFloat), "0.25", "0.25"},
		{"char", prim(typecode.KindChar), "a", "a"},
		{"octet", prim(typecode.KindOctet), "A", "A"},
		{"wchar", prim(typecode.KindWChar), "é", "é"},
		{"string", typecode.String, "hello world", "hello world"},
		{"bounded string", typecode.NewString(5), "héllo", "héllo"},
		{"wstring", typecode.WString, "héllo wörld", "héllo wörld"},
		{"enum", typecode.NewEnum("IDL:Color:1.0", "Color", []string{"RED", "GREEN", "BLUE"}), "GREEN", "GREEN"},
		{"fixed", typecode.NewFixed(5, 2), "12.3", "12.30"},
		{"struct", pointType(), "x 1 y 2", "x 1 y 2"},
		{"struct reordered", pointType(), "y 2 x 1", "x 1 y 2"},
		{"nested struct", placeType(), "name home at {x 3 y 4}", "name home at {x 3 y 4}"},
		{"sequence", typecode.NewSequence(prim(typecode.KindLong), 0), "1 2 3", "1 2 3"},
		{"array", typecode.NewArray(prim(typecode.KindShort), 2), "4 5", "4 5"},
		{"octet sequence", typecode.NewSequence(prim(typecode.KindOctet), 0), "abc", "abc"},
		{"char array", typecode.NewArray(prim(typecode.KindChar), 3), "xyz", "xyz"},
		{"union", shapeType(), "1 2.5", "1 2.5"},
		{"union struct member", shapeType(), "2 {w 1 h 2}", "2 {w 1.0 h 2.0}"},
		{"union default", shapeType(), "(default) hi", "(default) hi"},
		{"union no member", optionType(), "0 {}", "0 {}"},
		{"exception", typecode.NewException("IDL:Oops:1.0", "Oops", []typecode.Member{
			{Name: "reason", Type: typecode.String},
		}), "IDL:Oops:1.0 {reason boom}", "IDL:Oops:1.0 {reason boom}"},
		{"typecode", prim(typecode.KindTypeCode), "sequence long", "sequence long"},
		{"any", prim(typecode.KindAny), "long 5", "long 5"},
		{"alias", typecode.NewAlias("IDL:Count:1.0", "Count", prim(typecode.KindShort)), "7", "7"},
		{"valuebox", typecode.NewValueBox("IDL:Name:1.0", "Name", typecode.String), "hi", "hi"},
		{"valuebox null", typecode.NewValueBox("IDL:Name:1.0", "Name", typecode.String), "0", "0"},
		{"value null", derivedType(), "0", "0"},
		{"null object", typecode.Object, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := f.pack(t, tt.in, tt.tc)
			assert.Equal(t, tt.want, f.extract(t, v))

			again := f.pack(t, tt.want, tt.tc)
			assert.True(t, dynany.Equal(v, again), "re-packing the extracted form must give an equal value")
		})
	}
}

func TestMemberOrder(t *testing.T) {
	f := setup(t)

	a := f.pack(t, "x 1 y 2", pointType())
	b := f.pack(t, "y 2 x 1", pointType())
	assert.True(t, dynany.Equal(a, b))
}

func TestRecordNames(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name   string
		in     string
		kind   errors.Kind
		detail string
	}{
		{"duplicate", "x 1 x 2", errors.KindUnknownMember, `member "x" appears twice`},
		{"unknown", "x 1 z 2", errors.KindUnknownMember, `"z" is not a member of "struct Point"`},
		{"too few", "x 1", errors.KindShapeMismatch, "wrong # of elements (got 2, expected 4)"},
		{"too many", "x 1 y 2 z 3", errors.KindShapeMismatch, "wrong # of elements (got 6, expected 4)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.codec.Pack(external.Scalar(tt.in), pointType())
			e := asError(t, err)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Contains(t, e.Detail, tt.detail)
		})
	}
}

func TestDuplicateBeforePacking(t *testing.T) {
	f := setup(t)

	// The bad value of y would fail first if members were packed before
	// the names were checked.
	_, err := f.codec.Pack(external.Scalar("y bad y 3"), pointType())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownMember))
}

func TestUnsignedShortBoundary(t *testing.T) {
	f := setup(t)
	ushort := prim(typecode.KindUShort)

	v, err := f.codec.Pack(external.Scalar("65535"), ushort)
	require.NoError(t, err)
	assert.Equal(t, "65535", f.extract(t, v))

	_, err = f.codec.Pack(external.Scalar("65536"), ushort)
	assert.True(t, stderrors.Is(err, errors.ErrRange))
	assert.Contains(t, err.Error(), `"65536" does not fit "unsigned short"`)

	_, err = f.codec.Pack(external.Scalar("-1"), ushort)
	assert.Error(t, err)

	_, err = f.codec.Pack(external.Scalar("12abc"), ushort)
	assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
	assert.Contains(t, err.Error(), `"12abc" does not match "unsigned short"`)

	_, err = f.codec.Pack(external.Scalar(""), ushort)
	assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
}

func TestIntegerLiterals(t *testing.T) {
	f := setup(t)

	tests := []struct {
		in   string
		kind typecode.Kind
		want string
	}{
		{" 12 ", typecode.KindLong, "12"},
		{"+7", typecode.KindShort, "7"},
		{"017", typecode.KindLong, "15"},
		{"0xff", typecode.KindULong, "255"},
		{"3.000", typecode.KindLong, "3"},
		{"-32768", typecode.KindShort, "-32768"},
		{"4294967295", typecode.KindULong, "4294967295"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := f.pack(t, tt.in, prim(tt.kind))
			assert.Equal(t, tt.want, f.extract(t, v))
		})
	}

	_, err := f.codec.Pack(external.Scalar("32768"), prim(typecode.KindShort))
	assert.True(t, stderrors.Is(err, errors.ErrRange))
	_, err = f.codec.Pack(external.Scalar("4294967296"), prim(typecode.KindULong))
	assert.True(t, stderrors.Is(err, errors.ErrRange))
}

func TestByteFastPath(t *testing.T) {
	f := setup(t)

	t.Run("empty sequence", func(t *testing.T) {
		v := f.pack(t, "", typecode.NewSequence(prim(typecode.KindOctet), 0))
		out, err := f.codec.Extract(v, true)
		require.NoError(t, err)
		require.IsType(t, external.Bytes{}, out)
		assert.Empty(t, out)
	})

	t.Run("binary bytes", func(t *testing.T) {
		in := external.Bytes{0x00, 0xff, 0x7f}
		v, err := f.codec.Pack(in, typecode.NewSequence(prim(typecode.KindOctet), 0))
		require.NoError(t, err)
		out, err := f.codec.Extract(v, true)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("over bound", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("abcd"), typecode.NewSequence(prim(typecode.KindOctet), 3))
		assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
		assert.False(t, stderrors.Is(err, errors.ErrRange))
		assert.Contains(t, err.Error(), "exceeds bound")
	})

	t.Run("exact array length", func(t *testing.T) {
		v := f.pack(t, "abcd", typecode.NewArray(prim(typecode.KindOctet), 4))
		assert.Equal(t, "abcd", f.extract(t, v))
	})

	t.Run("short array", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("abc"), typecode.NewArray(prim(typecode.KindOctet), 4))
		assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
		assert.Contains(t, err.Error(), "does not match item count")
	})

	t.Run("aliased octets", func(t *testing.T) {
		octets := typecode.NewAlias("IDL:Blob:1.0", "Blob",
			typecode.NewSequence(typecode.NewAlias("IDL:Byte:1.0", "Byte", prim(typecode.KindOctet)), 0))
		v := f.pack(t, "xyz", octets)
		out, err := f.codec.Extract(v, true)
		require.NoError(t, err)
		assert.Equal(t, external.Bytes("xyz"), out)
	})
}

func TestSequenceBounds(t *testing.T) {
	f := setup(t)
	bounded := typecode.NewSequence(prim(typecode.KindLong), 2)

	v := f.pack(t, "1 2", bounded)
	assert.Equal(t, "1 2", f.extract(t, v))

	_, err := f.codec.Pack(external.Scalar("1 2 3"), bounded)
	assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
	assert.False(t, stderrors.Is(err, errors.ErrRange))
	assert.Contains(t, err.Error(), "exceeds bound")

	_, err = f.codec.Pack(external.Scalar("1 2 3"), typecode.NewArray(prim(typecode.KindLong), 2))
	assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))

	_, err = f.codec.Pack(external.Scalar("1 x"), bounded)
	e := asError(t, err)
	assert.Contains(t, e.Message(), `while packing item # 1 of "sequence long 2"`)
}

func TestStringBounds(t *testing.T) {
	f := setup(t)

	_, err := f.codec.Pack(external.Scalar("abcdef"), typecode.NewString(5))
	assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
	assert.Contains(t, err.Error(), `"abcdef" exceeds boundary of "string<5>"`)

	_, err = f.codec.Pack(external.Scalar("abc"), typecode.NewWString(2))
	assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
	assert.Contains(t, err.Error(), `exceeds boundary of "wstring<2>"`)
}

func TestWideCharWidth(t *testing.T) {
	narrow := setup(t, dynany.WithWideCharWidth(16))
	wide := setup(t)

	v, err := narrow.codec.Pack(external.Scalar("a😀b"), typecode.WString)
	require.NoError(t, err)
	assert.Equal(t, "a😀b", narrow.extract(t, v))

	_, err = narrow.codec.Pack(external.Scalar("😀"), typecode.NewWString(1))
	assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch), "a surrogate pair takes two 16-bit units")

	v, err = wide.codec.Pack(external.Scalar("😀"), typecode.NewWString(1))
	require.NoError(t, err)
	assert.Equal(t, "😀", wide.extract(t, v))

	_, err = narrow.codec.Pack(external.Scalar("😀"), prim(typecode.KindWChar))
	assert.True(t, stderrors.Is(err, errors.ErrRange))

	v, err = wide.codec.Pack(external.Scalar("😀"), prim(typecode.KindWChar))
	require.NoError(t, err)
	assert.Equal(t, "😀", wide.extract(t, v))
}

func TestCharAndOctet(t *testing.T) {
	f := setup(t)

	v := f.pack(t, "ÿ", prim(typecode.KindChar))
	assert.Equal(t, "ÿ", f.extract(t, v))

	_, err := f.codec.Pack(external.Scalar("ab"), prim(typecode.KindChar))
	assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
	_, err = f.codec.Pack(external.Scalar("€"), prim(typecode.KindChar))
	assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
	_, err = f.codec.Pack(external.Scalar(""), prim(typecode.KindOctet))
	assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
}

func TestFixed(t *testing.T) {
	f := setup(t)
	money := typecode.NewFixed(5, 2)

	v := f.pack(t, "-1.5", money)
	assert.Equal(t, "-1.50", f.extract(t, v))

	_, err := f.codec.Pack(external.Scalar("12345"), money)
	assert.True(t, stderrors.Is(err, errors.ErrRange))
	_, err = f.codec.Pack(external.Scalar("twelve"), money)
	assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
}

func TestEnumUnknown(t *testing.T) {
	f := setup(t)
	color := typecode.NewEnum("IDL:Color:1.0", "Color", []string{"RED", "GREEN"})

	_, err := f.codec.Pack(external.Scalar("PURPLE"), color)
	e := asError(t, err)
	assert.Equal(t, errors.KindUnknownMember, e.Kind)
	assert.Equal(t, `"PURPLE" is not member of enum "Color"`, e.Detail)
}

func TestUnion(t *testing.T) {
	f := setup(t)

	t.Run("default arm", func(t *testing.T) {
		v := f.pack(t, "(default) text", shapeType())
		assert.Equal(t, "(default) text", f.extract(t, v))
	})

	t.Run("unlisted discriminator selects default", func(t *testing.T) {
		v := f.pack(t, "9 text", shapeType())
		assert.Equal(t, "(default) text", f.extract(t, v))
	})

	t.Run("no active member needs empty slot", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("0 5"), optionType())
		e := asError(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
		assert.Contains(t, e.Detail, `expecting empty union, got "5"`)
		assert.Equal(t, typecode.Describe(optionType()), e.Expected)
		assert.Contains(t, e.Message(), `while packing member of union "IDL:Option:1.0" for discriminator "0"`)
	})

	t.Run("not a pair", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("1 2 3"), shapeType())
		assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
	})

	t.Run("bad discriminator", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("x 1"), shapeType())
		e := asError(t, err)
		assert.Contains(t, e.Message(), `while packing discriminator of union "IDL:Shape:1.0"`)
	})

	t.Run("bad member", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("1 wide"), shapeType())
		e := asError(t, err)
		assert.Contains(t, e.Message(), `while packing member of union "IDL:Shape:1.0" for discriminator "1"`)
	})

	t.Run("default without default arm", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("(default) 1"), optionType())
		assert.True(t, stderrors.Is(err, errors.ErrReflection))
	})
}

func TestException(t *testing.T) {
	f := setup(t)
	oops := typecode.NewException("IDL:Oops:1.0", "Oops", []typecode.Member{
		{Name: "reason", Type: typecode.String},
	})
	bare := typecode.NewException("IDL:Bare:1.0", "Bare", nil)

	v := f.pack(t, "IDL:Bare:1.0", bare)
	assert.Equal(t, "IDL:Bare:1.0 {}", f.extract(t, v))

	_, err := f.codec.Pack(external.Scalar("IDL:Other:1.0 {reason x}"), oops)
	e := asError(t, err)
	assert.Contains(t, e.Detail, `was expecting "exception Oops" but got "IDL:Other:1.0"`)

	_, err = f.codec.Pack(external.Scalar("IDL:Oops:1.0"), oops)
	e = asError(t, err)
	assert.Contains(t, e.Detail, "wrong # of elements (expected 2)")
}

func TestValueType(t *testing.T) {
	f := setup(t)
	tc := derivedType()

	v := f.pack(t, "note hi id 7", tc)
	out, err := f.codec.Extract(v, true)
	require.NoError(t, err)

	l, err := external.AsList(out)
	require.NoError(t, err)
	require.Len(t, l, 6)
	assert.Equal(t, "id", l[0].String(), "base members come first")
	assert.Equal(t, "7", l[1].String())
	assert.Equal(t, "note", l[2].String())
	assert.Equal(t, "hi", l[3].String())
	assert.Equal(t, "_tc_", l[4].String())

	printed, err := typecode.Parse(l[5])
	require.NoError(t, err)
	assert.True(t, typecode.Equal(tc, printed))

	again, err := f.codec.Pack(out, tc)
	require.NoError(t, err)
	assert.True(t, dynany.Equal(v, again))

	t.Run("too short", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("id 7"), tc)
		e := asError(t, err)
		assert.Contains(t, e.Detail, "expected at least 4")
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("id 7 id 8"), tc)
		assert.True(t, stderrors.Is(err, errors.ErrUnknownMember))
	})

	t.Run("missing member", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("id 7 _tc_ x"), tc)
		e := asError(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrShapeMismatch))
		assert.Contains(t, e.Detail, `member "note" is missing`)
		assert.NotContains(t, e.Detail, `"_tc_" is not a member`)
	})

	t.Run("member trail names declaring type", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("id x note hi"), tc)
		e := asError(t, err)
		assert.Contains(t, e.Message(), `while packing member "id" of "valuetype Base"`)
	})
}

func TestErrorTrail(t *testing.T) {
	f := setup(t)

	_, err := f.codec.Pack(external.Scalar("host h port 65536"), endpointType())
	e := asError(t, err)

	assert.Equal(t, errors.KindRange, e.Kind)
	assert.Equal(t, "65536", e.Text)
	assert.Equal(t, []string{
		`while packing "unsigned short" from "65536"`,
		`while packing member "port" of "struct Endpoint"`,
		`while packing "struct IDL:Endpoint:1.0 {host string port {unsigned short}}" from "host h port 65536"`,
	}, e.Trail)

	lines := strings.Split(e.Message(), "\n")
	assert.Equal(t, `"65536" does not fit "unsigned short"`, lines[0])
}

func TestAliasTrail(t *testing.T) {
	f := setup(t)
	count := typecode.NewAlias("IDL:Count:1.0", "Count", prim(typecode.KindShort))

	_, err := f.codec.Pack(external.Scalar("many"), count)
	e := asError(t, err)
	assert.Equal(t, "while packing IDL:Count:1.0", e.Trail[len(e.Trail)-1])
}

func TestAnyTrail(t *testing.T) {
	f := setup(t)

	_, err := f.codec.Pack(external.Scalar("{no such type} 1"), prim(typecode.KindAny))
	e := asError(t, err)
	assert.Contains(t, e.Message(), "while packing TypeCode in an Any")

	_, err = f.codec.Pack(external.Scalar("short 70000"), prim(typecode.KindAny))
	e = asError(t, err)
	assert.Equal(t, errors.KindRange, e.Kind)
	assert.Contains(t, e.Message(), "while packing contents of an Any")

	_, err = f.codec.Pack(external.Scalar("long"), prim(typecode.KindAny))
	e = asError(t, err)
	assert.Contains(t, e.Detail, `not an any value: "long"`)
}

func TestOneLevelExtraction(t *testing.T) {
	f := setup(t)
	place := f.pack(t, "name home at {x 3 y 4}", placeType())

	out, err := f.codec.Extract(place, false)
	require.NoError(t, err)
	l, err := external.AsList(out)
	require.NoError(t, err)
	require.Len(t, l, 4)

	assert.Equal(t, external.Scalar("home"), l[1], "simple members are extracted directly")
	tok, ok := l[3].(*external.Token)
	require.True(t, ok, "aggregate members become tokens, got %T", l[3])
	assert.Equal(t, "x 3 y 4", tok.String())
	assert.Equal(t, "name home at {x 3 y 4}", out.String())

	inner, ok := Attached(tok)
	require.True(t, ok)
	assert.True(t, typecode.Equal(pointType(), inner.Type))

	t.Run("top level token is adopted", func(t *testing.T) {
		v, err := f.codec.Pack(tok, pointType())
		require.NoError(t, err)
		assert.True(t, v.Value == inner.Value, "the attached value is reused by reference")
	})

	t.Run("nested token is copied in", func(t *testing.T) {
		v, err := f.codec.Pack(external.List{
			external.Scalar("name"), external.Scalar("away"),
			external.Scalar("at"), tok,
		}, placeType())
		require.NoError(t, err)
		assert.Equal(t, "name away at {x 3 y 4}", f.extract(t, v))
	})

	t.Run("token of another type packs from text", func(t *testing.T) {
		other := typecode.NewStruct("IDL:Vec:1.0", "Vec", []typecode.Member{
			{Name: "x", Type: prim(typecode.KindShort)},
			{Name: "y", Type: prim(typecode.KindShort)},
		})
		v, err := f.codec.Pack(tok, other)
		require.NoError(t, err)
		assert.True(t, typecode.Equal(other, v.Type))
		assert.Equal(t, "x 3 y 4", f.extract(t, v))
	})

	t.Run("unroll one level", func(t *testing.T) {
		un, err := tok.Unroll(false)
		require.NoError(t, err)
		assert.Equal(t, "x 3 y 4", un.String())
	})
}

func TestOneLevelBytesAreImmediate(t *testing.T) {
	f := setup(t)
	blob := typecode.NewStruct("IDL:Blob:1.0", "Blob", []typecode.Member{
		{Name: "data", Type: typecode.NewSequence(prim(typecode.KindOctet), 0)},
	})
	v := f.pack(t, "data abc", blob)

	out, err := f.codec.Extract(v, false)
	require.NoError(t, err)
	l, err := external.AsList(out)
	require.NoError(t, err)
	assert.Equal(t, external.Bytes("abc"), l[1])
}

func TestObjectReferences(t *testing.T) {
	f := setup(t)
	hier := f.provider.Hierarchy()
	hier.Declare("IDL:Derived:1.0", "IDL:Base:1.0")

	baseRef := typecode.NewObjref("IDL:Base:1.0", "Base")
	obj := hier.NewObject("IDL:Derived:1.0")

	cur, err := f.provider.CreateCursor(baseRef, nil)
	require.NoError(t, err)
	require.NoError(t, cur.InsertReference(obj))
	v, err := cur.ToAny()
	require.NoError(t, err)

	out, err := f.codec.Extract(v, true)
	require.NoError(t, err)
	h, ok := out.(external.Handle)
	require.True(t, ok, "expected a handle, got %T", out)

	known, ok := f.registry.Type(h)
	require.True(t, ok)
	assert.Equal(t, "IDL:Derived:1.0", known, "refining to a base type must not downgrade")

	t.Run("resolve", func(t *testing.T) {
		back, err := f.codec.Pack(h, baseRef)
		require.NoError(t, err)
		c, err := f.provider.CreateCursor(baseRef, &back)
		require.NoError(t, err)
		ref, err := c.GetReference()
		require.NoError(t, err)
		assert.Same(t, obj, ref)
	})

	t.Run("universal object accepts anything", func(t *testing.T) {
		_, err := f.codec.Pack(h, typecode.Object)
		assert.NoError(t, err)
	})

	t.Run("wrong interface", func(t *testing.T) {
		_, err := f.codec.Pack(h, typecode.NewObjref("IDL:Other:1.0", "Other"))
		e := asError(t, err)
		assert.Equal(t, errors.KindHandleResolution, e.Kind)
		assert.Equal(t, `illegal type for object reference: should be "IDL:Other:1.0"`, e.Detail)
	})

	t.Run("unknown handle", func(t *testing.T) {
		_, err := f.codec.Pack(external.Scalar("nonsense"), baseRef)
		assert.True(t, stderrors.Is(err, errors.ErrHandleResolution))
	})

	t.Run("references inside one level extraction", func(t *testing.T) {
		holder := typecode.NewStruct("IDL:Holder:1.0", "Holder", []typecode.Member{
			{Name: "refs", Type: typecode.NewSequence(baseRef, 0)},
		})
		hv, err := f.codec.Pack(external.List{external.Scalar("refs"), external.List{h, h}}, holder)
		require.NoError(t, err)

		before := f.registry.Len()
		out, err := f.codec.Extract(hv, false)
		require.NoError(t, err)
		l, err := external.AsList(out)
		require.NoError(t, err)
		_, isToken := l[1].(*external.Token)
		assert.False(t, isToken, "values holding references are extracted right away")
		assert.Equal(t, before+2, f.registry.Len())
	})
}

func TestRecursiveType(t *testing.T) {
	f := setup(t)
	node := typecode.NewStruct("IDL:Node:1.0", "Node", []typecode.Member{
		{Name: "value", Type: prim(typecode.KindLong)},
		{Name: "next", Type: typecode.NewSequence(typecode.NewRecursive("IDL:Node:1.0"), 0)},
	})

	in := "value 1 next {{value 2 next {{value 3 next {}}}}}"
	v := f.pack(t, in, node)
	assert.Equal(t, in, f.extract(t, v))

	printed := typecode.Describe(node)
	assert.Equal(t, "struct IDL:Node:1.0 {value long next {sequence {recursive IDL:Node:1.0}}}", printed)

	v2, err := f.codec.PackText(in, printed)
	require.NoError(t, err)
	assert.Equal(t, in, f.extract(t, v2))
}

func TestPackTextTypeError(t *testing.T) {
	f := setup(t)

	_, err := f.codec.PackText("1", "struct")
	e := asError(t, err)
	assert.Contains(t, e.Message(), `while packing TypeCode from "struct"`)
}

func TestVoidMismatch(t *testing.T) {
	f := setup(t)

	_, err := f.codec.Pack(external.Scalar("x"), prim(typecode.KindVoid))
	e := asError(t, err)
	assert.Equal(t, `expecting void, but got "x"`, e.Detail)
}

func TestExtractWithoutType(t *testing.T) {
	f := setup(t)

	_, err := f.codec.Extract(reflection.Any{}, true)
	assert.Error(t, err)
	_, err = f.codec.Pack(external.Scalar("1"), nil)
	assert.Error(t, err)
}
