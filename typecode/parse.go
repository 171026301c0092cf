package typecode

import (
	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/external"
	"github.com/wippyai/anycodec/internal/numeric"
)

var byName = map[string]*TypeCode{}

func init() {
	for k := KindNull; k <= KindWChar; k++ {
		byName[primitiveNames[k]] = primitives[k]
	}
	byName["string"] = String
	byName["wstring"] = WString
	byName["Object"] = Object
}

type scanner func(text string, l external.List) (*TypeCode, error)

var scanners map[string]scanner

func init() {
	scanners = map[string]scanner{
		"Object":    scanObjref,
		"string":    scanString,
		"wstring":   scanString,
		"sequence":  scanSequence,
		"recursive": scanRecursive,
		"array":     scanArray,
		"fixed":     scanFixed,
		"struct":    scanStruct,
		"exception": scanStruct,
		"union":     scanUnion,
		"enum":      scanEnum,
		"valuetype": scanValue,
		"valuebox":  scanValueBox,
	}
}

// Parse reads a descriptor from its external form. Constructed descriptors
// are created without type names. Recursive tokens become placeholders.
func Parse(v external.Value) (*TypeCode, error) {
	text := v.String()
	if tc, ok := byName[text]; ok {
		return tc, nil
	}

	l, err := external.AsList(v)
	if err != nil || len(l) == 0 {
		return nil, errors.Within(scanError("", text), "while packing TypeCode from %q", text)
	}
	scan, ok := scanners[l[0].String()]
	if !ok {
		return nil, errors.Within(scanError("", text), "while packing TypeCode from %q", text)
	}
	tc, err := scan(text, l)
	if err != nil {
		return nil, errors.Within(err, "while packing TypeCode from %q", text)
	}
	return tc, nil
}

// ParseText parses a descriptor from text.
func ParseText(text string) (*TypeCode, error) {
	return Parse(external.Scalar(text))
}

func scanError(what, text string) *errors.Error {
	if what != "" {
		what += " "
	}
	return errors.New(errors.PhaseParse, errors.KindShapeMismatch).
		Text(text).
		Detail("could not scan %stypecode from %q", what, text).
		Build()
}

func boundError(what string, v external.Value, err error) *errors.Error {
	kind := errors.KindShapeMismatch
	if err == numeric.ErrRange {
		kind = errors.KindRange
	}
	return errors.New(errors.PhaseParse, kind).
		Text(v.String()).
		Detail("expected bound for %s but got %q", what, v.String()).
		Build()
}

func scanObjref(text string, l external.List) (*TypeCode, error) {
	if len(l) != 2 {
		return nil, scanError("object reference", text)
	}
	return NewObjref(l[1].String(), ""), nil
}

func scanString(text string, l external.List) (*TypeCode, error) {
	head := l[0].String()
	if len(l) != 2 {
		return nil, scanError("bounded "+head, text)
	}
	bound, err := numeric.ParseBound(l[1].String())
	if err != nil {
		return nil, boundError(head, l[1], err)
	}
	if head == "wstring" {
		return NewWString(bound), nil
	}
	return NewString(bound), nil
}

func scanSequence(text string, l external.List) (*TypeCode, error) {
	if len(l) != 2 && len(l) != 3 {
		return nil, scanError("sequence", text)
	}
	elem, err := Parse(l[1])
	if err != nil {
		return nil, errors.Within(err, "while scanning sequence TypeCode")
	}
	var bound uint32
	if len(l) == 3 {
		if bound, err = numeric.ParseBound(l[2].String()); err != nil {
			return nil, boundError("sequence", l[2], err)
		}
	}
	return NewSequence(elem, bound), nil
}

func scanRecursive(text string, l external.List) (*TypeCode, error) {
	if len(l) != 2 {
		return nil, scanError("recursive", text)
	}
	return NewRecursive(l[1].String()), nil
}

func scanArray(text string, l external.List) (*TypeCode, error) {
	if len(l) != 3 {
		return nil, scanError("array", text)
	}
	elem, err := Parse(l[1])
	if err != nil {
		return nil, errors.Within(err, "while scanning array TypeCode")
	}
	length, err := numeric.ParseBound(l[2].String())
	if err != nil {
		return nil, boundError("array", l[2], err)
	}
	return NewArray(elem, length), nil
}

func scanFixed(text string, l external.List) (*TypeCode, error) {
	if len(l) != 3 {
		return nil, scanError("fixed", text)
	}
	digits, err := numeric.ParseUint(l[1].String(), numeric.UShort)
	if err != nil {
		return nil, errors.Within(numberError(err, l[1].String(), "unsigned short"), "while scanning fixed TypeCode")
	}
	scale, err := numeric.ParseInt(l[2].String(), numeric.Short)
	if err != nil {
		return nil, errors.Within(numberError(err, l[2].String(), "short"), "while scanning fixed TypeCode")
	}
	return NewFixed(uint16(digits), int16(scale)), nil
}

func scanStruct(text string, l external.List) (*TypeCode, error) {
	head := l[0].String()
	if len(l) != 3 {
		return nil, scanError(head, text)
	}
	elems, err := external.AsList(l[2])
	if err != nil || len(elems)%2 != 0 {
		return nil, scanError(head, text)
	}
	members := make([]Member, len(elems)/2)
	for i := range members {
		name := elems[2*i].String()
		mt, err := Parse(elems[2*i+1])
		if err != nil {
			return nil, errors.Within(err, "while scanning TypeCode of member %q", name)
		}
		members[i] = Member{Name: name, Type: mt}
	}
	if head == "exception" {
		return NewException(l[1].String(), "", members), nil
	}
	return NewStruct(l[1].String(), "", members), nil
}

func scanUnion(text string, l external.List) (*TypeCode, error) {
	if len(l) != 4 {
		return nil, scanError("union", text)
	}
	elems, err := external.AsList(l[3])
	if err != nil || len(elems)%2 != 0 {
		return nil, scanError("union", text)
	}
	disc, err := Parse(l[2])
	if err != nil {
		return nil, errors.Within(err, "while scanning union discriminator")
	}
	if !ValidDiscriminator(disc) {
		return nil, errors.Within(
			errors.Unsupported(errors.PhaseParse, "illegal union discriminator type "+Describe(disc)),
			"while scanning union discriminator")
	}

	members := make([]Member, len(elems)/2)
	defaultIndex := -1
	for i := range members {
		labelText := elems[2*i].String()
		if labelText == "(default)" {
			if defaultIndex >= 0 {
				return nil, scanError("union", text)
			}
			defaultIndex = i
		} else {
			label, err := ParseLabel(disc, labelText)
			if err != nil {
				return nil, errors.Within(err, "while scanning union label")
			}
			members[i].Label = label
		}
		mt, err := Parse(elems[2*i+1])
		if err != nil {
			return nil, errors.Within(err, "while scanning TypeCode of member")
		}
		members[i].Type = mt
	}
	return NewUnion(l[1].String(), "", disc, members, defaultIndex), nil
}

func scanEnum(text string, l external.List) (*TypeCode, error) {
	if len(l) != 2 {
		return nil, scanError("enum", text)
	}
	elems, err := external.AsList(l[1])
	if err != nil {
		return nil, scanError("enum", text)
	}
	names := make([]string, len(elems))
	for i, e := range elems {
		one, err := external.AsList(e)
		if err != nil || len(one) != 1 {
			return nil, scanError("enum", text)
		}
		names[i] = one[0].String()
	}
	return NewEnum("", "", names), nil
}

func scanValue(text string, l external.List) (*TypeCode, error) {
	if len(l) != 5 {
		return nil, scanError("valuetype", text)
	}
	elems, err := external.AsList(l[2])
	if err != nil || len(elems)%3 != 0 {
		return nil, scanError("valuetype", text)
	}
	members := make([]Member, len(elems)/3)
	for i := range members {
		name := elems[3*i+1].String()
		mt, err := Parse(elems[3*i+2])
		if err != nil {
			return nil, errors.Within(err, "while scanning TypeCode of member %q", name)
		}
		vis := Public
		if elems[3*i].String() == "private" {
			vis = Private
		}
		members[i] = Member{Name: name, Type: mt, Visibility: vis}
	}

	var base *TypeCode
	if l[3].String() != "0" {
		base, err = Parse(l[3])
		if err != nil {
			return nil, errors.Within(err, "while scanning base TypeCode")
		}
	}

	mod := ModNone
	switch l[4].String() {
	case "custom":
		mod = ModCustom
	case "abstract":
		mod = ModAbstract
	case "truncatable":
		mod = ModTruncatable
	}
	return NewValue(l[1].String(), "", mod, base, members), nil
}

func scanValueBox(text string, l external.List) (*TypeCode, error) {
	if len(l) != 3 {
		return nil, scanError("valuebox", text)
	}
	content, err := Parse(l[2])
	if err != nil {
		return nil, errors.Within(err, "while scanning valuebox TypeCode")
	}
	return NewValueBox(l[1].String(), "", content), nil
}
