package typecode

import (
	"strconv"
	"unicode/utf8"

	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/external"
	"github.com/wippyai/anycodec/internal/numeric"
)

// Union labels are stored as the raw bits of the discriminator value:
// signed integers sign-extended, booleans 0 or 1, characters as code
// points and enumerators as ordinals.

var intTargets = map[Kind]numeric.Int{
	KindShort:     numeric.Short,
	KindUShort:    numeric.UShort,
	KindLong:      numeric.Long,
	KindULong:     numeric.ULong,
	KindLongLong:  numeric.LongLong,
	KindULongLong: numeric.ULongLong,
}

// IntTarget returns the numeric range of an integer kind.
func IntTarget(k Kind) (numeric.Int, bool) {
	t, ok := intTargets[k]
	return t, ok
}

// ValidDiscriminator reports whether tc can discriminate a union.
func ValidDiscriminator(tc *TypeCode) bool {
	tc = tc.Unalias()
	if tc == nil {
		return false
	}
	switch tc.Kind {
	case KindBoolean, KindChar, KindWChar, KindEnum:
		return true
	}
	return tc.Kind.IsInteger()
}

// FormatLabel renders a label of discriminator type disc.
func FormatLabel(disc *TypeCode, label uint64) string {
	disc = disc.Unalias()
	switch disc.Kind {
	case KindShort, KindLong, KindLongLong:
		return strconv.FormatInt(int64(label), 10)
	case KindBoolean:
		return external.Bool(label != 0).String()
	case KindChar:
		return external.Bytes{byte(label)}.String()
	case KindWChar:
		return string(rune(label))
	case KindEnum:
		if label < uint64(len(disc.Members)) {
			return disc.Members[label].Name
		}
	}
	return strconv.FormatUint(label, 10)
}

// ParseLabel reads a label of discriminator type disc from text.
func ParseLabel(disc *TypeCode, text string) (uint64, error) {
	d := disc.Unalias()
	if d == nil {
		return 0, errors.InvalidInput(errors.PhaseParse, "nil discriminator type")
	}
	if t, ok := intTargets[d.Kind]; ok {
		if t.Signed {
			n, err := numeric.ParseInt(text, t)
			if err != nil {
				return 0, numberError(err, text, t.Name)
			}
			return uint64(n), nil
		}
		n, err := numeric.ParseUint(text, t)
		if err != nil {
			return 0, numberError(err, text, t.Name)
		}
		return n, nil
	}

	switch d.Kind {
	case KindBoolean:
		b, err := external.AsBool(external.Scalar(text))
		if err != nil {
			return 0, errors.Mismatch(errors.PhaseParse, text, "boolean")
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case KindChar:
		r, n := utf8.DecodeRuneInString(text)
		if n == 0 || n != len(text) || r > 0xFF {
			return 0, errors.Mismatch(errors.PhaseParse, text, "char")
		}
		return uint64(r), nil
	case KindWChar:
		r, n := utf8.DecodeRuneInString(text)
		if n == 0 || n != len(text) {
			return 0, errors.Mismatch(errors.PhaseParse, text, "wchar")
		}
		return uint64(r), nil
	case KindEnum:
		if i := d.MemberIndex(text); i >= 0 {
			return uint64(i), nil
		}
		return 0, errors.New(errors.PhaseParse, errors.KindUnknownMember).
			Text(text).
			Detail("%q is not member of enum %q", text, d.DisplayName()).
			Build()
	}
	return 0, errors.Unsupported(errors.PhaseParse, "illegal union discriminator type "+Describe(d))
}

func numberError(err error, text, name string) error {
	if err == numeric.ErrRange {
		return errors.Range(errors.PhaseParse, text, name)
	}
	return errors.Mismatch(errors.PhaseParse, text, name)
}
