// Package numeric implements the range-checked integer and fixed-point
// conversions used when packing host text into typed values.
package numeric

import (
	stderrors "errors"
	"math/bits"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

var (
	// ErrSyntax reports text that is not an integer literal.
	ErrSyntax = stderrors.New("numeric: invalid syntax")
	// ErrRange reports a literal that does not fit the target width.
	ErrRange = stderrors.New("numeric: value out of range")
)

// Int describes an integer target.
type Int struct {
	Name   string
	Bits   int
	Signed bool
}

var (
	Short     = Int{Name: "short", Bits: 16, Signed: true}
	UShort    = Int{Name: "unsigned short", Bits: 16}
	Long      = Int{Name: "long", Bits: 32, Signed: true}
	ULong     = Int{Name: "unsigned long", Bits: 32}
	LongLong  = Int{Name: "long long", Bits: 64, Signed: true}
	ULongLong = Int{Name: "unsigned long long", Bits: 64}
)

// literal splits text into sign and magnitude. It accepts leading and
// trailing white space, an optional sign, a decimal, 0x hexadecimal or
// 0-prefixed octal digit run, and a fraction made only of zeros.
func literal(text string) (neg bool, mag uint64, err error) {
	s := strings.TrimLeft(text, " \t\n\r\f\v")
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := uint64(10)
	switch {
	case len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') && hexDigit(s[2]) >= 0:
		base = 16
		s = s[2:]
	case len(s) > 1 && s[0] == '0':
		base = 8
	}

	digits := 0
	overflow := false
	for len(s) > 0 {
		d := hexDigit(s[0])
		if d < 0 || uint64(d) >= base {
			break
		}
		hi, lo := bits.Mul64(mag, base)
		sum, carry := bits.Add64(lo, uint64(d), 0)
		if hi != 0 || carry != 0 {
			overflow = true
		}
		mag = sum
		digits++
		s = s[1:]
	}
	if digits == 0 {
		return false, 0, ErrSyntax
	}

	if len(s) > 0 && s[0] == '.' {
		s = strings.TrimLeft(s[1:], "0")
	}
	if strings.TrimLeft(s, " \t\n\r\f\v") != "" {
		return false, 0, ErrSyntax
	}
	if overflow {
		return neg, 0, ErrRange
	}
	return neg, mag, nil
}

// ParseInt parses text for a signed target. A negative magnitude may reach
// 2^(bits-1), a positive one 2^(bits-1)-1.
func ParseInt(text string, t Int) (int64, error) {
	neg, mag, err := literal(text)
	if err != nil {
		return 0, err
	}
	limit := uint64(1) << (t.Bits - 1)
	if neg {
		if mag > limit {
			return 0, ErrRange
		}
		return int64(-mag), nil
	}
	if mag > limit-1 {
		return 0, ErrRange
	}
	return int64(mag), nil
}

// ParseUint parses text for an unsigned target. Only zero may carry a
// minus sign.
func ParseUint(text string, t Int) (uint64, error) {
	neg, mag, err := literal(text)
	if err != nil {
		return 0, err
	}
	if neg && mag != 0 {
		return 0, ErrRange
	}
	if t.Bits < 64 && mag > uint64(1)<<t.Bits-1 {
		return 0, ErrRange
	}
	return mag, nil
}

// ParseBound parses a bound such as the N in a bounded string descriptor.
// It accepts the same literals as an unsigned long.
func ParseBound(text string) (uint32, error) {
	n, err := ParseUint(text, ULong)
	return uint32(n), err
}

// fixedContext carries enough precision for any CORBA fixed value.
var fixedContext = apd.BaseContext.WithPrecision(1000)

// ParseFixed normalizes text to a decimal with exactly scale fraction
// digits and at most digits significant digits. A trailing d or D is
// accepted.
func ParseFixed(text string, digits uint16, scale int16) (string, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "d"), "D")
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return "", ErrSyntax
	}
	if d.Form != apd.Finite {
		return "", ErrSyntax
	}
	var q apd.Decimal
	if _, err := fixedContext.Quantize(&q, d, -int32(scale)); err != nil {
		return "", ErrRange
	}
	if q.NumDigits() > int64(digits) && !q.IsZero() {
		return "", ErrRange
	}
	return q.Text('f'), nil
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
