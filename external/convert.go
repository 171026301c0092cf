package external

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/wippyai/anycodec/errors"
)

// AsBytes returns the byte-string form of v. Printable text is mapped code
// point to byte; code points above 0xFF keep their low byte.
func AsBytes(v Value) []byte {
	if b, ok := v.(Bytes); ok {
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
	s := v.String()
	if enc, err := charmap.ISO8859_1.NewEncoder().String(s); err == nil {
		return []byte(enc)
	}
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, byte(r))
	}
	return out
}

// AsFloat parses v as a floating point number. Integer literals in any
// host base are accepted.
func AsFloat(v Value) (float64, error) {
	s := strings.TrimSpace(v.String())
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(n), nil
	}
	if n, err := strconv.ParseUint(s, 0, 64); err == nil {
		return float64(n), nil
	}
	return 0, errors.InvalidInput("", "expected floating-point number but got \""+s+"\"")
}

var boolWords = []struct {
	word  string
	value bool
}{
	{"true", true},
	{"false", false},
	{"yes", true},
	{"no", false},
	{"on", true},
	{"off", false},
}

// AsBool parses v with the host's boolean spellings: numbers (non-zero is
// true) and unique prefixes of true, false, yes, no, on and off.
func AsBool(v Value) (bool, error) {
	s := strings.ToLower(strings.TrimSpace(v.String()))
	if s == "" {
		return false, errors.InvalidInput("", "expected boolean value but got \"\"")
	}
	if f, err := AsFloat(Scalar(s)); err == nil {
		return f != 0, nil
	}
	found := -1
	for i, w := range boolWords {
		if strings.HasPrefix(w.word, s) {
			if found >= 0 {
				found = -2
				break
			}
			found = i
		}
	}
	if found < 0 {
		return false, errors.InvalidInput("", "expected boolean value but got \""+v.String()+"\"")
	}
	return boolWords[found].value, nil
}

// Int returns the scalar form of n.
func Int(n int64) Scalar {
	return Scalar(strconv.FormatInt(n, 10))
}

// Uint returns the scalar form of n.
func Uint(n uint64) Scalar {
	return Scalar(strconv.FormatUint(n, 10))
}

// Float returns the scalar form of f. Integral values keep a ".0" suffix so
// they still read as floating point.
func Float(f float64) Scalar {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return Scalar(s)
}

// Bool returns "1" or "0".
func Bool(b bool) Scalar {
	if b {
		return "1"
	}
	return "0"
}

// IsEmpty reports whether v is an empty list.
func IsEmpty(v Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case List:
		return len(t) == 0
	case Bytes:
		return len(t) == 0
	case Handle, *Token:
		return false
	}
	return strings.TrimSpace(v.String()) == ""
}
