package external

import (
	"strconv"
	"strings"

	"github.com/wippyai/anycodec/errors"
)

// Split parses text as a host list and returns its elements.
func Split(text string) ([]string, error) {
	var out []string
	i := 0
	for {
		for i < len(text) && isSpace(text[i]) {
			i++
		}
		if i >= len(text) {
			return out, nil
		}
		elem, next, err := findElement(text, i)
		if err != nil {
			return nil, err
		}
		out = append(out, elem)
		i = next
	}
}

// findElement reads one element starting at text[start], which is not a
// space, and returns it with the index just past it.
func findElement(text string, start int) (string, int, error) {
	switch text[start] {
	case '{':
		depth := 1
		i := start + 1
		for i < len(text) {
			switch text[i] {
			case '\\':
				i++
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					if i+1 < len(text) && !isSpace(text[i+1]) {
						return "", 0, listError("list element in braces followed by %q instead of space", tail(text, i+1))
					}
					return text[start+1 : i], i + 1, nil
				}
			}
			i++
		}
		return "", 0, listError("unmatched open brace in list")

	case '"':
		var b strings.Builder
		i := start + 1
		for i < len(text) {
			c := text[i]
			if c == '"' {
				if i+1 < len(text) && !isSpace(text[i+1]) {
					return "", 0, listError("list element in quotes followed by %q instead of space", tail(text, i+1))
				}
				return b.String(), i + 1, nil
			}
			if c == '\\' {
				i = backslash(text, i, &b)
				continue
			}
			b.WriteByte(c)
			i++
		}
		return "", 0, listError("unmatched open quote in list")
	}

	var b strings.Builder
	i := start
	for i < len(text) && !isSpace(text[i]) {
		if text[i] == '\\' {
			i = backslash(text, i, &b)
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String(), i, nil
}

// backslash writes the substitution for the sequence at text[i] and returns
// the index following it.
func backslash(text string, i int, b *strings.Builder) int {
	i++
	if i >= len(text) {
		b.WriteByte('\\')
		return i
	}
	c := text[i]
	switch c {
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'v':
		b.WriteByte('\v')
	case '\n':
		i++
		for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
		b.WriteByte(' ')
		return i
	case 'x', 'u', 'U':
		limit := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
		j := i + 1
		for j < len(text) && j-i-1 < limit && isHex(text[j]) {
			j++
		}
		if j == i+1 {
			b.WriteByte(c)
			return i + 1
		}
		n, _ := strconv.ParseUint(text[i+1:j], 16, 32)
		b.WriteRune(rune(n))
		return j
	default:
		if c >= '0' && c <= '7' {
			j := i
			for j < len(text) && j-i < 3 && text[j] >= '0' && text[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(text[i:j], 8, 32)
			b.WriteRune(rune(n & 0xFF))
			return j
		}
		b.WriteByte(c)
	}
	return i + 1
}

// Join renders elements as a host list.
func Join(elems []Value) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = Quote(e.String())
	}
	return strings.Join(parts, " ")
}

// JoinStrings renders plain strings as a host list.
func JoinStrings(elems []string) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = Quote(e)
	}
	return strings.Join(parts, " ")
}

// Quote renders s so that Split returns it as a single element.
func Quote(s string) string {
	if s == "" {
		return "{}"
	}
	if !needsQuoting(s) {
		return s
	}
	if canBrace(s) {
		return "{" + s + "}"
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case ' ', '{', '}', '[', ']', '$', ';', '\\', '"':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			if i == 0 && c == '#' {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

func needsQuoting(s string) bool {
	if s[0] == '#' {
		return true
	}
	return strings.ContainsAny(s, " \t\n\r\f\v{}[]$;\\\"")
}

func canBrace(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i == len(s)-1 {
				return false
			}
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// AsList interprets v as a list. Tokens unroll one level, handles are
// single-element lists and everything else is parsed from its printed form.
func AsList(v Value) (List, error) {
	switch t := v.(type) {
	case List:
		return t, nil
	case *Token:
		inner, err := t.Unroll(false)
		if err != nil {
			return nil, err
		}
		return AsList(inner)
	case Handle:
		return List{t}, nil
	case nil:
		return List{}, nil
	}
	elems, err := Split(v.String())
	if err != nil {
		return nil, err
	}
	out := make(List, len(elems))
	for i, e := range elems {
		out[i] = Scalar(e)
	}
	return out, nil
}

// Length returns the number of list elements in v.
func Length(v Value) (int, error) {
	l, err := AsList(v)
	if err != nil {
		return 0, err
	}
	return len(l), nil
}

// Index returns element i of v interpreted as a list.
func Index(v Value, i int) (Value, error) {
	l, err := AsList(v)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(l) {
		return nil, errors.InvalidInput("", "list index "+strconv.Itoa(i)+" out of range")
	}
	return l[i], nil
}

// Append returns l with items added.
func Append(l List, items ...Value) List {
	return append(l, items...)
}

func listError(format string, args ...any) error {
	return errors.New("", errors.KindInvalidData).Detail(format, args...).Build()
}

func tail(s string, i int) string {
	end := i + 10
	if end > len(s) {
		end = len(s)
	}
	return s[i:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
