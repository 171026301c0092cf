package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUint(t *testing.T) {
	tests := []struct {
		text string
		typ  Int
		want uint64
		err  error
	}{
		{"65535", UShort, 65535, nil},
		{"65536", UShort, 0, ErrRange},
		{"-1", UShort, 0, ErrRange},
		{"-0", UShort, 0, nil},
		{"  42  ", UShort, 42, nil},
		{"+7", UShort, 7, nil},
		{"0xff", UShort, 255, nil},
		{"0XFFFF", UShort, 65535, nil},
		{"017", UShort, 15, nil},
		{"12.000", UShort, 12, nil},
		{"12.", UShort, 12, nil},
		{"12.5", UShort, 0, ErrSyntax},
		{"08", UShort, 0, ErrSyntax},
		{"abc", UShort, 0, ErrSyntax},
		{"", UShort, 0, ErrSyntax},
		{"4294967295", ULong, math.MaxUint32, nil},
		{"4294967296", ULong, 0, ErrRange},
		{"18446744073709551615", ULongLong, math.MaxUint64, nil},
		{"18446744073709551616", ULongLong, 0, ErrRange},
		{"99999999999999999999999", ULongLong, 0, ErrRange},
		{"99999999999999999999999x", ULongLong, 0, ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.typ.Name+"/"+tt.text, func(t *testing.T) {
			got, err := ParseUint(tt.text, tt.typ)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		text string
		typ  Int
		want int64
		err  error
	}{
		{"32767", Short, 32767, nil},
		{"32768", Short, 0, ErrRange},
		{"-32768", Short, -32768, nil},
		{"-32769", Short, 0, ErrRange},
		{"-0x80000000", Long, math.MinInt32, nil},
		{"2147483648", Long, 0, ErrRange},
		{"9223372036854775807", LongLong, math.MaxInt64, nil},
		{"-9223372036854775808", LongLong, math.MinInt64, nil},
		{"9223372036854775808", LongLong, 0, ErrRange},
		{"- 1", Short, 0, ErrSyntax},
		{"1 2", Short, 0, ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.typ.Name+"/"+tt.text, func(t *testing.T) {
			got, err := ParseInt(tt.text, tt.typ)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBound(t *testing.T) {
	n, err := ParseBound("10")
	require.NoError(t, err)
	assert.Equal(t, uint32(10), n)

	_, err = ParseBound("x")
	assert.ErrorIs(t, err, ErrSyntax)
	_, err = ParseBound("")
	assert.ErrorIs(t, err, ErrSyntax)
	_, err = ParseBound("4294967296")
	assert.ErrorIs(t, err, ErrRange)
}

func TestParseFixed(t *testing.T) {
	tests := []struct {
		text   string
		digits uint16
		scale  int16
		want   string
		err    error
	}{
		{"1.5", 5, 2, "1.50", nil},
		{"123.456", 6, 3, "123.456", nil},
		{"123.456d", 6, 3, "123.456", nil},
		{"-0.001", 4, 3, "-0.001", nil},
		{"1.005", 4, 2, "1.01", nil},
		{"12345", 4, 0, "", ErrRange},
		{"999.99", 5, 2, "999.99", nil},
		{"1000", 5, 2, "", ErrRange},
		{"abc", 5, 2, "", ErrSyntax},
		{"Infinity", 5, 2, "", ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseFixed(tt.text, tt.digits, tt.scale)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
