package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	cases := []struct {
		raw  string
		want Value
	}{
		{`"quoted"`, String("quoted")},
		{`"42"`, String("42")},
		{`""`, String("")},
		{"42", Int(42)},
		{"-7", Int(-7)},
		{"+3", Int(3)},
		{"3.5", Float(3.5)},
		{"3.", Float(3)},
		{".25", Float(0.25)},
		{"-0.5", Float(-0.5)},
		{"99999999999999999999", Float(1e20)},
		{"true", String("true")},
		{"1e5", String("1e5")},
		{"", String("")},
		{"12/05/2019 10:11:12", String("12/05/2019 10:11:12")},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, Coerce(tc.raw))
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, v := range []Value{Int(5), Float(5), Float(0.1), Float(-12.75), String("abc")} {
		assert.Equal(t, v, Coerce(v.Text()), "round trip of %#v", v)
	}
	assert.Equal(t, "5.0", Float(5).Text())
	assert.Equal(t, "1000000.0", Float(1e6).Text())
}

func TestAsInt(t *testing.T) {
	n, ok := Float(4).AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(4), n)

	_, ok = Float(4.5).AsInt()
	assert.False(t, ok)

	_, ok = String("4").AsInt()
	assert.False(t, ok)

	f, ok := Int(9).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 9.0, f)
}
