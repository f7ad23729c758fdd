package record

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// #region kind
// Kind tags the concrete type held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}
// #endregion kind

// #region value
// Value is a single coerced cell. The zero Value is the empty string.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
}

// Int returns an integer Value.
func Int(v int64) Value { return Value{Kind: KindInt, Int: v} }

// Float returns a floating-point Value.
func Float(v float64) Value { return Value{Kind: KindFloat, Float: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, Str: v} }

// AsFloat reads the value as a float64. Strings never convert.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	}
	return 0, false
}

// AsInt reads the value as an int64. Floats convert only when integral.
func (v Value) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int, true
	case KindFloat:
		if v.Float == math.Trunc(v.Float) && !math.IsInf(v.Float, 0) {
			return int64(v.Float), true
		}
	}
	return 0, false
}

// Text renders the value as a CSV cell. Integral floats keep a ".0" suffix
// so a later Coerce restores them as floats.
func (v Value) Text() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return FormatFloat(v.Float)
	default:
		return v.Str
	}
}

func (v Value) GoString() string {
	return fmt.Sprintf("%s(%s)", v.Kind, v.Text())
}

// FormatFloat writes f without an exponent, always including a decimal point
// for finite values.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
// #endregion value

// #region coerce
var (
	quotedPattern = regexp.MustCompile(`^"(.*)"$`)
	intPattern    = regexp.MustCompile(`^[+-]?[0-9]+$`)
	floatPattern  = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)$`)
)

// Coerce turns a raw cell into a typed Value. A fully quoted cell is a string
// with its quotes removed; otherwise integers are tried before floats, and
// anything else stays an opaque string.
func Coerce(raw string) Value {
	if m := quotedPattern.FindStringSubmatch(raw); m != nil {
		return String(m[1])
	}
	if intPattern.MatchString(raw) {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Int(n)
		}
	}
	if intPattern.MatchString(raw) || floatPattern.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Float(f)
		}
	}
	return String(raw)
}
// #endregion coerce
