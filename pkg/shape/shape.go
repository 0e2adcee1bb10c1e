// Package shape declares the structure of decoded wire values and validates them.
//
// A Schema walks a generic value as produced by encoding/json (with UseNumber) or
// msgpack: map[string]any, []any, string, bool, nil and the numeric kinds. Parsing
// returns a normalised copy of the input: unknown object keys are dropped and
// integers come back as int64, so the output can be re-encoded and decoded into a
// typed struct without surprises.
package shape

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// Schema validates one generic value.
type Schema interface {
	parse(path string, v any, c *checker) any
	describe() map[string]any
}

type checker struct {
	ve      ValidationError
	unknown *UnknownVariantError
}

// Parse validates v against s and returns the normalised output. The error is nil,
// a *ValidationError, or an *UnknownVariantError; shape issues take precedence over
// an unknown variant found elsewhere in the same value.
func Parse(s Schema, v any) (any, error) {
	c := &checker{}
	out := s.parse("", v, c)
	if len(c.ve.Issues) > 0 {
		ve := c.ve
		return nil, &ve
	}
	if c.unknown != nil {
		return nil, c.unknown
	}
	return out, nil
}

// Check is Parse without the output.
func Check(s Schema, v any) error {
	_, err := Parse(s, v)
	return err
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// kindOf names the JSON kind of a generic value for issue messages.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

// ---- strings ----

type stringSchema struct{ max int }

// String accepts a string of at most max code points. max <= 0 means unbounded.
func String(max int) Schema { return stringSchema{max: max} }

func (s stringSchema) parse(path string, v any, c *checker) any {
	str, ok := v.(string)
	if !ok {
		c.ve.add(path, CodeType, "string", kindOf(v))
		return nil
	}
	if s.max > 0 {
		if n := utf8.RuneCountInString(str); n > s.max {
			c.ve.add(path, CodeTooLong, "max length "+strconv.Itoa(s.max), "length "+strconv.Itoa(n))
			return nil
		}
	}
	return str
}

func (s stringSchema) describe() map[string]any {
	d := map[string]any{"type": "string"}
	if s.max > 0 {
		d["maxLength"] = s.max
	}
	return d
}

type literalSchema struct{ value string }

// Literal accepts exactly one string value.
func Literal(value string) Schema { return literalSchema{value: value} }

func (s literalSchema) parse(path string, v any, c *checker) any {
	str, ok := v.(string)
	if !ok {
		c.ve.add(path, CodeType, "string", kindOf(v))
		return nil
	}
	if str != s.value {
		c.ve.add(path, CodeLiteral, strconv.Quote(s.value), strconv.Quote(str))
		return nil
	}
	return str
}

func (s literalSchema) describe() map[string]any {
	return map[string]any{"type": "string", "const": s.value}
}

type enumSchema struct {
	values []string
	set    map[string]struct{}
}

// Enum accepts one of a closed set of strings.
func Enum(values ...string) Schema {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return enumSchema{values: values, set: set}
}

func (s enumSchema) parse(path string, v any, c *checker) any {
	str, ok := v.(string)
	if !ok {
		c.ve.add(path, CodeType, "string", kindOf(v))
		return nil
	}
	if _, ok := s.set[str]; !ok {
		c.ve.add(path, CodeEnum, fmt.Sprintf("one of %v", s.values), strconv.Quote(str))
		return nil
	}
	return str
}

func (s enumSchema) describe() map[string]any {
	vals := make([]any, len(s.values))
	for i, v := range s.values {
		vals[i] = v
	}
	return map[string]any{"type": "string", "enum": vals}
}

// ---- numbers ----

type intSchema struct {
	min    int64
	hasMin bool
}

// Int accepts an integral number in the int64 range.
func Int() Schema { return intSchema{} }

// NonNegativeInt accepts an integer >= 0 (versions, sequence numbers, timestamps).
func NonNegativeInt() Schema { return intSchema{min: 0, hasMin: true} }

func (s intSchema) parse(path string, v any, c *checker) any {
	n, integral, ok := toInt(v)
	if !ok {
		c.ve.add(path, CodeType, "integer", kindOf(v))
		return nil
	}
	if !integral {
		c.ve.add(path, CodeNotInteger, "integer", fmt.Sprint(v))
		return nil
	}
	if s.hasMin && n < s.min {
		c.ve.add(path, CodeTooSmall, ">= "+strconv.FormatInt(s.min, 10), strconv.FormatInt(n, 10))
		return nil
	}
	return n
}

func (s intSchema) describe() map[string]any {
	d := map[string]any{"type": "integer"}
	if s.hasMin {
		d["minimum"] = s.min
	}
	return d
}

type numberSchema struct{}

// Number accepts any finite number.
func Number() Schema { return numberSchema{} }

func (numberSchema) parse(path string, v any, c *checker) any {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		c.ve.add(path, CodeType, "number", kindOf(v))
		return nil
	}
	return f
}

func (numberSchema) describe() map[string]any { return map[string]any{"type": "number"} }

// toFloat converts every numeric kind json and msgpack decoders produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// toInt returns the value as int64. ok is false for non-numbers; integral is false
// for numbers with a fractional part or outside the int64 range.
func toInt(v any) (n int64, integral, ok bool) {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, true, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false, false
		}
		return floatToInt(f)
	case int:
		return int64(x), true, true
	case int8:
		return int64(x), true, true
	case int16:
		return int64(x), true, true
	case int32:
		return int64(x), true, true
	case int64:
		return x, true, true
	case uint:
		return uintToInt(uint64(x))
	case uint8:
		return int64(x), true, true
	case uint16:
		return int64(x), true, true
	case uint32:
		return int64(x), true, true
	case uint64:
		return uintToInt(x)
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	}
	return 0, false, false
}

func uintToInt(u uint64) (int64, bool, bool) {
	if u > math.MaxInt64 {
		return 0, false, true
	}
	return int64(u), true, true
}

func floatToInt(f float64) (int64, bool, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, true
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false, true
	}
	return int64(f), true, true
}

// ---- bool ----

type boolSchema struct{}

// Bool accepts true or false.
func Bool() Schema { return boolSchema{} }

func (boolSchema) parse(path string, v any, c *checker) any {
	b, ok := v.(bool)
	if !ok {
		c.ve.add(path, CodeType, "boolean", kindOf(v))
		return nil
	}
	return b
}

func (boolSchema) describe() map[string]any { return map[string]any{"type": "boolean"} }

// ---- nullable ----

type nullableSchema struct{ inner Schema }

// Nullable accepts null or a value matching inner.
func Nullable(inner Schema) Schema { return nullableSchema{inner: inner} }

func (s nullableSchema) parse(path string, v any, c *checker) any {
	if v == nil {
		return nil
	}
	return s.inner.parse(path, v, c)
}

func (s nullableSchema) describe() map[string]any {
	return map[string]any{"anyOf": []any{s.inner.describe(), map[string]any{"type": "null"}}}
}
