package parameter

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parser converts a parameter between its wire and internal representations.
//
// ParseIn validates a wire value and returns the internal value to store.
// ParseOut converts a stored internal value back to its wire form and never
// fails for values produced by ParseIn. Schema returns a fresh JSON-Schema
// fragment describing the accepted wire values.
type Parser interface {
	ParseIn(v any) (any, error)
	ParseOut(v any) any
	Schema() map[string]any
}

// Ptr returns a pointer to v. It is a convenience for optional bounds.
func Ptr[T any](v T) *T {
	return &v
}

// String accepts text values.
//
// Non-string wire values are formatted with fmt unless Strict is set.
// Pattern is a Go regular expression the whole value must match somewhere
// (JSON-Schema "pattern" semantics).
type String struct {
	MinLength *int
	MaxLength *int
	Pattern   string
	Format    string
	Enum      []string
	Strict    bool
}

// ParseIn implements Parser.
func (p String) ParseIn(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		if p.Strict {
			return nil, invalid(v, "expecting a string, got a %T", v)
		}
		s = fmt.Sprint(v)
	}

	if p.Enum != nil && !slices.Contains(p.Enum, s) {
		return nil, invalid(s, "expecting one of %s", strings.Join(p.Enum, ", "))
	}
	n := utf8.RuneCountInString(s)
	if p.MinLength != nil && n < *p.MinLength {
		return nil, invalid(s, "the string must have a minimum size of %d", *p.MinLength)
	}
	if p.MaxLength != nil && n > *p.MaxLength {
		return nil, invalid(s, "the string must not exceed %d characters", *p.MaxLength)
	}
	if p.Pattern != "" {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", p.Pattern, err)
		}
		if !re.MatchString(s) {
			return nil, invalid(s, "the string must match %q", p.Pattern)
		}
	}
	return s, nil
}

// ParseOut implements Parser.
func (String) ParseOut(v any) any { return v }

// Schema implements Parser.
func (p String) Schema() map[string]any {
	schema := map[string]any{"type": "string"}
	if p.Enum != nil {
		schema["enum"] = append([]string(nil), p.Enum...)
	}
	if p.MinLength != nil {
		schema["minLength"] = *p.MinLength
	}
	if p.MaxLength != nil {
		schema["maxLength"] = *p.MaxLength
	}
	if p.Pattern != "" {
		schema["pattern"] = p.Pattern
	}
	if p.Format != "" {
		schema["format"] = p.Format
	}
	return schema
}

// Float accepts any numeric wire value and stores a float64.
type Float struct {
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64
}

// ParseIn implements Parser.
func (p Float) ParseIn(v any) (any, error) {
	f, ok := toFloat(v)
	if !ok {
		return nil, invalid(v, "expecting a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, invalid(v, "expecting a finite number")
	}
	if p.Minimum != nil && f < *p.Minimum {
		return nil, invalid(f, "value shall be >= %v", *p.Minimum)
	}
	if p.ExclusiveMinimum != nil && f <= *p.ExclusiveMinimum {
		return nil, invalid(f, "value shall be > %v", *p.ExclusiveMinimum)
	}
	if p.Maximum != nil && f > *p.Maximum {
		return nil, invalid(f, "value shall be <= %v", *p.Maximum)
	}
	if p.ExclusiveMaximum != nil && f >= *p.ExclusiveMaximum {
		return nil, invalid(f, "value shall be < %v", *p.ExclusiveMaximum)
	}
	if p.MultipleOf != nil && !isMultiple(f, *p.MultipleOf) {
		return nil, invalid(f, "value must be a multiple of %v", *p.MultipleOf)
	}
	return f, nil
}

// ParseOut implements Parser.
func (Float) ParseOut(v any) any { return v }

// Schema implements Parser.
func (p Float) Schema() map[string]any {
	schema := map[string]any{"type": "number"}
	setBound(schema, "minimum", p.Minimum)
	setBound(schema, "maximum", p.Maximum)
	setBound(schema, "exclusiveMinimum", p.ExclusiveMinimum)
	setBound(schema, "exclusiveMaximum", p.ExclusiveMaximum)
	setBound(schema, "multipleOf", p.MultipleOf)
	return schema
}

// Int accepts integral wire values and stores an int. Floats with a
// fractional part are rejected rather than truncated.
type Int struct {
	Minimum          *int
	Maximum          *int
	ExclusiveMinimum *int
	ExclusiveMaximum *int
	MultipleOf       *int
}

// ParseIn implements Parser.
func (p Int) ParseIn(v any) (any, error) {
	i, ok := toInt(v)
	if !ok {
		return nil, invalid(v, "expecting an integer")
	}
	if p.Minimum != nil && i < *p.Minimum {
		return nil, invalid(i, "value shall be >= %d", *p.Minimum)
	}
	if p.ExclusiveMinimum != nil && i <= *p.ExclusiveMinimum {
		return nil, invalid(i, "value shall be > %d", *p.ExclusiveMinimum)
	}
	if p.Maximum != nil && i > *p.Maximum {
		return nil, invalid(i, "value shall be <= %d", *p.Maximum)
	}
	if p.ExclusiveMaximum != nil && i >= *p.ExclusiveMaximum {
		return nil, invalid(i, "value shall be < %d", *p.ExclusiveMaximum)
	}
	if p.MultipleOf != nil && *p.MultipleOf != 0 && i%*p.MultipleOf != 0 {
		return nil, invalid(i, "value must be a multiple of %d", *p.MultipleOf)
	}
	return i, nil
}

// ParseOut implements Parser.
func (Int) ParseOut(v any) any { return v }

// Schema implements Parser.
func (p Int) Schema() map[string]any {
	schema := map[string]any{"type": "integer"}
	setBound(schema, "minimum", p.Minimum)
	setBound(schema, "maximum", p.Maximum)
	setBound(schema, "exclusiveMinimum", p.ExclusiveMinimum)
	setBound(schema, "exclusiveMaximum", p.ExclusiveMaximum)
	setBound(schema, "multipleOf", p.MultipleOf)
	return schema
}

func setBound[T int | float64](schema map[string]any, key string, v *T) {
	if v != nil {
		schema[key] = *v
	}
}

func isMultiple(v, m float64) bool {
	if m == 0 {
		return true
	}
	q := v / m
	return math.Abs(q-math.Round(q)) < 1e-9
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
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
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}

	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int cannot hold.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int(f), true
}
