// Package status reads the status reported by the App/DevStatus command
// and waits for devices to reach a given state.
//
// A status is a flat list of "key = value" lines where keys are dotted
// paths such as "lamp1.lcs.substate":
//
//	st := status.Parse(lines)
//	st.Get("lamp1.lcs.substate")          // "Off", true
//	lamp1, _ := st.Sub("lamp1")            // keys without the lamp1. prefix
//	substates, _ := st.Restricted("lcs.substate")
//	substates.Get("lamp2")                 // "Off", true
package status

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const separator = " = "

// Status is an ordered key/value view of device status lines.
// Values are JSON-decoded when possible, otherwise kept as strings.
type Status struct {
	keys   []string
	values map[string]any
}

// Scalar is the single value matched by Restricted when the suffix is a
// complete key.
type Scalar struct {
	Key   string
	Value any
}

// New returns an empty status.
func New() *Status {
	return &Status{values: make(map[string]any)}
}

// Parse builds a status from "key = value" lines. Lines without a value
// are skipped; a repeated key keeps its first position and last value.
func Parse(lines []string) *Status {
	s := New()
	for _, line := range lines {
		key, value, ok := strings.Cut(line, separator)
		if !ok || value == "" {
			continue
		}
		s.Set(key, parseValue(value))
	}
	return s
}

// ParseText is Parse on newline separated text.
func ParseText(text string) *Status {
	return Parse(strings.Split(text, "\n"))
}

func parseValue(v string) any {
	var out any
	if err := json.Unmarshal([]byte(v), &out); err == nil {
		return out
	}
	return strings.Trim(strings.TrimSpace(v), "'")
}

// Set stores value under key.
func (s *Status) Set(key string, value any) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the value of key.
func (s *Status) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of keys.
func (s *Status) Len() int { return len(s.keys) }

// Keys returns the keys in order.
func (s *Status) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Values returns the values in key order.
func (s *Status) Values() []any {
	out := make([]any, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.values[k]
	}
	return out
}

// Sub returns the keys under prefix with the prefix and its dot removed.
// It reports false when nothing is under prefix.
func (s *Status) Sub(prefix string) (*Status, bool) {
	dotted := prefix + "."
	out := New()
	for _, k := range s.keys {
		if rest, ok := strings.CutPrefix(k, dotted); ok {
			out.Set(rest, s.values[k])
		}
	}
	return out, out.Len() > 0
}

// Filtered returns the entries whose key matches pattern. With onValues the
// pattern is applied to string values instead and other values are dropped.
func (s *Status) Filtered(pattern string, onValues bool) (*Status, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("status: invalid filter pattern: %w", err)
	}
	out := New()
	for _, k := range s.keys {
		v := s.values[k]
		if onValues {
			if str, ok := v.(string); ok && re.MatchString(str) {
				out.Set(k, v)
			}
			continue
		}
		if re.MatchString(k) {
			out.Set(k, v)
		}
	}
	return out, nil
}

// Restricted returns the entries whose key ends with suffix, keyed by what
// precedes it: "lcs.state" turns "lamp1.lcs.state" into "lamp1". When suffix
// is itself a key, the match is returned as a Scalar and the status is nil.
func (s *Status) Restricted(suffix string) (*Status, *Scalar) {
	dotted := "." + strings.TrimPrefix(suffix, ".")
	out := New()
	for _, k := range s.keys {
		if k == suffix {
			return nil, &Scalar{Key: k, Value: s.values[k]}
		}
		if head, ok := strings.CutSuffix(k, dotted); ok {
			out.Set(head, s.values[k])
		}
	}
	return out, nil
}

// Lines formats the status back to "key = value" lines.
func (s *Status) Lines() []string {
	out := make([]string, len(s.keys))
	for i, k := range s.keys {
		out[i] = k + separator + formatValue(s.values[k])
	}
	return out
}

// String implements fmt.Stringer.
func (s *Status) String() string {
	return strings.Join(s.Lines(), "\n")
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return "''"
		}
		return x
	case nil:
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
