package parameter

import (
	"fmt"
	"reflect"
)

// List accepts an array and converts every element with Elem.
// The stored value is a *ListValue that keeps validating later edits.
type List struct {
	Elem Parser
}

// ParseIn implements Parser.
func (p List) ParseIn(v any) (any, error) {
	if lv, ok := v.(*ListValue); ok {
		return NewListValue(p.Elem, lv.Items()...)
	}
	items, ok := toSlice(v)
	if !ok {
		return nil, invalid(v, "expecting an array")
	}
	return NewListValue(p.Elem, items...)
}

// ParseOut implements Parser. Elements are converted back to wire values.
func (p List) ParseOut(v any) any {
	lv, ok := v.(*ListValue)
	if !ok {
		return v
	}
	out := make([]any, lv.Len())
	for i, item := range lv.items {
		out[i] = p.Elem.ParseOut(item)
	}
	return out
}

// Schema implements Parser.
func (p List) Schema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": p.Elem.Schema(),
	}
}

// ListValue is an ordered collection whose elements always passed the
// element parser. Every mutation converts the incoming values first and
// leaves the list untouched when any of them is rejected.
type ListValue struct {
	elem  Parser
	items []any
}

// NewListValue converts items with elem and returns the resulting list.
func NewListValue(elem Parser, items ...any) (*ListValue, error) {
	lv := &ListValue{elem: elem}
	if err := lv.Extend(items...); err != nil {
		return nil, err
	}
	return lv, nil
}

// Len returns the number of elements.
func (l *ListValue) Len() int { return len(l.items) }

// At returns the internal value at index i.
func (l *ListValue) At(i int) any { return l.items[i] }

// Items returns a copy of the internal values.
func (l *ListValue) Items() []any {
	return append([]any(nil), l.items...)
}

// Append converts and appends v.
func (l *ListValue) Append(v any) error {
	return l.Extend(v)
}

// Extend converts and appends every value, or none of them.
func (l *ListValue) Extend(values ...any) error {
	parsed, err := l.parseAll(values)
	if err != nil {
		return err
	}
	l.items = append(l.items, parsed...)
	return nil
}

// Insert converts v and inserts it before index i.
func (l *ListValue) Insert(i int, v any) error {
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("list index %d out of range [0:%d]", i, len(l.items))
	}
	parsed, err := l.parse(i, v)
	if err != nil {
		return err
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = parsed
	return nil
}

// Set converts v and replaces the element at index i.
func (l *ListValue) Set(i int, v any) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("list index %d out of range [0:%d]", i, len(l.items))
	}
	parsed, err := l.parse(i, v)
	if err != nil {
		return err
	}
	l.items[i] = parsed
	return nil
}

// Concat returns a new list holding l's elements followed by values.
func (l *ListValue) Concat(values ...any) (*ListValue, error) {
	out := &ListValue{elem: l.elem, items: l.Items()}
	if err := out.Extend(values...); err != nil {
		return nil, err
	}
	return out, nil
}

// Clone returns an independent copy.
func (l *ListValue) Clone() *ListValue {
	return &ListValue{elem: l.elem, items: l.Items()}
}

func (l *ListValue) parseAll(values []any) ([]any, error) {
	parsed := make([]any, len(values))
	for i, v := range values {
		p, err := l.parse(len(l.items)+i, v)
		if err != nil {
			return nil, err
		}
		parsed[i] = p
	}
	return parsed, nil
}

func (l *ListValue) parse(i int, v any) (any, error) {
	if l.elem == nil {
		return v, nil
	}
	p, err := l.elem.ParseIn(v)
	if err != nil {
		return nil, fmt.Errorf("item %d: %w", i, err)
	}
	return p, nil
}

func toSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
