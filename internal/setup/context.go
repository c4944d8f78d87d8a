package setup

import (
	"reflect"
	"slices"
	"sort"
)

// Context fixes the wire values of some parameters. A payload whose values
// match a Context is governed by the action declaring it.
type Context map[string]any

// Keys returns the context parameter names in lexical order.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// absent marks a context key missing from the probed payload or state.
type absentMarker struct{}

var absent = absentMarker{}

// contextTable maps context key tuples to the actions they select.
//
// Buckets are kept sorted by descending key count so the most constrained
// context is tried first; buckets of equal size keep declaration order.
type contextTable struct {
	buckets []*bucket
}

type bucket struct {
	keys    []string
	entries []tableEntry
}

type tableEntry struct {
	values []any
	action *Action
}

// add registers a under its context. Actions without context are not
// reachable through the table. A later action with the same key and value
// tuple replaces the earlier one in place.
func (t *contextTable) add(a *Action) {
	if len(a.Context) == 0 {
		return
	}
	keys := a.Context.Keys()
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = a.Context[k]
	}

	b := t.bucket(keys)
	for i := range b.entries {
		if sameValues(b.entries[i].values, values) {
			b.entries[i].action = a
			return
		}
	}
	b.entries = append(b.entries, tableEntry{values: values, action: a})
}

func (t *contextTable) bucket(keys []string) *bucket {
	for _, b := range t.buckets {
		if slices.Equal(b.keys, keys) {
			return b
		}
	}
	b := &bucket{keys: keys}
	t.buckets = append(t.buckets, b)
	sort.SliceStable(t.buckets, func(i, j int) bool {
		return len(t.buckets[i].keys) > len(t.buckets[j].keys)
	})
	return b
}

// find returns the action of the longest context matching probe, or nil.
// probe reports the wire value held under a key; a missing or nil value
// only matches contexts that are themselves missing the key.
func (t *contextTable) find(probe func(key string) (any, bool)) (*Action, []string) {
	for _, b := range t.buckets {
		values := make([]any, len(b.keys))
		for i, k := range b.keys {
			v, ok := probe(k)
			if !ok || v == nil {
				v = absent
			}
			values[i] = v
		}
		for _, e := range b.entries {
			if sameValues(e.values, values) {
				return e.action, b.keys
			}
		}
	}
	return nil, nil
}

// each visits entries bucket by bucket in lookup order.
func (t *contextTable) each(fn func(a *Action)) {
	for _, b := range t.buckets {
		for _, e := range b.entries {
			fn(e.action)
		}
	}
}

func sameValues(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameValue(a[i], b[i]) {
			return false
		}
	}
	return true
}

// sameValue compares wire values, treating numbers of different Go types
// as equal when they hold the same quantity.
func sameValue(a, b any) bool {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
