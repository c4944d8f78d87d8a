package parameter

import (
	"fmt"
	"strings"
)

// Pair maps one external wire name to its internal value.
type Pair struct {
	Name  string
	Value any
}

// StringMap accepts a closed set of external names and stores the internal
// value each name maps to. Internal values must be comparable.
type StringMap struct {
	pairs []Pair
}

// NewStringMap builds a StringMap. Order is kept for the schema enum.
func NewStringMap(pairs ...Pair) StringMap {
	return StringMap{pairs: append([]Pair(nil), pairs...)}
}

// Names returns the accepted external names in declaration order.
func (p StringMap) Names() []string {
	names := make([]string, len(p.pairs))
	for i, pair := range p.pairs {
		names[i] = pair.Name
	}
	return names
}

// ParseIn implements Parser.
func (p StringMap) ParseIn(v any) (any, error) {
	s, ok := v.(string)
	if ok {
		for _, pair := range p.pairs {
			if pair.Name == s {
				return pair.Value, nil
			}
		}
	}
	return nil, invalid(v, "value must be one of %s", strings.Join(p.Names(), ", "))
}

// ParseOut implements Parser. Unknown internal values are returned as is.
func (p StringMap) ParseOut(v any) any {
	for _, pair := range p.pairs {
		if pair.Value == v {
			return pair.Name
		}
	}
	return v
}

// Schema implements Parser.
func (p StringMap) Schema() map[string]any {
	return map[string]any{
		"type": "string",
		"enum": p.Names(),
	}
}

// Symbol is the internal value stored by an EnumName parser: the full,
// prefixed symbol name as known by the control software.
type Symbol string

// EnumName maps external names onto prefixed symbols. With prefix "DROT_"
// the wire value "MOVE_ABS" is stored as Symbol("DROT_MOVE_ABS").
type EnumName struct {
	StringMap
	prefix string
}

// NewEnumName builds an EnumName parser from the full symbol names of an
// enumeration. Symbols not carrying prefix keep their full name.
func NewEnumName(prefix string, symbols ...string) EnumName {
	pairs := make([]Pair, 0, len(symbols))
	for _, sym := range symbols {
		pairs = append(pairs, Pair{Name: strings.TrimPrefix(sym, prefix), Value: Symbol(sym)})
	}
	return EnumName{StringMap: NewStringMap(pairs...), prefix: prefix}
}

// Prefix returns the prefix stripped from symbol names.
func (p EnumName) Prefix() string {
	return p.prefix
}

// ParseIn implements Parser. A Symbol is accepted as is when it belongs to
// the enumeration.
func (p EnumName) ParseIn(v any) (any, error) {
	if sym, ok := v.(Symbol); ok {
		for _, pair := range p.pairs {
			if pair.Value == sym {
				return sym, nil
			}
		}
		return nil, invalid(string(sym), "unknown symbol")
	}
	return p.StringMap.ParseIn(v)
}

// String returns a short description used in help output.
func (p EnumName) String() string {
	return fmt.Sprintf("enum(%s)", strings.Join(p.Names(), "|"))
}
