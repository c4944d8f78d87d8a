package parameter

import (
	"sort"
)

// Param describes one parameter of a device type. It is declared once per
// device type and shared by every device of that type.
type Param struct {
	Name        string
	Parser      Parser
	Required    bool
	Description string
}

func (p Param) parser() Parser {
	if p.Parser == nil {
		return String{}
	}
	return p.Parser
}

// ParseIn converts a wire value, attributing any error to the parameter.
func (p Param) ParseIn(v any) (any, error) {
	out, err := p.parser().ParseIn(v)
	if err != nil {
		return nil, named(p.Name, err)
	}
	return out, nil
}

// ParseOut converts an internal value back to its wire form.
func (p Param) ParseOut(v any) any {
	return p.parser().ParseOut(v)
}

// Schema returns the parser fragment with the description attached.
func (p Param) Schema() map[string]any {
	schema := p.parser().Schema()
	if p.Description != "" {
		schema["description"] = p.Description
	}
	return schema
}

// Assign converts v and stores it in values. A nil v unsets the parameter.
// On error values is left untouched.
func (p Param) Assign(values *Values, v any) error {
	if v == nil {
		values.Delete(p.Name)
		return nil
	}
	in, err := p.ParseIn(v)
	if err != nil {
		return err
	}
	values.m[p.Name] = in
	return nil
}

// Lookup returns the wire value of the parameter and whether it is set.
func (p Param) Lookup(values *Values) (any, bool) {
	v, ok := values.m[p.Name]
	if !ok {
		return nil, false
	}
	return p.ParseOut(v), true
}

// Values is the per-device parameter buffer holding internal values.
// A name is present only while its parameter is set.
//
// Values is not safe for concurrent use.
type Values struct {
	m map[string]any
}

// NewValues returns an empty buffer.
func NewValues() *Values {
	return &Values{m: make(map[string]any)}
}

// Internal returns the raw internal value stored under name.
func (v *Values) Internal(name string) (any, bool) {
	val, ok := v.m[name]
	return val, ok
}

// IsSet reports whether name holds a value.
func (v *Values) IsSet(name string) bool {
	_, ok := v.m[name]
	return ok
}

// Delete unsets name.
func (v *Values) Delete(name string) {
	delete(v.m, name)
}

// Len returns the number of set parameters.
func (v *Values) Len() int {
	return len(v.m)
}

// Names returns the set parameter names in lexical order.
func (v *Values) Names() []string {
	names := make([]string, 0, len(v.m))
	for name := range v.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear unsets every parameter.
func (v *Values) Clear() {
	clear(v.m)
}

// Clone returns an independent copy. List values are copied so edits on one
// buffer never show through the other.
func (v *Values) Clone() *Values {
	out := &Values{m: make(map[string]any, len(v.m))}
	for name, val := range v.m {
		out.m[name] = cloneValue(val)
	}
	return out
}

// Update copies every entry of other over v.
func (v *Values) Update(other *Values) {
	for name, val := range other.m {
		v.m[name] = cloneValue(val)
	}
}

// Replace makes v hold exactly the entries of other.
func (v *Values) Replace(other *Values) {
	clear(v.m)
	v.Update(other)
}

func cloneValue(val any) any {
	if lv, ok := val.(*ListValue); ok {
		return lv.Clone()
	}
	return val
}
