package setup

import (
	"maps"
	"slices"
)

// SchemaDraft is the JSON-Schema dialect of every generated document.
const SchemaDraft = "http://json-schema.org/draft-07/schema#"

// Schema returns the JSON-Schema of a parameter payload of this device
// type. Every context entry with required arguments contributes an
// if/then clause under allOf, so a validator enforces the same branching
// FindParser applies at runtime. A non-variadic entry without required
// arguments only bounds the payload size, unless a longer context extends
// it.
//
// The schema is built once; callers must not modify it.
func (d *Definition) Schema() map[string]any {
	d.schemaOnce.Do(func() {
		d.schema = d.buildSchema()
	})
	return d.schema
}

func (d *Definition) buildSchema() map[string]any {
	properties := make(map[string]any, len(d.params))
	required := make([]any, 0)
	for _, p := range d.params {
		properties[p.Name] = p.Schema()
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
	if allOf := d.allOf(); len(allOf) > 0 {
		schema["allOf"] = allOf
	}
	return schema
}

func (d *Definition) allOf() []any {
	var clauses []any
	d.parsers.each(func(a *Action) {
		if len(a.Context) == 0 {
			return
		}
		argsRequired := a.Required()
		if len(argsRequired) == 0 && (a.Variadic || d.extended(a)) {
			return
		}

		ifProps := make(map[string]any, len(a.Context))
		for _, k := range a.Context.Keys() {
			ifProps[k] = map[string]any{"const": a.Context[k]}
		}

		then := map[string]any{}
		if len(argsRequired) > 0 {
			then["required"] = toAnySlice(argsRequired)
		}
		if n, ok := a.minProperties(); ok {
			then["minProperties"] = n
		}
		if n, ok := a.maxProperties(); ok {
			then["maxProperties"] = n
		}

		clauses = append(clauses, map[string]any{
			"if":   map[string]any{"properties": ifProps},
			"then": then,
		})
	})
	return clauses
}

// extended reports whether another context entry fixes every key of a's
// context to the same value plus at least one more.
func (d *Definition) extended(a *Action) bool {
	found := false
	d.parsers.each(func(other *Action) {
		if found || len(other.Context) <= len(a.Context) {
			return
		}
		for k, v := range a.Context {
			ov, ok := other.Context[k]
			if !ok || !sameValue(ov, v) {
				return
			}
		}
		found = true
	})
	return found
}

// envelope wraps per device type schemas into the document validating a
// whole setup payload: a list of {id, param} elements whose param holds
// exactly one known device type block.
func envelope(defs map[string]*Definition) map[string]any {
	devtypes := slices.Sorted(maps.Keys(defs))

	paramProps := make(map[string]any, len(devtypes))
	oneOf := make([]any, 0, len(devtypes))
	definitions := map[string]any{}
	for _, devtype := range devtypes {
		paramProps[devtype] = map[string]any{"$ref": "#/definitions/" + devtype}
		oneOf = append(oneOf, map[string]any{"required": []any{devtype}})
		definitions[devtype] = defs[devtype].Schema()
	}
	definitions["param"] = map[string]any{
		"type":       "object",
		"properties": paramProps,
		"oneOf":      oneOf,
	}

	return map[string]any{
		"$schema": SchemaDraft,
		"title":   "FCF schema",
		"type":    "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{
					"type":        "string",
					"description": "device identifier.",
				},
				"param": map[string]any{"$ref": "#/definitions/param"},
			},
			"required":             []any{"id", "param"},
			"additionalProperties": false,
		},
		"definitions": definitions,
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
