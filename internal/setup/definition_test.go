package setup

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/fcs-core/internal/setup/parameter"
)

func TestFindParserLongestMatch(t *testing.T) {
	def := testMotor()

	tests := []struct {
		name    string
		payload map[string]any
		want    string
		keys    []string
	}{
		{"action and unit", map[string]any{"action": "MOVE_ABS", "unit": "UU", "pos": 1.0}, "move_abs_pos", []string{"action", "unit"}},
		{"encoder unit", map[string]any{"action": "MOVE_ABS", "unit": "ENC", "enc": 10}, "move_abs_enc", []string{"action", "unit"}},
		{"action only", map[string]any{"action": "MOVE_ABS", "pos": 1.0}, "move_abs_incomplete", []string{"action"}},
		{"null unit is absent", map[string]any{"action": "MOVE_ABS", "unit": nil}, "move_abs_incomplete", []string{"action"}},
		{"single key context", map[string]any{"action": "MOVE_BY_SPEED", "speed": 2.0}, "move_by_speed", []string{"action"}},
		{"no context", map[string]any{"pos": 1.0}, "", nil},
		{"unknown action value", map[string]any{"action": "MOVE_REL"}, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, keys := def.FindParser(tt.payload)
			if tt.want == "" {
				if action != nil {
					t.Fatalf("FindParser() = %s, want no match", action.Name)
				}
				return
			}
			if action == nil {
				t.Fatalf("FindParser() = nil, want %s", tt.want)
			}
			if action.Name != tt.want {
				t.Errorf("FindParser() = %s, want %s", action.Name, tt.want)
			}
			if !reflect.DeepEqual(keys, tt.keys) {
				t.Errorf("FindParser() keys = %v, want %v", keys, tt.keys)
			}
		})
	}
}

func TestContextTableReplacesInPlace(t *testing.T) {
	var table contextTable
	first := &Action{Name: "first", Context: Context{"action": "ON"}}
	other := &Action{Name: "other", Context: Context{"action": "OFF"}}
	second := &Action{Name: "second", Context: Context{"action": "ON"}}
	table.add(first)
	table.add(other)
	table.add(second)
	table.add(&Action{Name: "no context"})

	var names []string
	table.each(func(a *Action) { names = append(names, a.Name) })
	if want := []string{"second", "other"}; !reflect.DeepEqual(names, want) {
		t.Errorf("entries = %v, want %v", names, want)
	}
}

func TestContextTableOrdersByKeyCount(t *testing.T) {
	var table contextTable
	table.add(&Action{Name: "one", Context: Context{"a": 1}})
	table.add(&Action{Name: "three", Context: Context{"a": 1, "b": 2, "c": 3}})
	table.add(&Action{Name: "two", Context: Context{"a": 1, "b": 2}})
	table.add(&Action{Name: "other two", Context: Context{"a": 1, "c": 3}})

	var names []string
	table.each(func(a *Action) { names = append(names, a.Name) })
	if want := []string{"three", "two", "other two", "one"}; !reflect.DeepEqual(names, want) {
		t.Errorf("lookup order = %v, want %v", names, want)
	}

	action, _ := table.find(func(k string) (any, bool) {
		v, ok := map[string]any{"a": 1.0, "c": 3}[k]
		return v, ok
	})
	if action == nil || action.Name != "other two" {
		t.Errorf("find() = %v, want other two", action)
	}
}

func TestBuildRejectsInconsistentDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
	}{
		{"empty devtype", NewDefinition("")},
		{"undeclared argument", NewDefinition("x").
			Action(Action{Name: "a", Args: []Arg{{Name: "missing"}}})},
		{"undeclared context key", NewDefinition("x").
			Action(Action{Name: "a", Context: Context{"action": "ON"}})},
		{"invalid context value", NewDefinition("x").
			Param(parameter.Param{Name: "action", Parser: parameter.String{Enum: []string{"ON"}}}).
			Action(Action{Name: "a", Context: Context{"action": "BLINK"}})},
		{"slots without apply", NewDefinition("x").Slot("lamp1", "lamp")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.builder.Build(); !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("Build() error = %v, want ErrInvalidDefinition", err)
			}
		})
	}
}

func TestExtendOverridesParentActions(t *testing.T) {
	parent := testLamp()
	child := Extend(parent, "DimLamp").
		Param(parameter.Param{Name: "intensity", Parser: parameter.Float{Minimum: parameter.Ptr(0.0), Maximum: parameter.Ptr(50.0)}}).
		Action(Action{
			Name:    "switch_on",
			Context: Context{"action": "ON"},
			Args:    []Arg{{Name: "intensity"}, {Name: "time", Optional: true}},
			Setup:   true,
		}).
		MustBuild()

	if child.DevType() != "dimlamp" {
		t.Errorf("DevType() = %q, want dimlamp", child.DevType())
	}
	if child.Parent() != parent {
		t.Error("Parent() should return the extended definition")
	}
	if len(child.Params()) != len(parent.Params()) {
		t.Errorf("Params() = %d, want %d", len(child.Params()), len(parent.Params()))
	}

	action, _ := child.FindParser(map[string]any{"action": "ON"})
	if action == nil || len(action.Required()) != 1 {
		t.Fatalf("child switch_on = %+v, want one required argument", action)
	}
	if _, ok := child.Action("switch_off"); !ok {
		t.Error("inherited switch_off missing")
	}

	// the parent is untouched
	if action, _ := parent.FindParser(map[string]any{"action": "ON"}); len(action.Required()) != 2 {
		t.Errorf("parent switch_on required = %v", action.Required())
	}
}

func TestDefinitionSchema(t *testing.T) {
	schema := testMotor().Schema()

	if schema["additionalProperties"] != false {
		t.Error("additionalProperties should be false")
	}
	if !reflect.DeepEqual(schema["required"], []any{"action"}) {
		t.Errorf("required = %v", schema["required"])
	}
	props := schema["properties"].(map[string]any)
	if len(props) != 5 {
		t.Errorf("properties = %d, want 5", len(props))
	}

	allOf := schema["allOf"].([]any)
	want := []any{
		map[string]any{
			"if":   map[string]any{"properties": map[string]any{"action": map[string]any{"const": "MOVE_ABS"}, "unit": map[string]any{"const": "UU"}}},
			"then": map[string]any{"required": []any{"pos"}, "minProperties": 3, "maxProperties": 3},
		},
		map[string]any{
			"if":   map[string]any{"properties": map[string]any{"action": map[string]any{"const": "MOVE_ABS"}, "unit": map[string]any{"const": "ENC"}}},
			"then": map[string]any{"required": []any{"enc"}, "minProperties": 3, "maxProperties": 3},
		},
		map[string]any{
			"if":   map[string]any{"properties": map[string]any{"action": map[string]any{"const": "MOVE_ABS"}}},
			"then": map[string]any{"required": []any{"unit"}, "minProperties": 3},
		},
		map[string]any{
			"if":   map[string]any{"properties": map[string]any{"action": map[string]any{"const": "MOVE_BY_SPEED"}}},
			"then": map[string]any{"required": []any{"speed"}, "minProperties": 2, "maxProperties": 2},
		},
	}
	if !reflect.DeepEqual(allOf, want) {
		t.Errorf("allOf =\n%v\nwant\n%v", allOf, want)
	}
}

func TestSchemaBoundsActionsWithoutArgs(t *testing.T) {
	allOf := testLamp().Schema()["allOf"].([]any)
	if len(allOf) != 2 {
		t.Fatalf("allOf = %d clauses, want 2", len(allOf))
	}
	want := map[string]any{
		"if":   map[string]any{"properties": map[string]any{"action": map[string]any{"const": "OFF"}}},
		"then": map[string]any{"maxProperties": 1},
	}
	if !reflect.DeepEqual(allOf[1], want) {
		t.Errorf("switch_off clause = %v, want %v", allOf[1], want)
	}
}

func TestSchemaSkipsExtendedArglessContext(t *testing.T) {
	def := NewDefinition("shutter").
		Param(parameter.Param{Name: "action", Parser: parameter.NewEnumName("", "CLOSE", "OPEN"), Required: true}).
		Param(parameter.Param{Name: "speed", Parser: parameter.Float{}}).
		Action(Action{Name: "close", Context: Context{"action": "CLOSE"}, Setup: true}).
		Action(Action{Name: "close_slow", Context: Context{"action": "CLOSE", "speed": 0.5}, Setup: true}).
		MustBuild()

	allOf := def.Schema()["allOf"].([]any)
	if len(allOf) != 1 {
		t.Fatalf("allOf = %d clauses, want 1", len(allOf))
	}
	then := allOf[0].(map[string]any)["then"]
	if want := map[string]any{"maxProperties": 2}; !reflect.DeepEqual(then, want) {
		t.Errorf("then = %v, want %v", then, want)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := testRegistry()

	if _, err := r.Lookup("LAMP"); err != nil {
		t.Errorf("Lookup(LAMP) unexpected error: %v", err)
	}

	_, err := r.Lookup("laser")
	var uerr *UnknownDeviceTypeError
	if !errors.As(err, &uerr) {
		t.Fatalf("Lookup(laser) error = %v, want UnknownDeviceTypeError", err)
	}
	if !reflect.DeepEqual(uerr.Available, []string{"lamp", "motor", "source"}) {
		t.Errorf("Available = %v", uerr.Available)
	}
	if !errors.Is(err, ErrUnknownDeviceType) {
		t.Error("error should match ErrUnknownDeviceType")
	}

	if got := r.DevTypes(true); !reflect.DeepEqual(got, []string{"lamp", "motor"}) {
		t.Errorf("DevTypes(true) = %v", got)
	}
}

func TestRegistryChildFallsBack(t *testing.T) {
	base := testRegistry()
	local := base.Child()
	local.Register(Extend(testLamp(), "lamp").Doc("local lamp").MustBuild())

	def, err := local.Lookup("lamp")
	if err != nil || def.Doc() != "local lamp" {
		t.Errorf("local Lookup(lamp) = %v, %v", def, err)
	}
	if _, err := local.Lookup("motor"); err != nil {
		t.Errorf("fallback Lookup(motor) unexpected error: %v", err)
	}
	if def, _ := base.Lookup("lamp"); def.Doc() == "local lamp" {
		t.Error("child registration leaked into the parent")
	}

	e, err := local.New("src", "source")
	if err != nil {
		t.Fatalf("New(source) unexpected error: %v", err)
	}
	if _, ok := e.(*Assembly); !ok {
		t.Errorf("New(source) = %T, want *Assembly", e)
	}
}

func TestRegistrySchemaEnvelope(t *testing.T) {
	schema, err := testRegistry().Schema("lamp", "motor")
	if err != nil {
		t.Fatalf("Schema() unexpected error: %v", err)
	}
	if schema["$schema"] != SchemaDraft || schema["type"] != "array" {
		t.Errorf("envelope = %v", schema)
	}
	defs := schema["definitions"].(map[string]any)
	for _, key := range []string{"param", "lamp", "motor"} {
		if _, ok := defs[key]; !ok {
			t.Errorf("definitions missing %q", key)
		}
	}
	oneOf := defs["param"].(map[string]any)["oneOf"].([]any)
	if len(oneOf) != 2 {
		t.Errorf("oneOf = %v", oneOf)
	}

	if _, err := testRegistry().Schema("laser"); !errors.Is(err, ErrUnknownDeviceType) {
		t.Errorf("Schema(laser) error = %v", err)
	}
}
