package parameter

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParamAssignAndLookup(t *testing.T) {
	intensity := Param{
		Name:        "intensity",
		Parser:      Float{Minimum: Ptr(0.0), Maximum: Ptr(100.0)},
		Description: "Lamp intensity.",
	}
	values := NewValues()

	if values.IsSet("intensity") {
		t.Fatal("fresh buffer reports intensity as set")
	}
	if v, ok := intensity.Lookup(values); ok || v != nil {
		t.Fatalf("Lookup() on unset = %v, %v, want nil, false", v, ok)
	}

	if err := intensity.Assign(values, 40); err != nil {
		t.Fatalf("Assign(40) unexpected error: %v", err)
	}
	if v, ok := intensity.Lookup(values); !ok || v != 40.0 {
		t.Errorf("Lookup() = %v, %v, want 40, true", v, ok)
	}

	if err := intensity.Assign(values, nil); err != nil {
		t.Fatalf("Assign(nil) unexpected error: %v", err)
	}
	if values.IsSet("intensity") {
		t.Error("Assign(nil) should unset the parameter")
	}
}

func TestParamAssignErrorNamesParameter(t *testing.T) {
	p := Param{Name: "intensity", Parser: Float{Maximum: Ptr(100.0)}}
	values := NewValues()
	if err := p.Assign(values, 20); err != nil {
		t.Fatalf("Assign(20) unexpected error: %v", err)
	}

	err := p.Assign(values, 120)
	if err == nil {
		t.Fatal("Assign(120) expected error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if verr.Param != "intensity" || verr.Value != 120.0 {
		t.Errorf("ValidationError = %+v, want param intensity value 120", verr)
	}
	if !strings.Contains(err.Error(), `parameter "intensity"`) {
		t.Errorf("error %q does not name the parameter", err)
	}
	if v, _ := p.Lookup(values); v != 20.0 {
		t.Errorf("failed Assign changed the value to %v", v)
	}
}

func TestParamSchemaDescription(t *testing.T) {
	p := Param{Name: "time", Parser: Int{Minimum: Ptr(1)}, Description: "Lamp timer."}
	want := map[string]any{"type": "integer", "minimum": 1, "description": "Lamp timer."}
	if got := p.Schema(); !reflect.DeepEqual(got, want) {
		t.Errorf("Schema() = %v, want %v", got, want)
	}
}

func TestParamDefaultsToString(t *testing.T) {
	p := Param{Name: "name"}
	values := NewValues()
	if err := p.Assign(values, 12); err != nil {
		t.Fatalf("Assign() unexpected error: %v", err)
	}
	if v, _ := p.Lookup(values); v != "12" {
		t.Errorf("Lookup() = %#v, want \"12\"", v)
	}
}

func TestValuesCloneIsIndependent(t *testing.T) {
	list := Param{Name: "bits", Parser: List{Elem: Int{}}}
	values := NewValues()
	if err := list.Assign(values, []any{1, 2}); err != nil {
		t.Fatalf("Assign() unexpected error: %v", err)
	}

	clone := values.Clone()
	raw, _ := values.Internal("bits")
	if err := raw.(*ListValue).Append(3); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}

	cloned, _ := clone.Internal("bits")
	if n := cloned.(*ListValue).Len(); n != 2 {
		t.Errorf("clone length = %d, want 2", n)
	}

	values.Clear()
	if values.Len() != 0 || clone.Len() != 1 {
		t.Errorf("Clear() lens = %d/%d, want 0/1", values.Len(), clone.Len())
	}
}

func TestListValueRevalidates(t *testing.T) {
	p := List{Elem: Int{Minimum: Ptr(0)}}

	raw, err := p.ParseIn([]any{1, 2.0, "3"})
	if err != nil {
		t.Fatalf("ParseIn() unexpected error: %v", err)
	}
	lv := raw.(*ListValue)
	if !reflect.DeepEqual(lv.Items(), []any{1, 2, 3}) {
		t.Fatalf("Items() = %v, want [1 2 3]", lv.Items())
	}

	if err := lv.Append(-1); !errors.Is(err, ErrInvalid) {
		t.Errorf("Append(-1) error = %v, want ErrInvalid", err)
	}
	if err := lv.Insert(0, "x"); err == nil {
		t.Error("Insert(x) expected error")
	}
	if err := lv.Set(1, 2.5); err == nil {
		t.Error("Set(2.5) expected error")
	}
	if err := lv.Extend(4, -5); err == nil {
		t.Error("Extend(4, -5) expected error")
	}
	if lv.Len() != 3 {
		t.Errorf("rejected edits changed length to %d", lv.Len())
	}

	if err := lv.Insert(0, 0); err != nil {
		t.Fatalf("Insert(0, 0) unexpected error: %v", err)
	}
	if err := lv.Set(3, "9"); err != nil {
		t.Fatalf("Set(3, 9) unexpected error: %v", err)
	}
	if !reflect.DeepEqual(lv.Items(), []any{0, 1, 2, 9}) {
		t.Errorf("Items() = %v, want [0 1 2 9]", lv.Items())
	}

	joined, err := lv.Concat(10)
	if err != nil {
		t.Fatalf("Concat() unexpected error: %v", err)
	}
	if joined.Len() != 5 || lv.Len() != 4 {
		t.Errorf("Concat() lens = %d/%d, want 5/4", joined.Len(), lv.Len())
	}

	if out := p.ParseOut(lv); !reflect.DeepEqual(out, []any{0, 1, 2, 9}) {
		t.Errorf("ParseOut() = %v", out)
	}
	if _, err := p.ParseIn("nope"); err == nil {
		t.Error("ParseIn(string) expected error")
	}
}

func TestListSchema(t *testing.T) {
	p := List{Elem: Float{Maximum: Ptr(1.0)}}
	want := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "number", "maximum": 1.0},
	}
	if got := p.Schema(); !reflect.DeepEqual(got, want) {
		t.Errorf("Schema() = %v, want %v", got, want)
	}
}
