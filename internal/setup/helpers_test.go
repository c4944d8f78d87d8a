package setup

import (
	"errors"
	"fmt"

	"github.com/nerrad567/fcs-core/internal/setup/parameter"
)

// Test device types modelled on the shipped lamp, motor and source
// declarations, kept local so the setup package tests stand alone.

func testLamp() *Definition {
	return NewDefinition("lamp").
		Param(parameter.Param{Name: "action", Parser: parameter.NewEnumName("LAMP_", "LAMP_ON", "LAMP_OFF"), Required: true}).
		Param(parameter.Param{Name: "intensity", Parser: parameter.Float{Minimum: parameter.Ptr(0.0), Maximum: parameter.Ptr(100.0)}}).
		Param(parameter.Param{Name: "time", Parser: parameter.Int{Minimum: parameter.Ptr(1)}}).
		Action(Action{
			Name:    "switch_on",
			Context: Context{"action": "ON"},
			Args:    []Arg{{Name: "intensity"}, {Name: "time"}},
			Setup:   true,
		}).
		Action(Action{
			Name:    "switch_off",
			Context: Context{"action": "OFF"},
			Setup:   true,
		}).
		MustBuild()
}

var errIncomplete = errors.New("incomplete payload")

func rejectIncomplete(*Device, *Action, map[string]any) error { return errIncomplete }

func testMotor() *Definition {
	return NewDefinition("motor").
		Param(parameter.Param{Name: "action", Parser: parameter.NewEnumName("", "MOVE_ABS", "MOVE_REL", "MOVE_BY_SPEED"), Required: true}).
		Param(parameter.Param{Name: "pos", Parser: parameter.Float{}}).
		Param(parameter.Param{Name: "enc", Parser: parameter.Int{}}).
		Param(parameter.Param{Name: "unit", Parser: parameter.NewEnumName("", "UU", "ENC")}).
		Param(parameter.Param{Name: "speed", Parser: parameter.Float{}}).
		Action(Action{Name: "move_abs_pos", Context: Context{"action": "MOVE_ABS", "unit": "UU"}, Args: []Arg{{Name: "pos"}}, Setup: true}).
		Action(Action{Name: "move_abs_enc", Context: Context{"action": "MOVE_ABS", "unit": "ENC"}, Args: []Arg{{Name: "enc"}}, Setup: true}).
		Action(Action{
			Name:          "move_abs_incomplete",
			Context:       Context{"action": "MOVE_ABS"},
			Args:          []Arg{{Name: "unit"}},
			Variadic:      true,
			MinProperties: parameter.Ptr(3),
			ParseOnly:     true,
			Validate:      rejectIncomplete,
		}).
		Action(Action{Name: "move_by_speed", Context: Context{"action": "MOVE_BY_SPEED"}, Args: []Arg{{Name: "speed"}}, Setup: true}).
		Action(Action{
			Name:  "move_abs",
			Args:  []Arg{{Name: "pos_or_enc"}, {Name: "unit", Optional: true}},
			Setup: true,
			Validate: func(d *Device, _ *Action, args map[string]any) error {
				unit, _ := args["unit"].(string)
				if unit == "" {
					unit = "UU"
				}
				if err := d.SetParam("action", "MOVE_ABS"); err != nil {
					return err
				}
				if err := d.SetParam("unit", unit); err != nil {
					return err
				}
				switch unit {
				case "UU":
					return d.SetParam("pos", args["pos_or_enc"])
				case "ENC":
					return d.SetParam("enc", args["pos_or_enc"])
				default:
					return fmt.Errorf("unknown unit %q", unit)
				}
			},
		}).
		MustBuild()
}

// sourceShares is the light share of each lamp per source mode.
var sourceShares = map[string]map[string]float64{
	"NIR":  {"lamp1": 1.0, "lamp2": 0.0},
	"RED":  {"lamp1": 0.4, "lamp2": 0.3},
	"BLUE": {"lamp1": 0.0, "lamp2": 0.8},
}

func applySource(a *Assembly, b *Buffer) error {
	lamps := []string{"lamp1", "lamp2"}
	action, _ := a.Param("action").(string)

	for _, name := range lamps {
		lamp, err := a.Child(name)
		if err != nil {
			return err
		}
		switch action {
		case "OFF":
			err = lamp.Call("switch_off", nil)
		case "ON":
			mode, _ := a.Param("mode").(string)
			share := sourceShares[mode][name]
			if share == 0 {
				err = lamp.Call("switch_off", nil)
			} else {
				intensity, _ := a.Param("intensity").(float64)
				err = lamp.Call("switch_on", map[string]any{"intensity": share * intensity, "time": a.Param("time")})
			}
		}
		if err != nil {
			return err
		}
		b.Add(true, lamp)
	}
	return nil
}

func testSource() *Definition {
	return NewDefinition("source").
		Param(parameter.Param{Name: "action", Parser: parameter.String{}, Required: true}).
		Param(parameter.Param{Name: "mode", Parser: parameter.String{Enum: []string{"NIR", "RED", "BLUE"}}}).
		Param(parameter.Param{Name: "intensity", Parser: parameter.Float{}}).
		Param(parameter.Param{Name: "time", Parser: parameter.Int{}}).
		Action(Action{
			Name:    "switch_on",
			Context: Context{"action": "ON"},
			Args:    []Arg{{Name: "mode"}, {Name: "intensity"}, {Name: "time"}},
			Setup:   true,
		}).
		Action(Action{Name: "switch_off", Context: Context{"action": "OFF"}, Setup: true}).
		Slot("lamp1", "lamp").
		Slot("lamp2", "lamp").
		Apply(applySource).
		MustBuild()
}

func testRegistry() *Registry {
	r := NewRegistry()
	r.Register(testLamp(), testMotor(), testSource())
	return r
}
