package devices

import (
	"github.com/nerrad567/fcs-core/internal/setup"
	"github.com/nerrad567/fcs-core/internal/setup/parameter"
)

// SourceModes gives, per light source mode, the share of the requested
// intensity delivered by each lamp of the source. A zero share switches
// the lamp off.
var SourceModes = map[string]map[string]float64{
	"NIR":   {"lamp1": 1.0, "lamp2": 0.0},
	"VIS":   {"lamp1": 0.0, "lamp2": 1.0},
	"BROAD": {"lamp1": 0.5, "lamp2": 0.5},
}

var sourceLamps = []string{"lamp1", "lamp2"}

func applySource(a *setup.Assembly, b *setup.Buffer) error {
	action, _ := a.Param("action").(string)
	mode, _ := a.Param("mode").(string)
	intensity, _ := a.Param("intensity").(float64)

	for _, name := range sourceLamps {
		lamp, err := a.Child(name)
		if err != nil {
			return err
		}

		share := SourceModes[mode][name]
		switch {
		case action == "ON" && share > 0:
			err = lamp.Call("switch_on", map[string]any{"intensity": share * intensity, "time": a.Param("time")})
		case action == "ON" || action == "OFF":
			err = lamp.Call("switch_off", nil)
		default:
			continue
		}
		if err != nil {
			return err
		}
		b.Add(true, lamp)
	}
	return nil
}

func sourceModeNames() []string {
	// fixed order for a stable schema
	return []string{"NIR", "VIS", "BROAD"}
}

// Source is a light source assembly made of two lamps. Switching it on in
// a mode drives each lamp with its share of the requested intensity.
var Source = setup.NewDefinition("source").
	Doc("Two-lamp light source.").
	Param(parameter.Param{
		Name:        "action",
		Parser:      parameter.NewEnumName("", "ON", "OFF"),
		Required:    true,
		Description: "Source action.",
	}).
	Param(parameter.Param{Name: "mode", Parser: parameter.String{Enum: sourceModeNames()}, Description: "Source mode."}).
	Param(parameter.Param{
		Name:        "intensity",
		Parser:      parameter.Float{Minimum: parameter.Ptr(0.0), Maximum: parameter.Ptr(100.0)},
		Description: "Source intensity.",
	}).
	Param(parameter.Param{Name: "time", Parser: parameter.Int{Minimum: parameter.Ptr(1)}, Description: "Source timer."}).
	Action(setup.Action{
		Name:    "switch_on",
		Context: setup.Context{"action": "ON"},
		Args:    []setup.Arg{{Name: "mode"}, {Name: "intensity"}, {Name: "time"}},
		Setup:   true,
	}).
	Action(setup.Action{Name: "switch_off", Context: setup.Context{"action": "OFF"}, Setup: true}).
	Slot("lamp1", "lamp").
	Slot("lamp2", "lamp").
	Apply(applySource).
	MustBuild()
