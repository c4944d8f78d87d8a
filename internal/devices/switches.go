package devices

import (
	"github.com/nerrad567/fcs-core/internal/setup"
	"github.com/nerrad567/fcs-core/internal/setup/parameter"
)

// Lamp is a calibration lamp with an intensity and a switch-off timer.
var Lamp = setup.NewDefinition("lamp").
	Doc("Calibration lamp.").
	Param(parameter.Param{
		Name:        "action",
		Parser:      parameter.NewEnumName("", "ON", "OFF"),
		Required:    true,
		Description: "Lamp action.",
	}).
	Param(parameter.Param{
		Name:        "intensity",
		Parser:      parameter.Float{Minimum: parameter.Ptr(0.0), Maximum: parameter.Ptr(100.0)},
		Description: "Lamp intensity.",
	}).
	Param(parameter.Param{
		Name:        "time",
		Parser:      parameter.Int{Minimum: parameter.Ptr(1)},
		Description: "Lamp timer.",
	}).
	Action(setup.Action{
		Name:    "switch_on",
		Context: setup.Context{"action": "ON"},
		Args:    []setup.Arg{{Name: "intensity"}, {Name: "time"}},
		Setup:   true,
		Doc:     "Switch the lamp on at intensity for time seconds.",
	}).
	Action(setup.Action{
		Name:    "switch_off",
		Context: setup.Context{"action": "OFF"},
		Setup:   true,
		Doc:     "Switch the lamp off.",
	}).
	MustBuild()

// Shutter is a two-position shutter.
var Shutter = setup.NewDefinition("shutter").
	Doc("Shutter.").
	Param(parameter.Param{
		Name:        "action",
		Parser:      parameter.NewEnumName("", "OPEN", "CLOSE"),
		Required:    true,
		Description: "Shutter action.",
	}).
	Action(setup.Action{Name: "open", Context: setup.Context{"action": "OPEN"}, Setup: true}).
	Action(setup.Action{Name: "close", Context: setup.Context{"action": "CLOSE"}, Setup: true}).
	MustBuild()

// Actuator is an on/off actuator.
var Actuator = setup.NewDefinition("actuator").
	Doc("Actuator.").
	Param(parameter.Param{
		Name:        "action",
		Parser:      parameter.NewEnumName("", "ON", "OFF"),
		Required:    true,
		Description: "Actuator action.",
	}).
	Action(setup.Action{Name: "switch_on", Context: setup.Context{"action": "ON"}, Setup: true}).
	Action(setup.Action{Name: "switch_off", Context: setup.Context{"action": "OFF"}, Setup: true}).
	MustBuild()
