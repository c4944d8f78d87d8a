package devices

import (
	"fmt"

	"github.com/nerrad567/fcs-core/internal/setup"
	"github.com/nerrad567/fcs-core/internal/setup/parameter"
)

// Motor is a linear or rotary stage.
var Motor = moveMethods(
	motionActions(
		motionParams(
			setup.NewDefinition("motor").
				Doc("Motor.").
				Param(parameter.Param{
					Name:        "action",
					Parser:      parameter.NewEnumName("", "MOVE_ABS", "MOVE_REL", "MOVE_BY_SPEED", "MOVE_BY_NAME"),
					Required:    true,
					Description: "Motor action.",
				}),
			parameter.NewEnumName("", UnitUser, UnitEncoder),
		),
	),
	nil,
).MustBuild()

// Drot is a derotator. It speaks the motor vocabulary with DROT_ prefixed
// action symbols and adds position angle and tracking control.
var Drot = setup.Extend(Motor, "drot").
	Doc("Derotator.").
	Param(parameter.Param{
		Name: "action",
		Parser: parameter.NewEnumName("DROT_",
			"DROT_MOVE_ABS", "DROT_MOVE_REL", "DROT_MOVE_BY_SPEED", "DROT_MOVE_BY_NAME",
			"DROT_MOVE_BY_POSANG", "DROT_START_TRACK", "DROT_STOP_TRACK", "DROT_TRACK_OFFSET"),
		Required:    true,
		Description: "Drot action.",
	}).
	Param(parameter.Param{Name: "unit", Parser: parameter.String{Enum: []string{UnitUser, UnitEncoder}}, Description: "Motor position unit."}).
	Param(parameter.Param{Name: "posang", Parser: parameter.Float{}, Description: "Drot position angle."}).
	Param(parameter.Param{Name: "offset", Parser: parameter.Float{}, Description: "Drot tracking offset."}).
	Param(parameter.Param{Name: "mode", Parser: parameter.NewEnumName("", "SKY", "ELEV", "USER"), Description: "Drot mode."}).
	Action(setup.Action{
		Name:    "move_by_posang",
		Context: setup.Context{"action": "MOVE_BY_POSANG"},
		Args:    []setup.Arg{{Name: "posang"}},
		Setup:   true,
	}).
	Action(setup.Action{
		Name:    "start_track",
		Context: setup.Context{"action": "START_TRACK"},
		Args:    []setup.Arg{{Name: "posang"}, {Name: "mode"}},
		Setup:   true,
	}).
	Action(setup.Action{Name: "stop_track", Context: setup.Context{"action": "STOP_TRACK"}, Setup: true}).
	Action(setup.Action{
		Name:    "track_offset",
		Context: setup.Context{"action": "TRACK_OFFSET"},
		Args:    []setup.Arg{{Name: "offset"}},
		Setup:   true,
	}).
	MustBuild()

// ADC axes selected by the aux_motor argument of the name-only moves.
var adcAxes = map[string]string{
	"motor1": "ADC1",
	"motor2": "ADC2",
}

func selectAxis(d *setup.Device, args map[string]any) error {
	motor := stringArg(args, "aux_motor", "")
	axis, ok := adcAxes[motor]
	if !ok {
		return fmt.Errorf("auxiliary motor %q is unknown, use either motor1 or motor2", motor)
	}
	return d.SetParam("axis", axis)
}

// Adc is an atmospheric dispersion corrector made of two motors. Position
// moves address one axis.
var Adc = moveMethods(
	motionActions(
		motionParams(
			setup.NewDefinition("adc").
				Doc("Atmospheric dispersion corrector.").
				Param(parameter.Param{
					Name: "action",
					Parser: parameter.NewEnumName("ADC_",
						"ADC_MOVE_ABS", "ADC_MOVE_REL", "ADC_MOVE_BY_SPEED", "ADC_MOVE_BY_NAME",
						"ADC_MOVE_BY_POSANG", "ADC_START_TRACK", "ADC_STOP_TRACK"),
					Required:    true,
					Description: "Adc action.",
				}).
				Param(parameter.Param{Name: "posang", Parser: parameter.Float{}, Description: "Motor position angle."}).
				Param(parameter.Param{Name: "axis", Parser: parameter.NewEnumName("", "ADC1", "ADC2"), Description: "Adc axis."}).
				Param(parameter.Param{Name: "mode", Parser: parameter.NewEnumName("ADC_", "ADC_OFF", "ADC_AUTO"), Description: "Adc mode."}),
			parameter.String{Enum: []string{UnitUser, UnitEncoder}},
		),
		setup.Arg{Name: "axis"},
	),
	selectAxis,
	setup.Arg{Name: "aux_motor"},
).
	Action(setup.Action{
		Name:    "move_by_posang",
		Context: setup.Context{"action": "MOVE_BY_POSANG"},
		Args:    []setup.Arg{{Name: "posang"}},
		Setup:   true,
	}).
	Action(setup.Action{
		Name:    "start_track",
		Context: setup.Context{"action": "START_TRACK"},
		Args:    []setup.Arg{{Name: "posang"}},
		Setup:   true,
	}).
	Action(setup.Action{Name: "stop_track", Context: setup.Context{"action": "STOP_TRACK"}, Setup: true}).
	MustBuild()
