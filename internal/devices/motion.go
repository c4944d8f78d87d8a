package devices

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/fcs-core/internal/setup"
	"github.com/nerrad567/fcs-core/internal/setup/parameter"
)

// Motion units.
const (
	UnitUser    = "UU"
	UnitEncoder = "ENC"
)

// ErrIncompletePayload is returned for a move payload that names the move
// kind but not a usable unit/position pair.
var ErrIncompletePayload = errors.New("devices: incomplete payload")

func rejectIncomplete(*setup.Device, *setup.Action, map[string]any) error {
	return ErrIncompletePayload
}

// motionParams are the position parameters shared by motor-like devices.
func motionParams(b *setup.Builder, unit parameter.Parser) *setup.Builder {
	return b.
		Param(parameter.Param{Name: "pos", Parser: parameter.Float{}, Description: "Motor position in user units."}).
		Param(parameter.Param{Name: "enc", Parser: parameter.Int{}, Description: "Motor position in encoders."}).
		Param(parameter.Param{Name: "unit", Parser: unit, Description: "Motor position unit."}).
		Param(parameter.Param{Name: "name", Parser: parameter.String{}, Description: "Motor named position."}).
		Param(parameter.Param{Name: "speed", Parser: parameter.Float{}, Description: "Motor speed."})
}

// motionActions declares the payload actions of motor-like devices. extra
// arguments are required by every action and appended after the position.
func motionActions(b *setup.Builder, extra ...setup.Arg) *setup.Builder {
	with := func(args ...setup.Arg) []setup.Arg {
		return append(args, extra...)
	}
	for _, kind := range []string{"abs", "rel"} {
		action := "MOVE_" + strings.ToUpper(kind)
		b.Action(setup.Action{
			Name:    "move_" + kind + "_pos",
			Context: setup.Context{"action": action, "unit": UnitUser},
			Args:    with(setup.Arg{Name: "pos"}),
			Setup:   true,
		})
		b.Action(setup.Action{
			Name:    "move_" + kind + "_enc",
			Context: setup.Context{"action": action, "unit": UnitEncoder},
			Args:    with(setup.Arg{Name: "enc"}),
			Setup:   true,
		})
		// action alone, or with an unknown unit: never dispatchable
		b.Action(setup.Action{
			Name:          "_move_" + kind,
			Context:       setup.Context{"action": action},
			Args:          with(setup.Arg{Name: "unit"}),
			Variadic:      true,
			MinProperties: parameter.Ptr(3 + len(extra)),
			ParseOnly:     true,
			Validate:      rejectIncomplete,
		})
	}
	return b.
		Action(setup.Action{
			Name:    "move_by_speed",
			Context: setup.Context{"action": "MOVE_BY_SPEED"},
			Args:    with(setup.Arg{Name: "speed"}),
			Setup:   true,
		}).
		Action(setup.Action{
			Name:    "move_name_pos",
			Context: setup.Context{"action": "MOVE_BY_NAME"},
			Args:    with(setup.Arg{Name: "name"}),
			Setup:   true,
		})
}

// moveTo sets the action and the position matching unit. kind is "abs" or
// "rel", unit "uu" or "enc", both case insensitive.
func moveTo(d *setup.Device, kind, unit string, target any) error {
	var action string
	switch strings.ToLower(kind) {
	case "abs":
		action = "MOVE_ABS"
	case "rel":
		action = "MOVE_REL"
	default:
		return fmt.Errorf("movement type is unknown, expecting 'abs' or 'rel' got %q", kind)
	}

	var param string
	switch strings.ToUpper(unit) {
	case UnitUser:
		param = "pos"
	case UnitEncoder:
		param = "enc"
	default:
		return fmt.Errorf("unit is unknown, expecting 'uu' or 'enc' got %q", unit)
	}

	if err := d.SetParam("action", action); err != nil {
		return err
	}
	if err := d.SetParam("unit", strings.ToUpper(unit)); err != nil {
		return err
	}
	return d.SetParam(param, target)
}

func stringArg(args map[string]any, name, def string) string {
	if s, ok := args[name].(string); ok && s != "" {
		return s
	}
	return def
}

// moveMethods are the name-only setup methods of motor-like devices.
// After moveTo, after runs with the same arguments.
func moveMethods(b *setup.Builder, after func(d *setup.Device, args map[string]any) error, extra ...setup.Arg) *setup.Builder {
	run := func(d *setup.Device, kind string, args map[string]any) error {
		if err := moveTo(d, kind, stringArg(args, "unit", "uu"), args["pos_or_enc"]); err != nil {
			return err
		}
		if after != nil {
			return after(d, args)
		}
		return nil
	}
	with := func(args ...setup.Arg) []setup.Arg {
		return append(args, extra...)
	}

	return b.
		Action(setup.Action{
			Name:  "move_abs",
			Args:  with(setup.Arg{Name: "pos_or_enc"}, setup.Arg{Name: "unit", Optional: true}),
			Setup: true,
			Doc:   "Move in absolute; unit is UU (default) or ENC.",
			Validate: func(d *setup.Device, _ *setup.Action, args map[string]any) error {
				return run(d, "abs", args)
			},
		}).
		Action(setup.Action{
			Name:  "move_rel",
			Args:  with(setup.Arg{Name: "pos_or_enc"}, setup.Arg{Name: "unit", Optional: true}),
			Setup: true,
			Doc:   "Move in relative; unit is UU (default) or ENC.",
			Validate: func(d *setup.Device, _ *setup.Action, args map[string]any) error {
				return run(d, "rel", args)
			},
		}).
		Action(setup.Action{
			Name:  "move",
			Args:  with(setup.Arg{Name: "pos_or_enc"}, setup.Arg{Name: "type", Optional: true}, setup.Arg{Name: "unit", Optional: true}),
			Setup: true,
			Doc:   "Move to a target; type is abs (default) or rel, unit is uu (default) or enc.",
			Validate: func(d *setup.Device, _ *setup.Action, args map[string]any) error {
				return run(d, stringArg(args, "type", "abs"), args)
			},
		})
}
