package devices

import (
	"fmt"
	"maps"

	"github.com/nerrad567/fcs-core/internal/setup"
	"github.com/nerrad567/fcs-core/internal/setup/parameter"
)

// Signal kinds of an IO device channel.
const (
	SignalDigital = "DIGITAL"
	SignalAnalog  = "ANALOG"
	SignalInteger = "INTEGER"
)

// Channel parses one output channel definition:
//
//	{"signal": "DIGITAL", "name": "do1", "value": true}
//
// The value is converted according to the signal: bool, float64 or int.
type Channel struct{}

// ParseIn implements parameter.Parser. The input map is not modified.
func (Channel) ParseIn(v any) (any, error) {
	in, ok := v.(map[string]any)
	if !ok {
		return nil, &parameter.ValidationError{Value: v, Reason: fmt.Sprintf("expecting an object for channel definition, got %T", v)}
	}
	for _, key := range []string{"signal", "name", "value"} {
		if _, ok := in[key]; !ok {
			return nil, &parameter.ValidationError{Value: v, Reason: fmt.Sprintf("missing %q key in channel", key)}
		}
	}

	signal, _ := in["signal"].(string)
	value, err := channelValue(signal, in["value"])
	if err != nil {
		return nil, &parameter.ValidationError{Value: in["value"], Reason: err.Error()}
	}

	out := maps.Clone(in)
	out["value"] = value
	return out, nil
}

// ParseOut implements parameter.Parser.
func (Channel) ParseOut(v any) any {
	if m, ok := v.(map[string]any); ok {
		return maps.Clone(m)
	}
	return v
}

// Schema implements parameter.Parser.
func (Channel) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"signal": map[string]any{
				"type":        "string",
				"enum":        []string{SignalDigital, SignalAnalog, SignalInteger},
				"description": "Signal type.",
			},
			"value": map[string]any{"type": []string{"boolean", "integer", "number", "string"}},
		},
		"required":             []string{"signal", "name", "value"},
		"additionalProperties": false,
	}
}

func channelValue(signal string, v any) (any, error) {
	switch signal {
	case SignalDigital:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			return x == "True" || x == "true", nil
		case int:
			return x != 0, nil
		case float64:
			return x != 0, nil
		}
		return nil, fmt.Errorf("digital value must be a boolean, got %T", v)
	case SignalAnalog:
		return parameter.Float{}.ParseIn(v)
	case SignalInteger:
		return parameter.Int{}.ParseIn(v)
	default:
		return nil, fmt.Errorf("signal must be one of %s, %s or %s, got %v", SignalDigital, SignalAnalog, SignalInteger, v)
	}
}

// setOutput appends channels to the ones already set and selects SETOUT.
func setOutput(d *setup.Device, channels []any) error {
	if len(channels) > 0 {
		current, _ := d.Param("channels").([]any)
		list, err := parameter.NewListValue(Channel{}, current...)
		if err != nil {
			return err
		}
		joined, err := list.Concat(channels...)
		if err != nil {
			return err
		}
		if err := d.SetParam("channels", joined); err != nil {
			return err
		}
	}
	return d.SetParam("action", "SETOUT")
}

func channel(signal string) setup.ValidateFunc {
	return func(d *setup.Device, _ *setup.Action, args map[string]any) error {
		return setOutput(d, []any{map[string]any{"signal": signal, "name": args["name"], "value": args["value"]}})
	}
}

// IODev is a digital/analog/integer IO device. Every write adds a channel
// to the pending output list.
var IODev = setup.NewDefinition("iodev").
	Doc("IO device.").
	Param(parameter.Param{
		Name:        "action",
		Parser:      parameter.NewEnumName("", "SETOUT"),
		Required:    true,
		Description: "IODev action.",
	}).
	Param(parameter.Param{
		Name:        "channels",
		Parser:      parameter.List{Elem: Channel{}},
		Description: "Channels definitions.",
	}).
	Action(setup.Action{
		Name:    "set_output",
		Context: setup.Context{"action": "SETOUT"},
		Args:    []setup.Arg{{Name: "channels", Optional: true}},
		Validate: func(d *setup.Device, _ *setup.Action, args map[string]any) error {
			items, ok := args["channels"].([]any)
			if !ok && args["channels"] != nil {
				return &parameter.ValidationError{Param: "channels", Value: args["channels"], Reason: "expecting an array"}
			}
			return setOutput(d, items)
		},
	}).
	Action(setup.Action{Name: "write_digital", Args: []setup.Arg{{Name: "name"}, {Name: "value"}}, Setup: true, Validate: channel(SignalDigital)}).
	Action(setup.Action{Name: "write_analog", Args: []setup.Arg{{Name: "name"}, {Name: "value"}}, Setup: true, Validate: channel(SignalAnalog)}).
	Action(setup.Action{Name: "write_integer", Args: []setup.Arg{{Name: "name"}, {Name: "value"}}, Setup: true, Validate: channel(SignalInteger)}).
	MustBuild()
