package setup

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nerrad567/fcs-core/internal/client"
	"github.com/nerrad567/fcs-core/internal/payload"
	"github.com/nerrad567/fcs-core/internal/setup/parameter"
)

// Element is one {id, param} entry of the wire payload.
type Element = payload.Element

var errUnknownParam = errors.New("unknown parameter")

// ActionParam is the conventional parameter selecting a device operating mode.
const ActionParam = "action"

// Entity is a device setup held by a Buffer: either a plain Device or an
// Assembly.
type Entity interface {
	BufferSource

	ID() string
	DevType() string
	Definition() *Definition
	Set(payload map[string]any) error
	Call(capability string, args map[string]any) error
	IsSetupValid() bool
	ParameterPayload() map[string]any
	ElementPayload() Element
	Payload(force bool) []Element
	Clear()
}

// Device is the setup of one device: its identity and the buffer of the
// parameters set so far.
//
// A Device is not safe for concurrent use.
type Device struct {
	id     string
	def    *Definition
	values *parameter.Values
}

// NewDevice returns an empty setup for device id of the type described by def.
func NewDevice(id string, def *Definition) *Device {
	return &Device{id: id, def: def, values: parameter.NewValues()}
}

// ID returns the wire device identifier.
func (d *Device) ID() string { return d.id }

// DevType returns the lowercase device type.
func (d *Device) DevType() string { return d.def.devtype }

// Definition returns the device type definition.
func (d *Device) Definition() *Definition { return d.def }

// Schema returns the parameter payload schema of the device type.
func (d *Device) Schema() map[string]any { return d.def.Schema() }

// SetParam converts v and stores it under name. A nil v unsets the parameter.
func (d *Device) SetParam(name string, v any) error {
	p, ok := d.def.Param(name)
	if !ok {
		return &DispatchError{DeviceID: d.id, DevType: d.def.devtype, Key: name, Err: errUnknownParam}
	}
	return p.Assign(d.values, v)
}

// Param returns the wire value of name, or nil when it is unset.
func (d *Device) Param(name string) any {
	v, _ := d.LookupParam(name)
	return v
}

// LookupParam returns the wire value of name and whether it is set.
func (d *Device) LookupParam(name string) (any, bool) {
	p, ok := d.def.Param(name)
	if !ok {
		return nil, false
	}
	return p.Lookup(d.values)
}

// IsParamSet reports whether name has been set.
func (d *Device) IsParamSet(name string) bool {
	return d.values.IsSet(name)
}

// IsActionSet reports whether the action parameter has been set.
func (d *Device) IsActionSet() bool {
	return d.IsParamSet(ActionParam)
}

// IsSetupValid reports whether the setup is complete enough to be sent.
func (d *Device) IsSetupValid() bool {
	return d.IsActionSet()
}

// Set applies a parameter payload.
//
// When the payload matches an action context, the context keys are removed
// and the remaining keys are handed to that action; unknown keys and missing
// required arguments are rejected. Otherwise every key is assigned directly.
// On any error the device is left exactly as it was.
func (d *Device) Set(payload map[string]any) error {
	snapshot := d.values.Clone()
	if err := d.set(payload); err != nil {
		d.values.Replace(snapshot)
		return err
	}
	return nil
}

func (d *Device) set(payload map[string]any) error {
	action, keys := d.def.FindParser(payload)
	if action == nil {
		for _, k := range slices.Sorted(maps.Keys(payload)) {
			if err := d.SetParam(k, payload[k]); err != nil {
				return d.dispatchError(k, err)
			}
		}
		return nil
	}

	args := maps.Clone(payload)
	for _, k := range keys {
		delete(args, k)
	}
	if !action.Variadic {
		for _, k := range slices.Sorted(maps.Keys(args)) {
			if !action.hasArg(k) {
				return &DispatchError{DeviceID: d.id, DevType: d.def.devtype, Key: k,
					Err: fmt.Errorf("unexpected for action %s", action.Name)}
			}
		}
	}
	for _, name := range action.Required() {
		if _, ok := args[name]; !ok {
			return &DispatchError{DeviceID: d.id, DevType: d.def.devtype, Key: name,
				Err: fmt.Errorf("required by action %s", action.Name)}
		}
	}
	if err := action.validate(d, args); err != nil {
		return d.dispatchError("", err)
	}
	return nil
}

// Call runs the setup method capability with named arguments. Arguments
// the method does not declare are ignored; a missing required one is an
// error. On any error the device is left exactly as it was.
func (d *Device) Call(capability string, args map[string]any) error {
	action, ok := d.def.Action(capability)
	if !ok || !action.Setup {
		return fmt.Errorf("%w: %s has no setup method %q", ErrUnknownCapability, d.def.devtype, capability)
	}

	picked := make(map[string]any, len(action.Args))
	for _, arg := range action.Args {
		v, ok := args[arg.Name]
		if !ok || v == nil {
			if !arg.Optional {
				return &MissingArgumentError{Capability: d.def.devtype + "." + capability, Arg: arg.Name}
			}
			continue
		}
		picked[arg.Name] = v
	}

	snapshot := d.values.Clone()
	if err := action.validate(d, picked); err != nil {
		d.values.Replace(snapshot)
		return d.dispatchError("", err)
	}
	return nil
}

// dispatchError attributes err to this device unless it already is.
func (d *Device) dispatchError(key string, err error) error {
	if de, ok := err.(*DispatchError); ok { //nolint:errorlint // Only direct errors carry this device
		if de.Key == "" {
			de.Key = key
		}
		return de
	}
	return &DispatchError{DeviceID: d.id, DevType: d.def.devtype, Key: key, Err: err}
}

// ParameterPayload returns the parameter payload of the current state: the
// payload of the action whose context matches, or every set parameter.
func (d *Device) ParameterPayload() map[string]any {
	if action := d.def.findMaker(d); action != nil {
		return action.serialize(d)
	}
	out := make(map[string]any, d.values.Len())
	for _, name := range d.values.Names() {
		if v, ok := d.LookupParam(name); ok {
			out[name] = v
		}
	}
	return out
}

// ElementPayload wraps the parameter payload into a wire element.
func (d *Device) ElementPayload() Element {
	return Element{
		ID:    d.id,
		Param: map[string]map[string]any{d.def.devtype: d.ParameterPayload()},
	}
}

// Payload returns the device element, or nothing when the setup is not
// valid and force is false.
func (d *Device) Payload(force bool) []Element {
	if force || d.IsSetupValid() {
		return []Element{d.ElementPayload()}
	}
	return []Element{}
}

// Buffer returns the elements to send for this device.
func (d *Device) Buffer() ([]Element, error) {
	return d.Payload(false), nil
}

// Load copies the identity and parameter buffer of other into d.
func (d *Device) Load(other *Device) {
	d.id = other.id
	d.values.Update(other.values)
}

// LoadElement updates d from a wire element. Only the parameter block of
// d's own device type is considered.
func (d *Device) LoadElement(el Element) error {
	params, ok := el.Param[d.def.devtype]
	if !ok {
		return &DispatchError{DeviceID: el.ID, DevType: d.def.devtype,
			Err: fmt.Errorf("element has no %s parameters", d.def.devtype)}
	}

	snapshot := d.values.Clone()
	for _, k := range slices.Sorted(maps.Keys(params)) {
		if err := d.SetParam(k, params[k]); err != nil {
			d.values.Replace(snapshot)
			return d.dispatchError(k, err)
		}
	}
	d.id = el.ID
	return nil
}

// Clear unsets every parameter.
func (d *Device) Clear() {
	d.values.Clear()
}

// Dispatch sends the device buffer through caller and clears it on success.
func (d *Device) Dispatch(ctx context.Context, caller client.Caller) (string, error) {
	return NewSetupCommand(caller, d, false, clearOnSuccess(d, nil)).Exec(ctx)
}

func (d *Device) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%s", d.def.devtype, d.id)
	for _, name := range d.values.Names() {
		fmt.Fprintf(&b, " %s=%v", name, d.Param(name))
	}
	b.WriteString(")")
	return b.String()
}
