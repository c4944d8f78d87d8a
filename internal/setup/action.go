package setup

import "maps"

// Arg is one named argument of an action.
type Arg struct {
	Name     string
	Optional bool
}

// ValidateFunc applies args to d. args never contains the context keys.
type ValidateFunc func(d *Device, a *Action, args map[string]any) error

// SerializeFunc builds the parameter payload of d while a is active.
type SerializeFunc func(d *Device, a *Action) map[string]any

// Action is a setup method of a device type.
//
// An action with a Context takes part in payload resolution: a payload
// matching the context is validated by Validate, and a device whose state
// matches it is serialized by Serialize. An action flagged Setup is also
// reachable by name through Device.Call.
type Action struct {
	Name     string
	Context  Context
	Args     []Arg
	Variadic bool
	Setup    bool
	Doc      string

	// ParseOnly actions resolve payloads but never serialize state.
	ParseOnly bool

	// MinProperties and MaxProperties override the payload size bounds
	// derived from Args and Context.
	MinProperties *int
	MaxProperties *int

	// Validate defaults to assigning args and then the context values.
	Validate ValidateFunc

	// Serialize defaults to DumpArgs.
	Serialize SerializeFunc
}

// Required returns the names of the non-optional arguments.
func (a *Action) Required() []string {
	var out []string
	for _, arg := range a.Args {
		if !arg.Optional {
			out = append(out, arg.Name)
		}
	}
	return out
}

// hasArg reports whether name is a declared argument.
func (a *Action) hasArg(name string) bool {
	for _, arg := range a.Args {
		if arg.Name == name {
			return true
		}
	}
	return false
}

// minProperties is the smallest payload accepted once the context matched.
// It is only defined for actions with required arguments.
func (a *Action) minProperties() (int, bool) {
	if a.MinProperties != nil {
		return *a.MinProperties, true
	}
	required := len(a.Required())
	if required == 0 {
		return 0, false
	}
	return required + len(a.Context), true
}

// maxProperties is the largest payload accepted; variadic actions are unbounded.
func (a *Action) maxProperties() (int, bool) {
	if a.MaxProperties != nil {
		return *a.MaxProperties, true
	}
	if a.Variadic {
		return 0, false
	}
	return len(a.Args) + len(a.Context), true
}

func (a *Action) validate(d *Device, args map[string]any) error {
	if a.Validate != nil {
		return a.Validate(d, a, args)
	}
	return AssignArgs(d, a, args)
}

func (a *Action) serialize(d *Device) map[string]any {
	if a.Serialize != nil {
		return a.Serialize(d, a)
	}
	return DumpArgs(d, a)
}

// AssignArgs sets every argument in args then every context value on d.
// It is the default ValidateFunc.
func AssignArgs(d *Device, a *Action, args map[string]any) error {
	for _, arg := range a.Args {
		v, ok := args[arg.Name]
		if !ok {
			continue
		}
		if err := d.SetParam(arg.Name, v); err != nil {
			return err
		}
	}
	for _, k := range a.Context.Keys() {
		if err := d.SetParam(k, a.Context[k]); err != nil {
			return err
		}
	}
	return nil
}

// DumpArgs returns the context values plus the wire value of every set
// argument. It is the default SerializeFunc.
func DumpArgs(d *Device, a *Action) map[string]any {
	out := make(map[string]any, len(a.Context)+len(a.Args))
	maps.Copy(out, a.Context)
	for _, arg := range a.Args {
		if v, ok := d.LookupParam(arg.Name); ok {
			out[arg.Name] = v
		}
	}
	return out
}
