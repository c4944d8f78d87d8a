package setup

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/nerrad567/fcs-core/internal/setup/parameter"
)

// Slot is a named child device of an assembly.
type Slot struct {
	Name    string
	DevType string
}

// ApplyFunc fans the state of an assembly out to its children. It must add
// every configured child to b.
type ApplyFunc func(a *Assembly, b *Buffer) error

// Definition is the immutable description of one device type: its
// parameters, its actions and the two context tables resolving payloads to
// actions (parsers) and device state to payloads (makers).
//
// Definitions are built once with a Builder and shared by every device of
// the type. All methods are safe for concurrent use.
type Definition struct {
	devtype string
	doc     string
	parent  *Definition

	params  []parameter.Param
	actions []*Action
	slots   []Slot
	apply   ApplyFunc

	parsers *contextTable
	makers  *contextTable

	schemaOnce sync.Once
	schema     map[string]any
}

// DevType returns the lowercase device type name.
func (d *Definition) DevType() string { return d.devtype }

// Doc returns the device type description.
func (d *Definition) Doc() string { return d.doc }

// Parent returns the definition d was extended from, or nil.
func (d *Definition) Parent() *Definition { return d.parent }

// Params returns the parameters in declaration order, inherited ones first.
func (d *Definition) Params() []parameter.Param {
	return slices.Clone(d.params)
}

// Param returns the parameter declared under name.
func (d *Definition) Param(name string) (parameter.Param, bool) {
	for _, p := range d.params {
		if p.Name == name {
			return p, true
		}
	}
	return parameter.Param{}, false
}

// Actions returns every action in declaration order.
func (d *Definition) Actions() []*Action {
	return slices.Clone(d.actions)
}

// Action returns the action declared under name.
func (d *Definition) Action(name string) (*Action, bool) {
	for _, a := range d.actions {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// SetupActions returns the actions reachable through Device.Call.
func (d *Definition) SetupActions() []*Action {
	var out []*Action
	for _, a := range d.actions {
		if a.Setup {
			out = append(out, a)
		}
	}
	return out
}

// Slots returns the child slots of an assembly.
func (d *Definition) Slots() []Slot {
	return slices.Clone(d.slots)
}

// Slot returns the child slot declared under name.
func (d *Definition) Slot(name string) (Slot, bool) {
	for _, s := range d.slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// IsAssembly reports whether d fans out to child devices.
func (d *Definition) IsAssembly() bool {
	return d.apply != nil
}

// FindParser resolves a parameter payload to the action governing it using
// longest context match. It also returns the matched context keys. A nil
// action means the payload is a plain parameter assignment.
func (d *Definition) FindParser(payload map[string]any) (*Action, []string) {
	return d.parsers.find(func(key string) (any, bool) {
		v, ok := payload[key]
		return v, ok
	})
}

// findMaker resolves the current state of dev to the action serializing it.
func (d *Definition) findMaker(dev *Device) *Action {
	a, _ := d.makers.find(dev.LookupParam)
	return a
}

// Builder assembles a Definition.
//
//	def := setup.NewDefinition("lamp").
//	    Param(parameter.Param{Name: "action", Parser: actions, Required: true}).
//	    Param(parameter.Param{Name: "intensity", Parser: parameter.Float{}}).
//	    Action(setup.Action{Name: "switch_off", Context: setup.Context{"action": "OFF"}, Setup: true}).
//	    MustBuild()
type Builder struct {
	def *Definition
}

// NewDefinition starts a definition for devtype.
func NewDefinition(devtype string) *Builder {
	return &Builder{def: &Definition{devtype: strings.ToLower(devtype)}}
}

// Extend starts a definition for devtype inheriting every parameter, action,
// slot and the apply function of parent. Later declarations with the same
// name replace inherited ones.
func Extend(parent *Definition, devtype string) *Builder {
	b := NewDefinition(devtype)
	b.def.parent = parent
	b.def.doc = parent.doc
	b.def.params = slices.Clone(parent.params)
	b.def.actions = slices.Clone(parent.actions)
	b.def.slots = slices.Clone(parent.slots)
	b.def.apply = parent.apply
	return b
}

// Doc sets the device type description.
func (b *Builder) Doc(doc string) *Builder {
	b.def.doc = doc
	return b
}

// Param declares a parameter.
func (b *Builder) Param(p parameter.Param) *Builder {
	for i := range b.def.params {
		if b.def.params[i].Name == p.Name {
			b.def.params[i] = p
			return b
		}
	}
	b.def.params = append(b.def.params, p)
	return b
}

// Action declares an action. The action is copied.
func (b *Builder) Action(a Action) *Builder {
	a.Context = maps.Clone(a.Context)
	a.Args = slices.Clone(a.Args)
	for i := range b.def.actions {
		if b.def.actions[i].Name == a.Name {
			b.def.actions[i] = &a
			return b
		}
	}
	b.def.actions = append(b.def.actions, &a)
	return b
}

// Slot declares a child device slot of an assembly.
func (b *Builder) Slot(name, devtype string) *Builder {
	s := Slot{Name: name, DevType: strings.ToLower(devtype)}
	for i := range b.def.slots {
		if b.def.slots[i].Name == name {
			b.def.slots[i] = s
			return b
		}
	}
	b.def.slots = append(b.def.slots, s)
	return b
}

// Apply sets the fan-out function, making the definition an assembly.
func (b *Builder) Apply(fn ApplyFunc) *Builder {
	b.def.apply = fn
	return b
}

// Build checks the declarations and returns the definition.
// Every problem found is reported, joined in one error. The builder must
// not be used afterwards.
func (b *Builder) Build() (*Definition, error) {
	def := b.def
	var errs []error

	if def.devtype == "" {
		errs = append(errs, fmt.Errorf("%w: empty device type", ErrInvalidDefinition))
	}

	seen := make(map[string]bool, len(def.params))
	for _, p := range def.params {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%w: %s: parameter without name", ErrInvalidDefinition, def.devtype))
		}
		seen[p.Name] = true
	}

	for _, a := range def.actions {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("%w: %s: action without name", ErrInvalidDefinition, def.devtype))
		}
		for _, arg := range a.Args {
			if !seen[arg.Name] && a.Validate == nil {
				errs = append(errs, fmt.Errorf("%w: %s.%s: argument %q is not a parameter",
					ErrInvalidDefinition, def.devtype, a.Name, arg.Name))
			}
		}
		for _, k := range a.Context.Keys() {
			p, ok := def.Param(k)
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s.%s: context key %q is not a parameter",
					ErrInvalidDefinition, def.devtype, a.Name, k))
				continue
			}
			if _, err := p.ParseIn(a.Context[k]); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s.%s: context: %w",
					ErrInvalidDefinition, def.devtype, a.Name, err))
			}
		}
	}

	if len(def.slots) > 0 && def.apply == nil {
		errs = append(errs, fmt.Errorf("%w: %s: slots declared without an apply function",
			ErrInvalidDefinition, def.devtype))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	def.parsers = &contextTable{}
	def.makers = &contextTable{}
	for _, a := range def.actions {
		def.parsers.add(a)
		if !a.ParseOnly {
			def.makers.add(a)
		}
	}
	return def, nil
}

// MustBuild is like Build but panics on error. It is meant for package
// level declarations.
func (b *Builder) MustBuild() *Definition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
