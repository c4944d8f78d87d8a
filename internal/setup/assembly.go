package setup

import (
	"context"
	"fmt"

	"github.com/nerrad567/fcs-core/internal/client"
)

// Assembly is a composite device. Its own parameters form the externally
// visible contract; its apply function turns them into setups of the child
// devices declared as slots.
//
// Children are created on first use and cached for the life of the
// assembly.
type Assembly struct {
	*Device

	registry *Registry
	children map[string]Entity
}

// NewAssembly returns an empty assembly setup. Children are resolved
// through registry.
func NewAssembly(id string, def *Definition, registry *Registry) *Assembly {
	return &Assembly{
		Device:   NewDevice(id, def),
		registry: registry,
		children: make(map[string]Entity),
	}
}

// Child returns the device bound to slot name.
func (a *Assembly) Child(name string) (Entity, error) {
	if child, ok := a.children[name]; ok {
		return child, nil
	}
	slot, ok := a.def.Slot(name)
	if !ok {
		return nil, fmt.Errorf("%w: assembly %s has no slot %q", ErrDispatch, a.def.devtype, name)
	}
	child, err := a.registry.New(slot.Name, slot.DevType)
	if err != nil {
		return nil, fmt.Errorf("assembly %s slot %q: %w", a.def.devtype, name, err)
	}
	a.children[name] = child
	return child, nil
}

// MustChild is like Child but panics when the slot is not declared. It is
// meant for apply functions, whose slots are fixed by the definition.
func (a *Assembly) MustChild(name string) Entity {
	child, err := a.Child(name)
	if err != nil {
		panic(err)
	}
	return child
}

// DevNames returns the device names of every slot.
func (a *Assembly) DevNames() []string {
	names := make([]string, 0, len(a.def.slots))
	for _, s := range a.def.slots {
		names = append(names, s.Name)
	}
	return names
}

// Setup runs the fan-out into a fresh buffer and returns it. Nothing is
// cached: every call re-applies the current assembly state.
func (a *Assembly) Setup() (*Buffer, error) {
	b := NewBuffer(a.registry, nil)
	if err := a.def.apply(a, b); err != nil {
		return nil, &DispatchError{DeviceID: a.id, DevType: a.def.devtype, Err: err}
	}
	return b, nil
}

// Buffer returns the child elements produced by the fan-out.
func (a *Assembly) Buffer() ([]Element, error) {
	b, err := a.Setup()
	if err != nil {
		return nil, err
	}
	return b.Buffer()
}

// LoadElement is not supported: an assembly cannot be rebuilt from a
// wire element.
func (a *Assembly) LoadElement(Element) error {
	return fmt.Errorf("%w: assembly %s cannot load an element", ErrUnsupported, a.def.devtype)
}

// Dispatch sends the fan-out buffer through caller and clears the
// assembly on success.
func (a *Assembly) Dispatch(ctx context.Context, caller client.Caller) (string, error) {
	return NewSetupCommand(caller, a, false, clearOnSuccess(a, nil)).Exec(ctx)
}
