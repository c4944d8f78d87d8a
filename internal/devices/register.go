package devices

import "github.com/nerrad567/fcs-core/internal/setup"

// All returns every shipped device type, assemblies last.
func All() []*setup.Definition {
	return []*setup.Definition{Lamp, Shutter, Actuator, Motor, Drot, Adc, Piezo, IODev, Source}
}

// Register adds every shipped device type to r.
func Register(r *setup.Registry) {
	r.Register(All()...)
}

// NewRegistry returns a registry holding every shipped device type.
func NewRegistry() *setup.Registry {
	r := setup.NewRegistry()
	Register(r)
	return r
}
