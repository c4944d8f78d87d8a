package setup

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Logger defines the logging interface used by the setup package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry maps device type names to their definitions.
//
// A registry created with Child holds local definitions and falls back to
// its parent for every other type, so a caller can override or add types
// without touching the shared registry.
//
// All public methods are thread-safe.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]*Definition
	parent *Registry
	logger Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:   make(map[string]*Definition),
		logger: noopLogger{},
	}
}

// Child returns an empty registry falling back to r.
func (r *Registry) Child() *Registry {
	c := NewRegistry()
	c.parent = r
	c.logger = r.logger
	return c
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register adds definitions, replacing any with the same device type.
func (r *Registry) Register(defs ...*Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range defs {
		if _, ok := r.defs[def.devtype]; ok {
			r.logger.Debug("device type replaced", "devtype", def.devtype)
		}
		r.defs[def.devtype] = def
	}
}

// Lookup returns the definition of devtype. The name is case-insensitive.
// An unknown name returns an *UnknownDeviceTypeError.
func (r *Registry) Lookup(devtype string) (*Definition, error) {
	key := strings.ToLower(devtype)
	if def, ok := r.lookup(key); ok {
		return def, nil
	}
	return nil, &UnknownDeviceTypeError{DevType: devtype, Available: r.DevTypes(false)}
}

func (r *Registry) lookup(key string) (*Definition, bool) {
	r.mu.RLock()
	def, ok := r.defs[key]
	r.mu.RUnlock()
	if ok {
		return def, true
	}
	if r.parent != nil {
		return r.parent.lookup(key)
	}
	return nil, false
}

// New creates an empty setup of devtype for device id: an *Assembly for
// assembly types and a *Device otherwise.
func (r *Registry) New(id, devtype string) (Entity, error) {
	def, err := r.Lookup(devtype)
	if err != nil {
		return nil, err
	}
	if def.IsAssembly() {
		return NewAssembly(id, def, r), nil
	}
	return NewDevice(id, def), nil
}

// DevTypes returns every known device type in lexical order, optionally
// leaving out assemblies.
func (r *Registry) DevTypes(excludeAssemblies bool) []string {
	all := r.all()
	out := make([]string, 0, len(all))
	for devtype, def := range all {
		if excludeAssemblies && def.IsAssembly() {
			continue
		}
		out = append(out, devtype)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) all() map[string]*Definition {
	var out map[string]*Definition
	if r.parent != nil {
		out = r.parent.all()
	} else {
		out = make(map[string]*Definition)
	}
	r.mu.RLock()
	maps.Copy(out, r.defs)
	r.mu.RUnlock()
	return out
}

// Schema returns the setup payload schema accepting the given device types,
// or every registered type when none is given.
func (r *Registry) Schema(devtypes ...string) (map[string]any, error) {
	if len(devtypes) == 0 {
		devtypes = r.DevTypes(false)
	}
	defs := make(map[string]*Definition, len(devtypes))
	for _, devtype := range devtypes {
		def, err := r.Lookup(devtype)
		if err != nil {
			return nil, fmt.Errorf("building schema: %w", err)
		}
		defs[def.devtype] = def
	}
	return envelope(defs), nil
}
