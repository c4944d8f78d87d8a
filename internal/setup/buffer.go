package setup

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/nerrad567/fcs-core/internal/client"
	"github.com/nerrad567/fcs-core/internal/payload"
)

// ErrNoCaller is returned when a buffer without caller is dispatched or
// needs the server device map.
var ErrNoCaller = errors.New("setup: buffer has no caller")

// DevTypeSource provides the device name to device type map of a server.
// client.DevInfoSource and devcache.Cache implement it.
type DevTypeSource interface {
	DevTypes(ctx context.Context) (map[string]string, error)
}

// Buffer aggregates the setups of many devices into one payload and sends
// it to the server in a single App/Setup call.
//
// Entities are kept in insertion order. Adding without override appends,
// so two entities may share an id until an override pass replaces the
// first one.
//
// A Buffer is not safe for concurrent use; dispatch clears it on success.
type Buffer struct {
	registry *Registry
	caller   client.Caller
	source   DevTypeSource
	logger   Logger
	recorder Recorder

	accepted []string
	builtin  map[string]string

	entities []Entity

	devtypesMu sync.Mutex
	devtypes   map[string]string

	schemaOnce sync.Once
	schema     map[string]any
	receiver   *payload.Receiver
	schemaErr  error
}

// BufferOption configures a Buffer.
type BufferOption func(*Buffer)

// WithDevTypes restricts the device types accepted by SetPayload and
// described by Schema. By default every registered type is accepted.
func WithDevTypes(devtypes ...string) BufferOption {
	return func(b *Buffer) {
		b.accepted = append(b.accepted, devtypes...)
	}
}

// WithSlot declares a device known to the buffer without asking the
// server, such as an assembly.
func WithSlot(devname, devtype string) BufferOption {
	return func(b *Buffer) {
		b.builtin[devname] = devtype
	}
}

// WithDevTypeSource sets where the server device map is read from. It
// defaults to the App/DevInfo command of the caller.
func WithDevTypeSource(src DevTypeSource) BufferOption {
	return func(b *Buffer) {
		b.source = src
	}
}

// WithLogger sets the buffer logger.
func WithLogger(logger Logger) BufferOption {
	return func(b *Buffer) {
		b.logger = logger
	}
}

// WithRecorder sets the observer of every dispatch.
func WithRecorder(r Recorder) BufferOption {
	return func(b *Buffer) {
		b.recorder = r
	}
}

// NewBuffer creates an empty buffer creating entities from registry and
// dispatching through caller. caller may be nil for a buffer that is only
// aggregated, never sent.
func NewBuffer(registry *Registry, caller client.Caller, opts ...BufferOption) *Buffer {
	b := &Buffer{
		registry: registry,
		caller:   caller,
		logger:   noopLogger{},
		builtin:  make(map[string]string),
	}
	if caller != nil {
		b.source = client.DevInfoSource{Caller: caller}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// DevTypes returns the device map of the server merged with the buffer
// slots. The server is asked once; the answer is cached for the life of the
// buffer.
func (b *Buffer) DevTypes(ctx context.Context) (map[string]string, error) {
	b.devtypesMu.Lock()
	defer b.devtypesMu.Unlock()

	if b.devtypes != nil {
		return maps.Clone(b.devtypes), nil
	}

	devtypes := make(map[string]string)
	if b.source != nil {
		remote, err := b.source.DevTypes(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading server device map: %w", err)
		}
		maps.Copy(devtypes, remote)
	} else if len(b.builtin) == 0 {
		return nil, ErrNoCaller
	}
	maps.Copy(devtypes, b.builtin)

	b.devtypes = devtypes
	return maps.Clone(devtypes), nil
}

// DevType returns the device type of devname.
func (b *Buffer) DevType(ctx context.Context, devname string) (string, error) {
	devtypes, err := b.DevTypes(ctx)
	if err != nil {
		return "", err
	}
	devtype, ok := devtypes[devname]
	if !ok {
		return "", fmt.Errorf("%w: device name <%s>", ErrNotManaged, devname)
	}
	return devtype, nil
}

// New creates a setup for devname without adding it to the buffer. An
// empty devtype is resolved through DevType.
func (b *Buffer) New(ctx context.Context, devname, devtype string) (Entity, error) {
	if devtype == "" {
		var err error
		if devtype, err = b.DevType(ctx, devname); err != nil {
			return nil, err
		}
	}
	e, err := b.registry.New(devname, devtype)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("device setup created", "device_id", devname, "devtype", e.DevType())
	return e, nil
}

// AddNew creates a setup for devname, adds it and returns it.
func (b *Buffer) AddNew(ctx context.Context, devname, devtype string, override bool) (Entity, error) {
	e, err := b.New(ctx, devname, devtype)
	if err != nil {
		return nil, err
	}
	b.Add(override, e)
	return e, nil
}

// Add appends entities. With override, an entity replaces the first one
// sharing its id instead.
func (b *Buffer) Add(override bool, entities ...Entity) {
	for _, e := range entities {
		if override {
			if i := b.index(e.ID()); i >= 0 {
				b.entities[i] = e
				continue
			}
		}
		b.entities = append(b.entities, e)
	}
}

// Get returns the first setup of devname, creating and adding one if the
// buffer holds none.
func (b *Buffer) Get(ctx context.Context, devname, devtype string) (Entity, error) {
	if i := b.index(devname); i >= 0 {
		return b.entities[i], nil
	}
	return b.AddNew(ctx, devname, devtype, false)
}

// Device returns the first setup of devname already in the buffer.
func (b *Buffer) Device(devname string) (Entity, bool) {
	if i := b.index(devname); i >= 0 {
		return b.entities[i], true
	}
	return nil, false
}

func (b *Buffer) index(devname string) int {
	return slices.IndexFunc(b.entities, func(e Entity) bool { return e.ID() == devname })
}

// Entities returns the buffered setups in order.
func (b *Buffer) Entities() []Entity {
	return slices.Clone(b.entities)
}

// Len returns the number of buffered setups.
func (b *Buffer) Len() int {
	return len(b.entities)
}

// Clear removes every setup.
func (b *Buffer) Clear() {
	b.entities = nil
}

// Call runs capability on the buffered setup of devname, creating it when
// needed. See Device.Call.
func (b *Buffer) Call(ctx context.Context, devname, capability string, args map[string]any) (Entity, error) {
	e, err := b.Get(ctx, devname, "")
	if err != nil {
		return nil, err
	}
	if err := e.Call(capability, args); err != nil {
		return nil, err
	}
	return e, nil
}

// Schema returns the setup payload schema of the accepted device types.
func (b *Buffer) Schema() (map[string]any, error) {
	b.compileSchema()
	return b.schema, b.schemaErr
}

func (b *Buffer) compileSchema() {
	b.schemaOnce.Do(func() {
		schema, err := b.registry.Schema(b.accepted...)
		if err != nil {
			b.schemaErr = err
			return
		}
		receiver, err := payload.NewReceiver(schema)
		if err != nil {
			b.schemaErr = fmt.Errorf("compiling setup schema: %w", err)
			return
		}
		receiver.SetLogger(b.logger)
		b.schema, b.receiver = schema, receiver
	})
}

// Receiver returns the payload receiver validating against Schema.
func (b *Buffer) Receiver() (*payload.Receiver, error) {
	b.compileSchema()
	return b.receiver, b.schemaErr
}

// SetPayload validates a whole setup payload against Schema and applies
// it. Nothing is added unless every element applies cleanly; the failing
// element is reported as an *ElementError.
func (b *Buffer) SetPayload(v any, override bool) error {
	receiver, err := b.Receiver()
	if err != nil {
		return err
	}
	elements, err := receiver.Parse(v)
	if err != nil {
		return err
	}
	return b.setElements(elements, override)
}

// SetElements applies elements already validated by a payload.Receiver,
// with the same all-or-nothing rule as SetPayload.
func (b *Buffer) SetElements(elements []Element, override bool) error {
	return b.setElements(elements, override)
}

func (b *Buffer) setElements(elements []Element, override bool) error {
	pending := make([]Entity, 0, len(elements))
	for i, el := range elements {
		for _, devtype := range el.DevTypes() {
			params := el.Param[devtype]
			e, err := b.registry.New(el.ID, devtype)
			if err == nil {
				err = e.Set(params)
			}
			if err != nil {
				b.logger.Error("setting payload parameters failed",
					"device_id", el.ID, "devtype", devtype, "error", err)
				return &ElementError{Index: i, DeviceID: el.ID, DevType: devtype, Err: err}
			}
			pending = append(pending, e)
		}
	}
	b.Add(override, pending...)
	return nil
}

// LoadBuffer rebuilds setups from wire elements without schema validation.
// Assemblies cannot be rebuilt: their elements carry child devices.
func (b *Buffer) LoadBuffer(elements []Element, override bool) error {
	pending := make([]Entity, 0, len(elements))
	for i, el := range elements {
		for _, devtype := range el.DevTypes() {
			def, err := b.registry.Lookup(devtype)
			if err != nil {
				return &ElementError{Index: i, DeviceID: el.ID, DevType: devtype, Err: err}
			}
			if def.IsAssembly() {
				err := fmt.Errorf("%w: assembly %s cannot be rebuilt from a wire element", ErrUnsupported, devtype)
				return &ElementError{Index: i, DeviceID: el.ID, DevType: devtype, Err: err}
			}
			dev := NewDevice(el.ID, def)
			if err := dev.LoadElement(el); err != nil {
				return &ElementError{Index: i, DeviceID: el.ID, DevType: devtype, Err: err}
			}
			pending = append(pending, dev)
		}
	}
	b.Add(override, pending...)
	return nil
}

// Payload concatenates the payloads of every setup. Incomplete setups are
// skipped unless force is set.
func (b *Buffer) Payload(force bool) []Element {
	out := make([]Element, 0, len(b.entities))
	for _, e := range b.entities {
		out = append(out, e.Payload(force)...)
	}
	return out
}

// Buffer returns the elements sent by Dispatch: the payload of every valid
// device setup and the fan-out of every assembly.
func (b *Buffer) Buffer() ([]Element, error) {
	out := make([]Element, 0, len(b.entities))
	for _, e := range b.entities {
		elements, err := e.Buffer()
		if err != nil {
			return nil, err
		}
		out = append(out, elements...)
	}
	return out, nil
}

// Dispatch sends the buffer with App/Setup and returns the server message.
// The buffer is cleared on success unless keep is set; it is never cleared
// after a failure or cancellation.
func (b *Buffer) Dispatch(ctx context.Context, keep bool) (string, error) {
	return b.SetupCommand(false, b.dispatchCallback(keep)).Exec(ctx)
}

// DispatchAsync is Dispatch running in its own goroutine. The channel
// receives one result and is closed.
func (b *Buffer) DispatchAsync(ctx context.Context, keep bool) <-chan client.Result {
	return b.SetupCommand(false, b.dispatchCallback(keep)).ExecAsync(ctx)
}

func (b *Buffer) dispatchCallback(keep bool) client.Callback {
	if keep {
		return nil
	}
	return clearOnSuccess(b, b.logger)
}

// SetupCommand returns a command sending this buffer. A frozen command
// sends the buffer as it is now; otherwise the buffer is read when the
// command runs.
func (b *Buffer) SetupCommand(froze bool, cb client.Callback) *SetupCommand {
	cmd := NewSetupCommand(b.caller, b, froze, cb)
	cmd.logger = b.logger
	cmd.recorder = b.recorder
	return cmd
}
