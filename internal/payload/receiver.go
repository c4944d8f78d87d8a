// Package payload receives setup payloads from outside the process.
//
// A setup payload is a list of elements in the canonical wire format
//
//	[{"id": "lamp1", "param": {"lamp": {"action": "ON", "intensity": 40, "time": 10}}}]
//
// The Receiver decodes payloads from JSON text, JSON files, compact
// "id:key=value" strings or a devtype-major mapping, and validates them
// against a JSON-Schema (draft-07) before any of it is used.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "fcs://setup.schema.json"

var (
	// ErrSchema is wrapped by every schema validation failure.
	ErrSchema = errors.New("payload: schema validation failed")

	// ErrFormat is returned when a payload cannot be decoded.
	ErrFormat = errors.New("payload: wrong format")

	// ErrNotManaged is returned by LoadSPF for a device missing from the device map.
	ErrNotManaged = errors.New("payload: device is not managed")
)

// SchemaError carries the validator diagnostics for a rejected payload.
type SchemaError struct {
	Detail string
}

func (e *SchemaError) Error() string {
	return "payload: schema validation failed: " + e.Detail
}

// Unwrap allows errors.Is(err, ErrSchema).
func (e *SchemaError) Unwrap() error { return ErrSchema }

// Element is one device entry of a setup payload.
type Element struct {
	ID    string                    `json:"id"`
	Param map[string]map[string]any `json:"param"`
}

// DevTypes returns the device types of the element's parameter blocks in
// lexical order.
func (e Element) DevTypes() []string {
	out := make([]string, 0, len(e.Param))
	for devtype := range e.Param {
		out = append(out, devtype)
	}
	sort.Strings(out)
	return out
}

// Logger defines the logging interface used by the Receiver.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

// Receiver validates incoming payloads. A Receiver built from a nil schema
// accepts any well-formed payload.
type Receiver struct {
	schema *jsonschema.Schema
	logger Logger
}

// NewReceiver compiles schema. schema must be JSON encodable.
func NewReceiver(schema map[string]any) (*Receiver, error) {
	r := &Receiver{logger: noopLogger{}}
	if schema == nil {
		return r, nil
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	r.schema = compiled
	return r, nil
}

// SetLogger sets the logger for validation outcomes.
func (r *Receiver) SetLogger(logger Logger) {
	r.logger = logger
}

// Validate reports whether payload satisfies the schema.
func (r *Receiver) Validate(payload any) bool {
	_, err := r.check(payload)
	return err == nil
}

// Parse validates payload and returns its elements. payload may be any
// JSON-encodable value, including []Element.
func (r *Receiver) Parse(payload any) ([]Element, error) {
	doc, err := r.check(payload)
	if err != nil {
		r.logger.Error("invalid setup payload", "error", err)
		return nil, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	var elements []Element
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, fmt.Errorf("%w: expecting a list of {id, param} objects: %w", ErrFormat, err)
	}
	for i, el := range elements {
		if el.ID == "" || el.Param == nil {
			return nil, fmt.Errorf("%w: item #%d is not a valid payload element", ErrFormat, i)
		}
	}
	r.logger.Debug("setup payload accepted", "elements", len(elements))
	return elements, nil
}

// LoadJSONString decodes and validates a JSON payload. One pair of
// surrounding double or single quotes is stripped first, as left by shells.
func (r *Receiver) LoadJSONString(s string) ([]Element, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return r.Parse(doc)
}

// LoadJSONFile decodes and validates the JSON payload stored in path.
func (r *Receiver) LoadJSONFile(path string) ([]Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading payload file: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, path, err)
	}
	return r.Parse(doc)
}

// LoadSPF decodes the compact form "id:key=value,id:key=value". devtypes
// maps device names to device types. Values are decoded as JSON when
// possible ("40" becomes a number) and kept as text otherwise.
func (r *Receiver) LoadSPF(spf string, devtypes map[string]string) ([]Element, error) {
	reversed := make(map[string]map[string]map[string]any)
	for _, item := range strings.Split(spf, ",") {
		param, value, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%w: use id:key=value, got %q", ErrFormat, item)
		}
		id, key, ok := strings.Cut(param, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: use id:key format, got %q", ErrFormat, param)
		}
		id, key, value = strings.TrimSpace(id), strings.TrimSpace(key), strings.TrimSpace(value)

		devtype, ok := devtypes[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotManaged, id)
		}
		devtype = strings.ToLower(devtype)

		if reversed[devtype] == nil {
			reversed[devtype] = make(map[string]map[string]any)
		}
		if reversed[devtype][id] == nil {
			reversed[devtype][id] = make(map[string]any)
		}
		reversed[devtype][id][key] = decodeValue(value)
	}
	return r.LoadReversed(reversed)
}

// LoadReversed converts a devtype -> id -> parameters mapping into
// elements and validates them. Elements are ordered by devtype then id.
func (r *Receiver) LoadReversed(reversed map[string]map[string]map[string]any) ([]Element, error) {
	devtypes := make([]string, 0, len(reversed))
	for devtype := range reversed {
		devtypes = append(devtypes, devtype)
	}
	sort.Strings(devtypes)

	elements := make([]Element, 0)
	for _, devtype := range devtypes {
		ids := make([]string, 0, len(reversed[devtype]))
		for id := range reversed[devtype] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			elements = append(elements, Element{
				ID:    id,
				Param: map[string]map[string]any{devtype: reversed[devtype][id]},
			})
		}
	}
	return r.Parse(elements)
}

// check normalises payload to plain JSON values and validates it.
func (r *Receiver) check(payload any) (any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if r.schema == nil {
		return doc, nil
	}
	if err := r.schema.Validate(doc); err != nil {
		return nil, &SchemaError{Detail: err.Error()}
	}
	return doc, nil
}

func decodeValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return strings.Trim(s, `'"`)
}
