package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Std command interface methods.
var StdMethods = []string{"GetState", "GetStatus", "Init", "Enable", "Disable", "Reset", "Stop"}

// App command interface methods. Setup, DevInfo and DevStatus have
// dedicated helpers; the others take a list of device names.
var AppMethods = []string{
	"Recover", "DevInfo", "DevStatus",
	"Ignore", "Simulate", "StopIgn", "StopSim",
	"HwInit", "HwEnable", "HwDisable", "HwReset",
	"Setup",
}

// ErrNoDevices is returned by device-list commands called without names.
var ErrNoDevices = errors.New("client: no device has been specified")

// LookupMethod returns the canonical spelling of a method of domain,
// matched case-insensitively.
func LookupMethod(domain Domain, name string) (string, bool) {
	var methods []string
	switch domain {
	case DomainStd:
		methods = StdMethods
	case DomainApp:
		methods = AppMethods
	default:
		return "", false
	}
	for _, m := range methods {
		if strings.EqualFold(m, name) {
			return m, true
		}
	}
	return "", false
}

// DevNames flattens device name arguments, splitting space separated lists.
func DevNames(args ...string) []string {
	var out []string
	for _, a := range args {
		out = append(out, strings.Fields(a)...)
	}
	return out
}

// Std runs a Std method that takes no argument.
func Std(ctx context.Context, caller Caller, method string) (string, error) {
	return NewCommand(caller, DomainStd, method, nil).Exec(ctx)
}

// AppDevices runs an App method that acts on a list of devices, such as
// Ignore, Simulate or HwInit.
func AppDevices(ctx context.Context, caller Caller, method string, devnames ...string) (string, error) {
	names := DevNames(devnames...)
	if len(names) == 0 {
		return "", ErrNoDevices
	}
	return NewCommand(caller, DomainApp, method, nil).Exec(ctx, names)
}

// Recover runs App/Recover.
func Recover(ctx context.Context, caller Caller) (string, error) {
	return NewCommand(caller, DomainApp, "Recover", nil).Exec(ctx)
}

// DevInfo runs App/DevInfo and decodes the device name to device type map.
func DevInfo(ctx context.Context, caller Caller) (map[string]string, error) {
	reply, err := NewCommand(caller, DomainApp, "DevInfo", nil).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return ParseDevInfo(reply)
}

// ParseDevInfo decodes a DevInfo reply. Servers answer either with JSON or
// with a single-quoted mapping literal; both are accepted.
func ParseDevInfo(reply string) (map[string]string, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return map[string]string{}, nil
	}

	var out map[string]string
	if err := json.Unmarshal([]byte(reply), &out); err == nil {
		return out, nil
	}
	if err := json.Unmarshal([]byte(strings.ReplaceAll(reply, "'", `"`)), &out); err != nil {
		return nil, fmt.Errorf("%w: devinfo: %w", ErrBadReply, err)
	}
	return out, nil
}

// DevStatus runs App/DevStatus for devnames (all devices when empty) and
// returns the status lines.
func DevStatus(ctx context.Context, caller Caller, devnames ...string) ([]string, error) {
	names := DevNames(devnames...)
	if names == nil {
		names = []string{}
	}
	reply, err := NewCommand(caller, DomainApp, "DevStatus", nil).Exec(ctx, names)
	if err != nil {
		return nil, err
	}
	return ParseStatusReply(reply), nil
}

// ParseStatusReply splits a DevStatus reply into lines. A JSON array of
// strings is accepted as well.
func ParseStatusReply(reply string) []string {
	trimmed := strings.TrimSpace(reply)
	if strings.HasPrefix(trimmed, "[") {
		var lines []string
		if err := json.Unmarshal([]byte(trimmed), &lines); err == nil {
			return lines
		}
	}
	if trimmed == "" {
		return nil
	}
	return strings.Split(reply, "\n")
}

// DevInfoSource resolves device types through App/DevInfo.
type DevInfoSource struct {
	Caller Caller
}

// DevTypes implements the device type source used by setup buffers.
func (s DevInfoSource) DevTypes(ctx context.Context) (map[string]string, error) {
	return DevInfo(ctx, s.Caller)
}
