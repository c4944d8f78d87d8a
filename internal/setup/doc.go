// Package setup builds, validates and dispatches device setup payloads.
//
// A device type is described once by a Definition: typed parameters and a
// list of actions. An action fixes the value of some parameters (its
// context) and names the arguments it needs. Definitions are shared by all
// devices of a type and resolve payloads to actions by longest context
// match.
//
// Architecture:
//
//	┌────────────────────────────────────────────────────────────┐
//	│                          Buffer                            │
//	│   Get / Add / SetPayload ──► Registry.New(id, devtype)     │
//	│                                   │                        │
//	│                  ┌────────────────┴──────────────┐         │
//	│                  ▼                               ▼         │
//	│               Device                         Assembly      │
//	│     Set ─► Definition.FindParser       apply ─► children   │
//	│     Payload ◄─ maker table                       │         │
//	│                  │                               │         │
//	│                  └────────────┬──────────────────┘         │
//	│                               ▼                            │
//	│                        []Element (wire)                    │
//	└───────────────────────────────┬────────────────────────────┘
//	                                ▼
//	              SetupCommand ─► client.Caller (App/Setup)
//
// Wire format:
//
//	[{"id": "lamp1", "param": {"lamp": {"action": "ON", "intensity": 40, "time": 10}}}]
//
// Usage:
//
//	buf := setup.NewBuffer(registry, caller)
//	lamp, err := buf.Get(ctx, "lamp1", "lamp")
//	if err != nil {
//	    return err
//	}
//	if err := lamp.Set(map[string]any{"action": "ON", "intensity": 40, "time": 10}); err != nil {
//	    return err
//	}
//	msg, err := buf.Dispatch(ctx, false)
//
// Buffers and devices are owned by one caller at a time. Definitions and
// registries are safe for concurrent use.
package setup
