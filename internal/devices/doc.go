// Package devices declares the device types understood by the FCS setup
// engine.
//
// Every device type is plain data: a setup.Definition listing the typed
// parameters and the actions whose context values select how a payload is
// validated and serialized. The definitions are package level values built
// once at init; Register adds them to a setup.Registry.
//
//	r := devices.NewRegistry()
//	buf := setup.NewBuffer(r, caller)
//	lamp, _ := buf.Get(ctx, "lamp1", "lamp")
//	_ = lamp.Call("switch_on", map[string]any{"intensity": 50.0, "time": 10})
//
// Device types:
//
//	lamp      ON/OFF with intensity and timer
//	shutter   OPEN/CLOSE
//	actuator  ON/OFF
//	motor     absolute/relative moves in user units or encoders, speed, named positions
//	drot      derotator: motor vocabulary plus position angle and tracking
//	adc       atmospheric dispersion corrector: motor vocabulary on a selected axis
//	piezo     piezo stage modes and moves
//	iodev     digital, analog and integer output channels
//	source    assembly driving two lamps from one light-source mode
package devices
