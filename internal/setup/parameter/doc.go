// Package parameter provides the typed parameter model used by device setups.
//
// A Param couples a wire name with a Parser. Parsers convert between the
// wire representation (the primitive values found in a decoded JSON payload)
// and the internal representation stored in a device's Values buffer, and
// describe themselves as a JSON-Schema fragment.
//
// # Key Types
//
//   - Parser: conversion and schema contract implemented by every kind
//   - String, Float, Int: scalar parsers with JSON-Schema style bounds
//   - StringMap, EnumName: closed sets of external names mapped to internal values
//   - List: array parser producing a live-validated ListValue
//   - Param: named descriptor shared by every device of one type
//   - Values: per-device buffer; a key is present only while the parameter is set
//
// # Usage
//
//	intensity := parameter.Param{
//	    Name:        "intensity",
//	    Parser:      parameter.Float{Minimum: parameter.Ptr(0.0), Maximum: parameter.Ptr(100.0)},
//	    Description: "Lamp intensity.",
//	}
//
//	values := parameter.NewValues()
//	if err := intensity.Assign(values, 40); err != nil {
//	    // err wraps parameter.ErrInvalid and names "intensity"
//	}
package parameter
