// Package client is the client interface to an FCS control server.
//
// Every server interaction is a named method call in one of three command
// domains (App, Std, Daq). A Caller performs the call; a Command wraps a
// Caller with logging and an always-fired completion callback, and offers a
// synchronous Exec and an asynchronous ExecAsync variant.
//
// Two Callers are provided:
//
//   - MQTT: request/reply RPC over the broker client in infrastructure/mqtt
//   - Dummy: records calls and returns scripted replies, for tests and dry runs
//
// Callers never retry. A reported failure is final for that call and is
// surfaced as a *TransportError.
//
// # Usage
//
//	caller, _ := client.NewMQTT(broker, client.MQTTConfig{Service: "fcs1", ClientID: "fcsctl"})
//	defer caller.Close()
//
//	devtypes, err := client.DevInfo(ctx, caller)
//
//	init := client.NewCommand(caller, client.DomainStd, "Init", nil)
//	if _, err := init.Exec(ctx); err != nil {
//	    // err wraps client.ErrTransport
//	}
package client
