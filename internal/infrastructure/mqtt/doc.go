// Package mqtt wraps the paho MQTT client for the FCS request/reply
// transport.
//
// A client connects with auto-reconnect, restores its subscriptions after
// a reconnect and announces itself on fcs/system/status: "online" on
// connect, "offline" on Close, and a retained Last Will covering crashes.
//
//	c, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	caller, err := client.NewMQTT(c, client.MQTTConfig{Service: "fcs1"})
//
// Topics are built by Topics: requests go to fcs/{service}/request/{domain}/{method}
// and replies come back on fcs/{service}/reply/{client_id}.
//
// Use TLS (mqtt.broker.tls) whenever the broker is not on localhost.
package mqtt
