package mqtt

import "fmt"

// Topic prefixes for the FCS MQTT hierarchy.
//
// Every control server owns the subtree fcs/{service}: requests are published
// under request/{domain}/{method} and replies are routed back to the caller's
// own reply/{client_id} topic.
const (
	// TopicPrefix is the root of all FCS topics.
	TopicPrefix = "fcs"

	// TopicPrefixSystem is the base for client presence topics.
	TopicPrefixSystem = "fcs/system"
)

// Topics provides builders for FCS MQTT topics.
//
//	topics := mqtt.Topics{}
//	req := topics.Request("fcs1", "App", "Setup")
//	// Returns: "fcs/fcs1/request/App/Setup"
type Topics struct{}

// Request returns the topic a server method call is published on.
//
// Example: fcs/fcs1/request/App/Setup
func (Topics) Request(service, domain, method string) string {
	return fmt.Sprintf("%s/%s/request/%s/%s", TopicPrefix, service, domain, method)
}

// Reply returns the topic a server publishes replies for one client on.
//
// Example: fcs/fcs1/reply/fcsctl-1a2b
func (Topics) Reply(service, clientID string) string {
	return fmt.Sprintf("%s/%s/reply/%s", TopicPrefix, service, clientID)
}

// AllRequests returns a pattern matching every request sent to a server.
//
// Pattern: fcs/fcs1/request/+/+
func (Topics) AllRequests(service string) string {
	return fmt.Sprintf("%s/%s/request/+/+", TopicPrefix, service)
}

// SystemStatus returns the client presence topic (LWT and online status).
//
// Example: fcs/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
