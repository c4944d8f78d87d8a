package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/fcs-core/internal/infrastructure/mqtt"
)

const defaultCallTimeout = 5 * time.Second

// Transport is the broker surface the MQTT caller needs.
// *mqtt.Client satisfies it.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// MQTTConfig configures an MQTT caller.
type MQTTConfig struct {
	// Service is the control server name used in request topics.
	Service string
	// ClientID identifies this caller's reply topic. Generated when empty.
	ClientID string
	// QoS for requests and the reply subscription.
	QoS byte
	// Timeout bounds each call when ctx carries no earlier deadline.
	Timeout time.Duration
}

// rpcRequest is the request envelope published to the server.
type rpcRequest struct {
	ID      string `json:"id"`
	Domain  Domain `json:"domain"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
	ReplyTo string `json:"reply_to"`
}

// rpcReply is the reply envelope published by the server.
type rpcReply struct {
	ID     string `json:"id"`
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// MQTT is a Caller performing request/reply calls over a broker.
//
// Each call publishes a request carrying a fresh correlation id and waits
// for the reply with the same id on the caller's reply topic.
type MQTT struct {
	transport  Transport
	cfg        MQTTConfig
	replyTopic string

	mu      sync.Mutex
	pending map[string]chan rpcReply
	closed  bool

	logger Logger
}

// NewMQTT subscribes to the reply topic and returns a ready caller.
func NewMQTT(transport Transport, cfg MQTTConfig) (*MQTT, error) {
	if cfg.Service == "" {
		return nil, fmt.Errorf("%w: service name is required", ErrTransport)
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "fcs-" + uuid.NewString()[:8]
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCallTimeout
	}

	m := &MQTT{
		transport:  transport,
		cfg:        cfg,
		replyTopic: mqtt.Topics{}.Reply(cfg.Service, cfg.ClientID),
		pending:    make(map[string]chan rpcReply),
		logger:     noopLogger{},
	}
	if err := transport.Subscribe(m.replyTopic, cfg.QoS, m.handleReply); err != nil {
		return nil, fmt.Errorf("subscribing to replies: %w", err)
	}
	return m, nil
}

// SetLogger sets the logger for reply handling.
func (m *MQTT) SetLogger(logger Logger) {
	m.logger = logger
}

// ReplyTopic returns the topic replies are expected on.
func (m *MQTT) ReplyTopic() string {
	return m.replyTopic
}

// Call implements Caller.
func (m *MQTT) Call(ctx context.Context, domain Domain, method string, args ...any) (string, error) {
	if args == nil {
		args = []any{}
	}
	req := rpcRequest{
		ID:      uuid.NewString(),
		Domain:  domain,
		Method:  method,
		Args:    args,
		ReplyTo: m.replyTopic,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	ch := make(chan rpcReply, 1)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", ErrClosed
	}
	m.pending[req.ID] = ch
	m.mu.Unlock()
	defer m.forget(req.ID)

	topic := mqtt.Topics{}.Request(m.cfg.Service, string(domain), method)
	if err := m.transport.Publish(topic, body, m.cfg.QoS, false); err != nil {
		return "", err
	}

	timer := time.NewTimer(m.cfg.Timeout)
	defer timer.Stop()

	select {
	case rep, ok := <-ch:
		if !ok {
			return "", ErrClosed
		}
		if rep.Error != "" {
			return "", &ServerError{Message: rep.Error}
		}
		return rep.Result, nil
	case <-timer.C:
		return "", fmt.Errorf("%w after %v", ErrTimeout, m.cfg.Timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops listening for replies and fails every pending call.
func (m *MQTT) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for id, ch := range m.pending {
		close(ch)
		delete(m.pending, id)
	}
	m.mu.Unlock()

	return m.transport.Unsubscribe(m.replyTopic)
}

func (m *MQTT) forget(id string) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

func (m *MQTT) handleReply(_ string, payload []byte) error {
	var rep rpcReply
	if err := json.Unmarshal(payload, &rep); err != nil {
		m.logger.Warn("discarding malformed reply", "error", err)
		return fmt.Errorf("%w: %w", ErrBadReply, err)
	}

	m.mu.Lock()
	ch, ok := m.pending[rep.ID]
	if ok {
		delete(m.pending, rep.ID)
	}
	m.mu.Unlock()

	if !ok {
		m.logger.Debug("reply for unknown request", "id", rep.ID)
		return nil
	}
	ch <- rep
	return nil
}
