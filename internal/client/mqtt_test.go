package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/fcs-core/internal/infrastructure/mqtt"
)

// fakeBroker routes published requests to a server function and delivers
// its answer to the subscribed reply handler.
type fakeBroker struct {
	mu        sync.Mutex
	handlers  map[string]mqtt.MessageHandler
	published []string
	serve     func(req rpcRequest) (rpcReply, bool)
}

func newFakeBroker(serve func(req rpcRequest) (rpcReply, bool)) *fakeBroker {
	return &fakeBroker{handlers: make(map[string]mqtt.MessageHandler), serve: serve}
}

func (b *fakeBroker) Publish(topic string, payload []byte, _ byte, _ bool) error {
	var req rpcRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return err
	}

	b.mu.Lock()
	b.published = append(b.published, topic)
	handler := b.handlers[req.ReplyTo]
	b.mu.Unlock()

	rep, ok := b.serve(req)
	if !ok || handler == nil {
		return nil
	}
	body, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	go handler(req.ReplyTo, body) //nolint:errcheck // Test broker
	return nil
}

func (b *fakeBroker) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = handler
	return nil
}

func (b *fakeBroker) Unsubscribe(topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, topic)
	return nil
}

func (b *fakeBroker) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.published...)
}

func TestMQTTCallRoundTrip(t *testing.T) {
	broker := newFakeBroker(func(req rpcRequest) (rpcReply, bool) {
		return rpcReply{ID: req.ID, Result: "OK " + req.Method}, true
	})
	caller, err := NewMQTT(broker, MQTTConfig{Service: "fcs1", ClientID: "test"})
	if err != nil {
		t.Fatalf("NewMQTT() unexpected error: %v", err)
	}
	defer caller.Close() //nolint:errcheck // Test cleanup

	reply, err := caller.Call(context.Background(), DomainApp, "Setup", []any{"x"})
	if err != nil {
		t.Fatalf("Call() unexpected error: %v", err)
	}
	if reply != "OK Setup" {
		t.Errorf("Call() = %q, want OK Setup", reply)
	}

	topics := broker.topics()
	if len(topics) != 1 || topics[0] != "fcs/fcs1/request/App/Setup" {
		t.Errorf("published topics = %v", topics)
	}
	if caller.ReplyTopic() != "fcs/fcs1/reply/test" {
		t.Errorf("ReplyTopic() = %q", caller.ReplyTopic())
	}
}

func TestMQTTCallServerError(t *testing.T) {
	broker := newFakeBroker(func(req rpcRequest) (rpcReply, bool) {
		return rpcReply{ID: req.ID, Error: "lamp1 not operational"}, true
	})
	caller, err := NewMQTT(broker, MQTTConfig{Service: "fcs1"})
	if err != nil {
		t.Fatalf("NewMQTT() unexpected error: %v", err)
	}

	_, err = NewCommand(caller, DomainStd, "Init", nil).Exec(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Exec() error = %v, want ErrTransport", err)
	}
	var serr *ServerError
	if !errors.As(err, &serr) || !strings.Contains(serr.Message, "lamp1") {
		t.Errorf("Exec() error = %v, want ServerError", err)
	}
}

func TestMQTTCallTimeout(t *testing.T) {
	broker := newFakeBroker(func(rpcRequest) (rpcReply, bool) { return rpcReply{}, false })
	caller, err := NewMQTT(broker, MQTTConfig{Service: "fcs1", Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewMQTT() unexpected error: %v", err)
	}

	if _, err := caller.Call(context.Background(), DomainApp, "DevInfo"); !errors.Is(err, ErrTimeout) {
		t.Errorf("Call() error = %v, want ErrTimeout", err)
	}
}

func TestMQTTCallContextCancel(t *testing.T) {
	broker := newFakeBroker(func(rpcRequest) (rpcReply, bool) { return rpcReply{}, false })
	caller, err := NewMQTT(broker, MQTTConfig{Service: "fcs1", Timeout: time.Minute})
	if err != nil {
		t.Fatalf("NewMQTT() unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := caller.Call(ctx, DomainApp, "DevInfo"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Call() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestMQTTClose(t *testing.T) {
	broker := newFakeBroker(func(rpcRequest) (rpcReply, bool) { return rpcReply{}, false })
	caller, err := NewMQTT(broker, MQTTConfig{Service: "fcs1", Timeout: time.Minute})
	if err != nil {
		t.Fatalf("NewMQTT() unexpected error: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := caller.Call(context.Background(), DomainStd, "GetState")
		done <- err
	}()

	// wait for the request to be in flight
	deadline := time.Now().Add(time.Second)
	for len(broker.topics()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if err := caller.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Errorf("pending Call() error = %v, want ErrClosed", err)
	}
	if _, err := caller.Call(context.Background(), DomainStd, "GetState"); !errors.Is(err, ErrClosed) {
		t.Errorf("Call() after Close() error = %v, want ErrClosed", err)
	}
}

func TestMQTTRequiresService(t *testing.T) {
	if _, err := NewMQTT(newFakeBroker(nil), MQTTConfig{}); err == nil {
		t.Error("NewMQTT() without service expected error")
	}
}

func TestMQTTIgnoresUnknownReplies(t *testing.T) {
	broker := newFakeBroker(nil)
	caller, err := NewMQTT(broker, MQTTConfig{Service: "fcs1", ClientID: "c"})
	if err != nil {
		t.Fatalf("NewMQTT() unexpected error: %v", err)
	}
	if err := caller.handleReply("", []byte(`{"id":"nope","result":"x"}`)); err != nil {
		t.Errorf("handleReply(unknown) error = %v", err)
	}
	if err := caller.handleReply("", []byte(`not json`)); !errors.Is(err, ErrBadReply) {
		t.Errorf("handleReply(garbage) error = %v, want ErrBadReply", err)
	}
}
