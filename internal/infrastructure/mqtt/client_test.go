package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/fcs-core/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "fcs-test-" + strconv.FormatInt(time.Now().UnixNano(), 36),
		},
		QoS:       1,
		Reconnect: config.MQTTReconnectConfig{InitialDelay: 1, MaxDelay: 5},
	}
	if host := os.Getenv("FCS_TEST_MQTT"); host != "" && host != "1" {
		cfg.Broker.Host = host
	}
	return cfg
}

// connectOrSkip connects to the broker named by FCS_TEST_MQTT ("1" means
// 127.0.0.1:1883) and skips the test when it is unset.
func connectOrSkip(t *testing.T) *Client {
	t.Helper()
	if os.Getenv("FCS_TEST_MQTT") == "" {
		t.Skip("FCS_TEST_MQTT not set, skipping broker test")
	}
	c, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Unit tests, no broker needed.

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883
	cfg.Auth = config.MQTTAuthConfig{Username: "fcs", Password: "secret"}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://127.0.0.1:8883" {
		t.Errorf("Servers = %v, want ssl://127.0.0.1:8883", opts.Servers)
	}
	if opts.Username != "fcs" || opts.Password != "secret" {
		t.Errorf("credentials not set: %q/%q", opts.Username, opts.Password)
	}
	if opts.TLSConfig == nil {
		t.Error("TLS config missing")
	}
	if !opts.CleanSession || !opts.AutoReconnect {
		t.Error("expected clean session with auto reconnect")
	}
	if opts.MaxReconnectInterval != 5*time.Second {
		t.Errorf("MaxReconnectInterval = %v, want 5s", opts.MaxReconnectInterval)
	}
}

func TestBuildClientOptionsPlain(t *testing.T) {
	opts := buildClientOptions(testConfig())
	if opts.Servers[0].Scheme != "tcp" {
		t.Errorf("scheme = %q, want tcp", opts.Servers[0].Scheme)
	}
	if opts.Username != "" || opts.TLSConfig != nil {
		t.Error("anonymous plain connection expected")
	}
}

func TestLastWill(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "fcsctl")

	if !opts.WillEnabled || !opts.WillRetained || opts.WillTopic != "fcs/system/status" {
		t.Errorf("will = %v %v %q", opts.WillEnabled, opts.WillRetained, opts.WillTopic)
	}
	var p presence
	if err := json.Unmarshal(opts.WillPayload, &p); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if p.Status != "offline" || p.ClientID != "fcsctl" || p.Reason != "unexpected_disconnect" {
		t.Errorf("will payload = %+v", p)
	}
}

func TestPresencePayload(t *testing.T) {
	var p map[string]any
	if err := json.Unmarshal(presencePayload("c1", "online", ""), &p); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if p["status"] != "online" || p["client_id"] != "c1" {
		t.Errorf("payload = %v", p)
	}
	if _, ok := p["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
	if _, err := time.Parse(time.RFC3339, p["timestamp"].(string)); err != nil {
		t.Errorf("timestamp: %v", err)
	}
}

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Topics{}.Request("fcs1", "App", "Setup"), "fcs/fcs1/request/App/Setup"},
		{Topics{}.Reply("fcs1", "fcsctl-1a2b"), "fcs/fcs1/reply/fcsctl-1a2b"},
		{Topics{}.AllRequests("fcs1"), "fcs/fcs1/request/+/+"},
		{Topics{}.SystemStatus(), "fcs/system/status"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("topic = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestDisconnectedClient(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}
	noop := func(string, []byte) error { return nil }

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"publish empty topic", c.Publish("", nil, 1, false), ErrInvalidTopic},
		{"publish bad qos", c.Publish("t", nil, 3, false), ErrInvalidQoS},
		{"publish too large", c.Publish("t", make([]byte, maxPayloadSize+1), 1, false), ErrPublishFailed},
		{"publish disconnected", c.Publish("t", []byte("x"), 1, false), ErrNotConnected},
		{"subscribe empty topic", c.Subscribe("", 1, noop), ErrInvalidTopic},
		{"subscribe bad qos", c.Subscribe("t", 3, noop), ErrInvalidQoS},
		{"subscribe nil handler", c.Subscribe("t", 1, nil), ErrSubscribeFailed},
		{"subscribe disconnected", c.Subscribe("t", 1, noop), ErrNotConnected},
		{"unsubscribe empty topic", c.Unsubscribe(""), ErrInvalidTopic},
		{"unsubscribe disconnected", c.Unsubscribe("t"), ErrNotConnected},
		{"health check", c.HealthCheck(context.Background()), ErrNotConnected},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
	}
	if c.SubscriptionCount() != 0 {
		t.Error("failed subscriptions must not be tracked")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client = %v", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Client{}
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() = %v, want context.Canceled", err)
	}
}

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func TestDispatchRecoversAndLogs(t *testing.T) {
	logger := &recordingLogger{}
	c := &Client{}
	c.SetLogger(logger)

	c.dispatch(func(string, []byte) error { panic("boom") }, "t", nil)
	c.dispatch(func(string, []byte) error { return errors.New("bad reply") }, "t", nil)
	c.dispatch(func(string, []byte) error { return nil }, "t", nil)

	if len(logger.errors) != 1 || len(logger.warns) != 1 {
		t.Errorf("errors = %v, warns = %v", logger.errors, logger.warns)
	}
}

// Broker tests, run with FCS_TEST_MQTT=1 against a local Mosquitto.

func TestConnectInvalidBroker(t *testing.T) {
	if os.Getenv("FCS_TEST_MQTT") == "" {
		t.Skip("FCS_TEST_MQTT not set, skipping broker test")
	}
	cfg := testConfig()
	cfg.Broker.Port = 19999
	if _, err := Connect(cfg); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestBrokerRoundtrip(t *testing.T) {
	c := connectOrSkip(t)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() = %v", err)
	}

	topic := Topics{}.Reply("fcs-test", "roundtrip")
	received := make(chan string, 1)
	err := c.Subscribe(topic, 1, func(_ string, payload []byte) error {
		received <- string(payload)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !c.HasSubscription(topic) {
		t.Error("subscription not tracked")
	}

	if err := c.Publish(topic, []byte(`{"id":"1","result":"OK"}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	select {
	case got := <-received:
		if got != `{"id":"1","result":"OK"}` {
			t.Errorf("received %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}

	if err := c.Unsubscribe(topic); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if c.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after Unsubscribe", c.SubscriptionCount())
	}
}

func TestBrokerWildcardSubscription(t *testing.T) {
	c := connectOrSkip(t)

	got := make(chan string, 2)
	if err := c.Subscribe(Topics{}.AllRequests("fcs-test"), 1, func(topic string, _ []byte) error {
		got <- topic
		return nil
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	for _, method := range []string{"Setup", "DevInfo"} {
		if err := c.Publish(Topics{}.Request("fcs-test", "App", method), []byte("{}"), 1, false); err != nil {
			t.Fatalf("Publish(%s) error = %v", method, err)
		}
	}
	for i := 0; i < 2; i++ {
		select {
		case <-got:
		case <-time.After(5 * time.Second):
			t.Fatalf("only %d of 2 requests received", i)
		}
	}
}
