package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fcs.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
fcs:
  service: "ins1"
  timeout: 2500
  devtypes: ["lamp", "motor"]
mqtt:
  broker:
    host: "broker.local"
    port: 8883
    tls: true
redis:
  enabled: true
  addr: "cache:6379"
  ttl: 60
database:
  path: "/tmp/fcs-test.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.FCS.Service != "ins1" {
		t.Errorf("FCS.Service = %q, want ins1", cfg.FCS.Service)
	}
	if cfg.CallTimeout() != 2500*time.Millisecond {
		t.Errorf("CallTimeout() = %v, want 2.5s", cfg.CallTimeout())
	}
	if !reflect.DeepEqual(cfg.FCS.DevTypes, []string{"lamp", "motor"}) {
		t.Errorf("FCS.DevTypes = %v", cfg.FCS.DevTypes)
	}
	if !cfg.MQTT.Broker.TLS || cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker = %+v", cfg.MQTT.Broker)
	}
	if cfg.CacheTTL() != time.Minute {
		t.Errorf("CacheTTL() = %v, want 1m", cfg.CacheTTL())
	}
	// Defaults survive for keys the file leaves out.
	if cfg.MQTT.Broker.ClientID != "fcsctl" || cfg.MQTT.QoS != 1 {
		t.Errorf("MQTT defaults lost: %+v", cfg.MQTT)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/fcs.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "fcs: [service: broken")); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
fcs:
  service: ""
  timeout: 0
mqtt:
  qos: 3
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, want := range []string{"fcs.service is required", "fcs.timeout must be positive", "mqtt.qos must be 0, 1, or 2"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FCS_SERVICE", "ins2")
	t.Setenv("FCS_MQTT_HOST", "mqtt.example")
	t.Setenv("FCS_MQTT_PASSWORD", "secret")
	t.Setenv("FCS_REDIS_ADDR", "redis:6380")
	t.Setenv("FCS_TIMEOUT", "750")
	t.Setenv("FCS_DEVTYPES", "lamp,shutter")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FCS.Service != "ins2" || cfg.MQTT.Broker.Host != "mqtt.example" || cfg.MQTT.Auth.Password != "secret" {
		t.Errorf("string overrides not applied: %+v", cfg)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.FCS.Timeout != 750 {
		t.Errorf("FCS.Timeout = %d, want 750", cfg.FCS.Timeout)
	}
	if !reflect.DeepEqual(cfg.FCS.DevTypes, []string{"lamp", "shutter"}) {
		t.Errorf("FCS.DevTypes = %v", cfg.FCS.DevTypes)
	}
}

func TestEnvOverrides_BadInteger(t *testing.T) {
	t.Setenv("FCS_MQTT_PORT", "mqtt")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "FCS_MQTT_PORT") {
		t.Errorf("Load() error = %v, want FCS_MQTT_PORT error", err)
	}
}

func TestValidate_OptionalSections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"redis without addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "redis.addr"},
		{"influx without bucket", func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Bucket = "" }, "influxdb.bucket"},
		{"history without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.want)
			}
		})
	}

	cfg := Default()
	cfg.Database.Enabled = false
	cfg.Database.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with history disabled = %v", err)
	}
}
