package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTempConfig writes content to a temp file and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `
simulator:
  id: sim-test
  name: Test Simulator
link:
  type: mqtt
mqtt:
  broker:
    host: broker.example.com
    port: 8883
    tls: true
  qos: 2
logging:
  level: debug
units:
  file: testdata/units.yaml
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Simulator.ID != "sim-test" {
		t.Errorf("Simulator.ID = %q, want sim-test", cfg.Simulator.ID)
	}
	if cfg.MQTT.Broker.Host != "broker.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want broker.example.com", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.QoS != 2 {
		t.Errorf("MQTT.QoS = %d, want 2", cfg.MQTT.QoS)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}

	// Unset fields keep their defaults.
	if cfg.Scheduler.OverlapPolicy != OverlapSkip {
		t.Errorf("Scheduler.OverlapPolicy = %q, want skip", cfg.Scheduler.OverlapPolicy)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeTempConfig(t, "simulator: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for malformed YAML")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeTempConfig(t, `
simulator:
  id: sim-test
link:
  type: mqtt
mqtt:
  broker:
    host: from-file
`)

	t.Setenv("FLEETSIM_MQTT_HOST", "from-env")
	t.Setenv("FLEETSIM_LINK_TYPE", "loopback")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MQTT.Broker.Host != "from-env" {
		t.Errorf("MQTT.Broker.Host = %q, want from-env", cfg.MQTT.Broker.Host)
	}
	if cfg.Link.Type != LinkTypeLoopback {
		t.Errorf("Link.Type = %q, want loopback", cfg.Link.Type)
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing simulator id",
			mutate:  func(c *Config) { c.Simulator.ID = "" },
			wantErr: "simulator.id",
		},
		{
			name:    "unsupported link type",
			mutate:  func(c *Config) { c.Link.Type = "pigeon" },
			wantErr: "link.type",
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: "mqtt.broker.host",
		},
		{
			name:    "broker port out of range",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 70000 },
			wantErr: "mqtt.broker.port",
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "partial tls certs",
			mutate: func(c *Config) {
				c.MQTT.Broker.TLS = true
				c.MQTT.TLS.CAFile = "/etc/ssl/ca.pem"
			},
			wantErr: "mqtt.tls",
		},
		{
			name: "loopback skips mqtt validation",
			mutate: func(c *Config) {
				c.Link.Type = LinkTypeLoopback
				c.MQTT.Broker.Host = ""
			},
		},
		{
			name:    "unsupported overlap policy",
			mutate:  func(c *Config) { c.Scheduler.OverlapPolicy = "sometimes" },
			wantErr: "scheduler.overlap_policy",
		},
		{
			name: "influxdb enabled without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.Org = "org"
				c.InfluxDB.Bucket = "bucket"
			},
			wantErr: "influxdb.url",
		},
		{
			name:    "missing units file",
			mutate:  func(c *Config) { c.Units.File = "" },
			wantErr: "units.file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
