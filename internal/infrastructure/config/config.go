package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the fleet simulator.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Simulator SimulatorConfig `yaml:"simulator"`
	Link      LinkConfig      `yaml:"link"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Units     UnitsConfig     `yaml:"units"`
}

// SimulatorConfig contains simulator-wide identification.
type SimulatorConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LinkConfig selects the outbound link implementation.
type LinkConfig struct {
	// Type is the transport type: "mqtt" or "loopback".
	// Loopback runs the fleet against an in-process bus with no broker,
	// useful for deterministic offline runs.
	Type string `yaml:"type"`
}

// Link types supported by the link builder.
const (
	LinkTypeMQTT     = "mqtt"
	LinkTypeLoopback = "loopback"
)

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	TLS       MQTTTLSConfig       `yaml:"tls"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`
	// ClientID identifies this simulator to the broker.
	// If blank, a random ID with a "fleetsim-" prefix is generated.
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTTLSConfig contains certificate paths for mutual TLS.
// All three paths must be set together; they are ignored when broker.tls is false.
type MQTTTLSConfig struct {
	CAFile   string `yaml:"ca_file"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// SchedulerConfig contains periodic job dispatch settings.
type SchedulerConfig struct {
	// OverlapPolicy controls what happens when a job fires while a previous
	// firing is still running: "skip" drops the new firing, "allow" runs
	// both concurrently.
	OverlapPolicy string `yaml:"overlap_policy"`
}

// Overlap policies accepted by scheduler.overlap_policy.
const (
	OverlapSkip  = "skip"
	OverlapAllow = "allow"
)

// InfluxDBConfig contains InfluxDB connection settings for publish telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// UnitsConfig points at the fleet definition file.
type UnitsConfig struct {
	// File is the path to the units YAML file (see LoadUnits).
	File string `yaml:"file"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: FLEETSIM_SECTION_KEY
// For example: FLEETSIM_MQTT_HOST, FLEETSIM_INFLUXDB_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Simulator: SimulatorConfig{
			ID:   "fleetsim-01",
			Name: "Fleet Simulator",
		},
		Link: LinkConfig{
			Type: LinkTypeMQTT,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Scheduler: SchedulerConfig{
			OverlapPolicy: OverlapSkip,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Units: UnitsConfig{
			File: "configs/units.yaml",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: FLEETSIM_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Link
	if v := os.Getenv("FLEETSIM_LINK_TYPE"); v != "" {
		cfg.Link.Type = v
	}

	// MQTT
	if v := os.Getenv("FLEETSIM_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("FLEETSIM_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("FLEETSIM_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Units file
	if v := os.Getenv("FLEETSIM_UNITS_FILE"); v != "" {
		cfg.Units.File = v
	}

	// InfluxDB
	if v := os.Getenv("FLEETSIM_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Simulator.ID == "" {
		errs = append(errs, "simulator.id is required")
	}

	switch c.Link.Type {
	case LinkTypeMQTT, LinkTypeLoopback:
	default:
		errs = append(errs, fmt.Sprintf("link.type %q is not supported (mqtt, loopback)", c.Link.Type))
	}

	if c.Link.Type == LinkTypeMQTT {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required")
		}
		if c.MQTT.Broker.Port <= 0 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.TLS {
			set := 0
			for _, p := range []string{c.MQTT.TLS.CAFile, c.MQTT.TLS.CertFile, c.MQTT.TLS.KeyFile} {
				if p != "" {
					set++
				}
			}
			if set != 0 && set != 3 {
				errs = append(errs, "mqtt.tls requires ca_file, cert_file and key_file to be set together")
			}
		}
	}

	switch c.Scheduler.OverlapPolicy {
	case OverlapSkip, OverlapAllow:
	default:
		errs = append(errs, fmt.Sprintf("scheduler.overlap_policy %q is not supported (skip, allow)", c.Scheduler.OverlapPolicy))
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if c.Units.File == "" {
		errs = append(errs, "units.file is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
