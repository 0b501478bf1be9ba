// Package config loads and validates the bridge configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edgehem/sensorbridge/pkg/mqtt"
	"github.com/spf13/viper"
)

var (
	// ErrNoDevices is returned when the configuration declares no devices.
	// A bridge with no routes has no purpose.
	ErrNoDevices = errors.New("config: no devices configured")

	// ErrDuplicateTopic is returned when two device entries declare the same
	// subscription topic.
	ErrDuplicateTopic = errors.New("config: duplicate device topic")
)

// Config holds application-wide configuration.
type Config struct {
	Hem     HemConfig      `mapstructure:"hem"`
	MQTT    mqtt.Config    `mapstructure:"mqtt"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
	Devices []DeviceConfig `mapstructure:"devices"`
}

// HemConfig locates the hem store.
type HemConfig struct {
	BaseURL string `mapstructure:"baseURL"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// DeviceConfig declares one bridged device: its registry identity and the
// topic it publishes telemetry on.
type DeviceConfig struct {
	Name     string `mapstructure:"name"`
	Location string `mapstructure:"location"`
	Topic    string `mapstructure:"topic"`
}

// Load reads config from file or environment.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("sensorbridge")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("SENSORBRIDGE")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9100")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the parts of the configuration the bridge cannot run
// without. Duplicate topics are rejected outright rather than letting a later
// entry silently shadow an earlier one in the routing table.
func (c *Config) Validate() error {
	if c.Hem.BaseURL == "" {
		return errors.New("config: hem.baseURL is required")
	}
	if len(c.Devices) == 0 {
		return ErrNoDevices
	}

	seen := make(map[string]string, len(c.Devices))
	for i, d := range c.Devices {
		if d.Name == "" {
			return fmt.Errorf("config: devices[%d]: name is required", i)
		}
		if d.Location == "" {
			return fmt.Errorf("config: devices[%d] (%s): location is required", i, d.Name)
		}
		if d.Topic == "" {
			return fmt.Errorf("config: devices[%d] (%s): topic is required", i, d.Name)
		}
		if prev, ok := seen[d.Topic]; ok {
			return fmt.Errorf("%w: %q declared by both %s and %s", ErrDuplicateTopic, d.Topic, prev, d.Name)
		}
		seen[d.Topic] = d.Name
	}

	return nil
}
