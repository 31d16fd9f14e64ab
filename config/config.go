// Package config loads and validates observability pipeline configuration
// via Viper. The core library needs no configuration; these knobs govern the
// optional hub, sinks, and HTTP status API.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config captures all pipeline configuration knobs loaded via Viper.
type Config struct {
	Hub     Hub     `mapstructure:"hub"`
	Server  Server  `mapstructure:"server"`
	Logging Logging `mapstructure:"logging"`
}

// Hub controls event buffering and batching.
type Hub struct {
	BufferSize     int `mapstructure:"buffer_size"`
	MaxBatchEvents int `mapstructure:"max_batch_events"`
	MaxBatchWaitMs int `mapstructure:"max_batch_wait_ms"`
	SinkTimeoutSec int `mapstructure:"sink_timeout_seconds"`
}

// Server controls the HTTP status API.
type Server struct {
	Port              int `mapstructure:"port"`
	RequestTimeoutSec int `mapstructure:"request_timeout_seconds"`
}

// Logging toggles zap development features.
type Logging struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. Environment variables use the
// TASKMETER prefix with dots replaced by underscores, e.g.
// TASKMETER_SERVER_PORT.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TASKMETER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hub.buffer_size", 1024)
	v.SetDefault("hub.max_batch_events", 256)
	v.SetDefault("hub.max_batch_wait_ms", 250)
	v.SetDefault("hub.sink_timeout_seconds", 5)
	v.SetDefault("server.port", 9180)
	v.SetDefault("server.request_timeout_seconds", 5)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Hub.BufferSize <= 0 {
		return fmt.Errorf("hub.buffer_size must be > 0")
	}
	if c.Hub.MaxBatchEvents <= 0 {
		return fmt.Errorf("hub.max_batch_events must be > 0")
	}
	if c.Hub.MaxBatchWaitMs <= 0 {
		return fmt.Errorf("hub.max_batch_wait_ms must be > 0")
	}
	if c.Hub.SinkTimeoutSec <= 0 {
		return fmt.Errorf("hub.sink_timeout_seconds must be > 0")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535]")
	}
	if c.Server.RequestTimeoutSec <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	return nil
}
