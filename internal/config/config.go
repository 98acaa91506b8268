// Package config loads server configuration from defaults, an optional
// YAML file and GARLAND_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Game      GameConfig      `mapstructure:"game"`
	Session   SessionConfig   `mapstructure:"session"`
	Map       MapConfig       `mapstructure:"map"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds the listen address.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Port int    `mapstructure:"port"`
}

// GameConfig holds simulation timing.
type GameConfig struct {
	TickRate      int           `mapstructure:"tickRate"`
	SnapshotEvery int           `mapstructure:"snapshotEvery"`
	RespawnDelay  time.Duration `mapstructure:"respawnDelay"`
	RestartDelay  time.Duration `mapstructure:"restartDelay"`
}

// SessionConfig holds per-connection limits. An empty ticketSecret disables
// room ticket verification.
type SessionConfig struct {
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeatInterval"`
	MessageRate       float64       `mapstructure:"messageRate"`
	MessageBurst      int           `mapstructure:"messageBurst"`
	TicketSecret      string        `mapstructure:"ticketSecret"`
}

// MapConfig holds arena generation parameters.
type MapConfig struct {
	Width      float64  `mapstructure:"width"`
	Height     float64  `mapstructure:"height"`
	Billboards []string `mapstructure:"billboards"`
}

// TelemetryConfig holds the OTLP export settings.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"serviceName"`
	Endpoint    string `mapstructure:"endpoint"`
	Insecure    bool   `mapstructure:"insecure"`
}

// Load reads the configuration. If path is empty, a garland.yaml in the
// working directory is used when present; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", "localhost")
	v.SetDefault("server.port", 9090)

	v.SetDefault("game.tickRate", 60)
	v.SetDefault("game.snapshotEvery", 60)
	v.SetDefault("game.respawnDelay", 5*time.Second)
	v.SetDefault("game.restartDelay", 2*time.Second)

	v.SetDefault("session.idleTimeout", 60*time.Second)
	v.SetDefault("session.heartbeatInterval", 20*time.Second)
	v.SetDefault("session.messageRate", 120.0)
	v.SetDefault("session.messageBurst", 240)
	v.SetDefault("session.ticketSecret", "")

	v.SetDefault("map.width", 60.0)
	v.SetDefault("map.height", 60.0)
	v.SetDefault("map.billboards", []string{})

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.serviceName", "garland-server")
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.insecure", true)

	v.SetEnvPrefix("GARLAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("garland")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Game.TickRate <= 0 {
		return fmt.Errorf("game.tickRate must be positive, got %d", c.Game.TickRate)
	}
	if c.Game.RespawnDelay <= 0 {
		return fmt.Errorf("game.respawnDelay must be positive, got %s", c.Game.RespawnDelay)
	}
	if c.Game.RestartDelay <= 0 {
		return fmt.Errorf("game.restartDelay must be positive, got %s", c.Game.RestartDelay)
	}
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return fmt.Errorf("map dimensions must be positive, got %gx%g", c.Map.Width, c.Map.Height)
	}
	return nil
}

// TickInterval converts the tick rate into a tick period.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Game.TickRate)
}
