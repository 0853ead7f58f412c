// Package config provides Viper-based configuration loading for the arcade server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// WSPath is the route that upgrades to a WebSocket.
	WSPath string `mapstructure:"ws_path"`
	// ShutdownTimeout bounds the graceful HTTP shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WebSocketConfig holds per-connection transport settings.
type WebSocketConfig struct {
	ReadBufferSize  int   `mapstructure:"read_buffer_size"`
	WriteBufferSize int   `mapstructure:"write_buffer_size"`
	MaxMessageSize  int64 `mapstructure:"max_message_size"`
	// WriteTimeout is the per-frame write deadline.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PongWait is how long a connection may stay silent before it is closed.
	PongWait time.Duration `mapstructure:"pong_wait"`
	// PingInterval is the keepalive period; zero disables pings.
	PingInterval time.Duration `mapstructure:"ping_interval"`
	// CheckOrigin rejects cross-origin upgrades when true.
	CheckOrigin bool `mapstructure:"check_origin"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GamesConfig holds the game engine and ticker settings.
type GamesConfig struct {
	// TickRate is the physics step frequency in Hz.
	TickRate int `mapstructure:"tick_rate"`
	// BroadcastEvery is the number of physics ticks between snapshot broadcasts.
	BroadcastEvery int `mapstructure:"broadcast_every"`
	// ChatHistory caps each room's chat transcript; zero keeps none.
	ChatHistory int `mapstructure:"chat_history"`
	// UnoMaxSeats is the seat limit of card rooms.
	UnoMaxSeats int `mapstructure:"uno_max_seats"`
	// AirHockeyTable is an optional path to a table preset.
	AirHockeyTable string `mapstructure:"airhockey_table"`
}

// TickInterval returns the fixed physics timestep.
//
// Precondition: TickRate must be positive.
func (g GamesConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(g.TickRate)
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Games     GamesConfig     `mapstructure:"games"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWebSocket(c.WebSocket); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGames(c.Games); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if !strings.HasPrefix(s.WSPath, "/") {
		errs = append(errs, fmt.Sprintf("server.ws_path must start with '/', got %q", s.WSPath))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateWebSocket(w WebSocketConfig) error {
	var errs []string
	if w.ReadBufferSize < 0 {
		errs = append(errs, "websocket.read_buffer_size must not be negative")
	}
	if w.WriteBufferSize < 0 {
		errs = append(errs, "websocket.write_buffer_size must not be negative")
	}
	if w.MaxMessageSize < 1 {
		errs = append(errs, fmt.Sprintf("websocket.max_message_size must be >= 1, got %d", w.MaxMessageSize))
	}
	if w.WriteTimeout <= 0 {
		errs = append(errs, "websocket.write_timeout must be positive")
	}
	if w.PongWait < 0 {
		errs = append(errs, "websocket.pong_wait must not be negative")
	}
	if w.PingInterval < 0 {
		errs = append(errs, "websocket.ping_interval must not be negative")
	}
	if w.PingInterval > 0 && w.PingInterval >= w.PongWait {
		errs = append(errs, "websocket.ping_interval must be less than websocket.pong_wait")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateGames(g GamesConfig) error {
	var errs []string
	if g.TickRate < 1 || g.TickRate > 240 {
		errs = append(errs, fmt.Sprintf("games.tick_rate must be 1-240, got %d", g.TickRate))
	}
	if g.BroadcastEvery < 1 {
		errs = append(errs, fmt.Sprintf("games.broadcast_every must be >= 1, got %d", g.BroadcastEvery))
	}
	if g.ChatHistory < 0 {
		errs = append(errs, fmt.Sprintf("games.chat_history must be >= 0, got %d", g.ChatHistory))
	}
	if g.UnoMaxSeats < 2 || g.UnoMaxSeats > 10 {
		errs = append(errs, fmt.Sprintf("games.uno_max_seats must be 2-10, got %d", g.UnoMaxSeats))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ARCADE_ prefix
	v.SetEnvPrefix("ARCADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the built-in defaults.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.ws_path", "/ws")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.max_message_size", 64*1024)
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.ping_interval", "50s")
	v.SetDefault("websocket.check_origin", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("games.tick_rate", 60)
	v.SetDefault("games.broadcast_every", 2)
	v.SetDefault("games.chat_history", 100)
	v.SetDefault("games.uno_max_seats", 10)
	v.SetDefault("games.airhockey_table", "")
}
