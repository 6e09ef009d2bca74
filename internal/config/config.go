package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Realtime RealtimeConfig `mapstructure:"realtime" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=44640"`
}

// RealtimeConfig contains the socket relay settings.
type RealtimeConfig struct {
	// Path is the HTTP route that upgrades to a websocket.
	Path string `mapstructure:"path" validate:"required,startswith=/"`

	// SendBuffer is the per-connection outbound queue length. A recipient
	// whose queue is full misses the broadcast.
	SendBuffer int `mapstructure:"send_buffer" validate:"required,gt=0"`

	WriteWaitSeconds int   `mapstructure:"write_wait_seconds" validate:"required,gt=0"`
	PongWaitSeconds  int   `mapstructure:"pong_wait_seconds"  validate:"required,gt=1"`
	MaxMessageBytes  int64 `mapstructure:"max_message_bytes"  validate:"required,gt=0"`
}

// WriteWait returns the write deadline applied to each socket write.
func (c RealtimeConfig) WriteWait() time.Duration {
	return time.Duration(c.WriteWaitSeconds) * time.Second
}

// PongWait returns how long a connection may stay silent before it is dropped.
func (c RealtimeConfig) PongWait() time.Duration {
	return time.Duration(c.PongWaitSeconds) * time.Second
}

// PingPeriod returns the ping interval, kept below PongWait so a healthy
// peer always answers in time.
func (c RealtimeConfig) PingPeriod() time.Duration {
	return c.PongWait() * 9 / 10
}
