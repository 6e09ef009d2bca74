package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "TASKHUB"

// DefaultPort is used when neither PORT nor TASKHUB_SERVER_PORT is set.
const DefaultPort = 5000

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config.yaml in the working directory
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so bind every key
	// explicitly. PORT is the conventional platform variable and is
	// accepted as an alias of server.port.
	bindings := map[string][]string{
		"server.port":                         {EnvPrefix + "_SERVER_PORT", "PORT"},
		"server.log_level":                    {EnvPrefix + "_SERVER_LOG_LEVEL"},
		"database.url":                        {EnvPrefix + "_DATABASE_URL", "DATABASE_URL"},
		"auth.jwt_secret":                     {EnvPrefix + "_AUTH_JWT_SECRET"},
		"auth.bcrypt_cost":                    {EnvPrefix + "_AUTH_BCRYPT_COST"},
		"auth.token_lifetime_minutes":         {EnvPrefix + "_AUTH_TOKEN_LIFETIME_MINUTES"},
		"auth.refresh_token_lifetime_minutes": {EnvPrefix + "_AUTH_REFRESH_TOKEN_LIFETIME_MINUTES"},
		"realtime.path":                       {EnvPrefix + "_REALTIME_PATH"},
		"realtime.send_buffer":                {EnvPrefix + "_REALTIME_SEND_BUFFER"},
		"realtime.write_wait_seconds":         {EnvPrefix + "_REALTIME_WRITE_WAIT_SECONDS"},
		"realtime.pong_wait_seconds":          {EnvPrefix + "_REALTIME_PONG_WAIT_SECONDS"},
		"realtime.max_message_bytes":          {EnvPrefix + "_REALTIME_MAX_MESSAGE_BYTES"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080) // 7 days

	v.SetDefault("realtime.path", "/socket")
	v.SetDefault("realtime.send_buffer", 64)
	v.SetDefault("realtime.write_wait_seconds", 10)
	v.SetDefault("realtime.pong_wait_seconds", 60)
	v.SetDefault("realtime.max_message_bytes", 64*1024)
}
