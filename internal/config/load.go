package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name, e.g.
// TASKBOARD_SERVER_PORT or TASKBOARD_AUTH_JWT_SECRET.
const EnvPrefix = "TASKBOARD"

// keys without defaults still need binding so Unmarshal sees their env values.
var requiredKeys = []string{
	"server.port",
	"database.url",
	"auth.jwt_secret",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.seed_admin", true)
	v.SetDefault("rate_limit.auth_requests_per_minute", 20)
	v.SetDefault("rate_limit.auth_burst", 20)
}

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take precedence.
func Load() (*Config, error) {
	return load("config", ".")
}

// LoadFile reads configuration from the named YAML file plus the environment.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return unmarshalAndValidate(v)
}

func load(name, dir string) (*Config, error) {
	v := newViper()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return unmarshalAndValidate(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range requiredKeys {
		_ = v.BindEnv(key)
	}

	return v
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
