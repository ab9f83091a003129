package config

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1,lte=200"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret" validate:"required,min=32"`
	BcryptCost int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	// SeedAdmin creates the bootstrap admin account at startup when no admin exists.
	SeedAdmin bool `mapstructure:"seed_admin"`
}

// RateLimitConfig bounds anonymous traffic to the register and login endpoints.
type RateLimitConfig struct {
	AuthRequestsPerMinute int `mapstructure:"auth_requests_per_minute" validate:"gte=1"`
	AuthBurst             int `mapstructure:"auth_burst" validate:"gte=1"`
}
