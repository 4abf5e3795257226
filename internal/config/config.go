// Package config loads service configuration with precedence
// ENV > file > defaults, in the UGC_ environment namespace.
package config

import "time"

// Config is the root configuration structure for the service.
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServiceConfig configures service identity metadata.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// HTTPConfig configures the public API server.
type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// MongoConfig configures the document store connection.
type MongoConfig struct {
	URL              string        `mapstructure:"url"`
	Database         string        `mapstructure:"database"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// AuthConfig configures token verification. Issuance lives in the external
// auth service.
type AuthConfig struct {
	JWTPublicKeyPath string `mapstructure:"jwt_public_key_path"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "ugc-api",
			Environment: "development",
		},
		HTTP: HTTPConfig{
			Port:         8000,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Mongo: MongoConfig{
			URL:              "mongodb://localhost:27017",
			Database:         "movies",
			ConnectTimeout:   5 * time.Second,
			OperationTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			JWTPublicKeyPath: "keys/public_key.pem",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
