package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Loader defines the interface for loading configuration.
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using Viper.
type ViperLoader struct {
	configFile string
	envPrefix  string
}

// NewViperLoader creates a new ViperLoader. configFile may be empty;
// envPrefix is the environment variable prefix (e.g. "UGC").
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
	}
}

// Load loads configuration with precedence: ENV > file > defaults.
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	l.setDefaults(v, defaults)

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	// Environment variables override file config through explicit bindings.
	v.SetEnvPrefix(l.envPrefix)
	l.bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded configuration for obvious misconfiguration.
func (l *ViperLoader) Validate(cfg *Config) error {
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be in (0, 65535], got %d", cfg.HTTP.Port)
	}
	if cfg.Mongo.URL == "" {
		return fmt.Errorf("mongo.url is required")
	}
	if cfg.Mongo.Database == "" {
		return fmt.Errorf("mongo.database is required")
	}
	return nil
}

func (l *ViperLoader) setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("service.name", defaults.Service.Name)
	v.SetDefault("service.environment", defaults.Service.Environment)
	v.SetDefault("http.port", defaults.HTTP.Port)
	v.SetDefault("http.read_timeout", defaults.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", defaults.HTTP.WriteTimeout)
	v.SetDefault("http.idle_timeout", defaults.HTTP.IdleTimeout)
	v.SetDefault("mongo.url", defaults.Mongo.URL)
	v.SetDefault("mongo.database", defaults.Mongo.Database)
	v.SetDefault("mongo.connect_timeout", defaults.Mongo.ConnectTimeout)
	v.SetDefault("mongo.operation_timeout", defaults.Mongo.OperationTimeout)
	v.SetDefault("auth.jwt_public_key_path", defaults.Auth.JWTPublicKeyPath)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
}

// bindEnvVars explicitly binds environment variables for nested keys.
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("service.name", l.prefixedEnv("SERVICE_NAME"))
	v.BindEnv("service.environment", l.prefixedEnv("SERVICE_ENVIRONMENT"))
	v.BindEnv("http.port", l.prefixedEnv("HTTP_PORT"))
	v.BindEnv("http.read_timeout", l.prefixedEnv("HTTP_READ_TIMEOUT"))
	v.BindEnv("http.write_timeout", l.prefixedEnv("HTTP_WRITE_TIMEOUT"))
	v.BindEnv("http.idle_timeout", l.prefixedEnv("HTTP_IDLE_TIMEOUT"))
	v.BindEnv("mongo.url", l.prefixedEnv("MONGO_URL"))
	v.BindEnv("mongo.database", l.prefixedEnv("MONGO_DATABASE"))
	v.BindEnv("mongo.connect_timeout", l.prefixedEnv("MONGO_CONNECT_TIMEOUT"))
	v.BindEnv("mongo.operation_timeout", l.prefixedEnv("MONGO_OPERATION_TIMEOUT"))
	v.BindEnv("auth.jwt_public_key_path", l.prefixedEnv("JWT_PUBLIC_KEY_PATH"))
	v.BindEnv("log.level", l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("log.format", l.prefixedEnv("LOG_FORMAT"))
}

func (l *ViperLoader) prefixedEnv(name string) string {
	if l.envPrefix == "" {
		return name
	}
	return l.envPrefix + "_" + name
}
