package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/tobyh/campussync/internal/db"
)

// Config holds the full service configuration.
type Config struct {
	Database db.Config

	ServerAddr string

	// IdempotencyTTL bounds how long a payload hash suppresses
	// resubmissions.
	IdempotencyTTL time.Duration
	// RedisAddr, when set, switches the idempotency guard to the shared
	// Redis backend for multi-instance deployments.
	RedisAddr string

	// DefaultTenant applies when a webhook carries no tenant header.
	DefaultTenant string

	// Source names the originating system in event identities.
	Source string

	LogLevel    string
	Environment string
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Database:       db.DefaultConfig(),
		ServerAddr:     ":8080",
		IdempotencyTTL: 5 * time.Minute,
		Source:         "crm",
		LogLevel:       "info",
		Environment:    "development",
	}
}

// Load reads config.yaml from configPath, then applies environment
// overrides (prefix SYNC, e.g. SYNC_DATABASE_HOST).
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("SYNC")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("idempotency.ttl")
	v.BindEnv("redis.addr")
	v.BindEnv("tenant.default")
	v.BindEnv("source.name")
	v.BindEnv("log.level")
	v.BindEnv("log.environment")

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.ServerAddr = v.GetString("server.addr")
	}
	if v.IsSet("idempotency.ttl") {
		cfg.IdempotencyTTL = v.GetDuration("idempotency.ttl")
	}
	if v.IsSet("redis.addr") {
		cfg.RedisAddr = v.GetString("redis.addr")
	}
	if v.IsSet("tenant.default") {
		cfg.DefaultTenant = v.GetString("tenant.default")
	}
	if v.IsSet("source.name") {
		cfg.Source = v.GetString("source.name")
	}
	if v.IsSet("log.level") {
		cfg.LogLevel = v.GetString("log.level")
	}
	if v.IsSet("log.environment") {
		cfg.Environment = v.GetString("log.environment")
	}

	if cfg.IdempotencyTTL <= 0 {
		return cfg, fmt.Errorf("idempotency.ttl must be positive, got %s", cfg.IdempotencyTTL)
	}

	return cfg, nil
}
