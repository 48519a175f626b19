package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	StorageBackendDisk     = "disk"
	StorageBackendMemory   = "memory"
	StorageBackendRedis    = "redis"
	StorageBackendPostgres = "postgres"

	DefaultStorageKey = "workouts"
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MetricsHost string `toml:"metrics_host"`
	MetricsPort string `toml:"metrics_port"`
	Environment string `toml:"environment"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// workout log durability
	StorageBackend    string `toml:"storage_backend"`
	StorageKey        string `toml:"storage_key"`
	DiskStoragePath   string `toml:"disk_storage_path"`
	MemoryCacheSizeMB int    `toml:"memory_cache_size_mb"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// postgres
	PostgresHost     string `toml:"postgres_host"`
	PostgresPort     string `toml:"postgres_port"`
	PostgresDBName   string `toml:"postgres_db_name"`
	DBTracingEnabled bool   `toml:"db_tracing_enabled"`

	// progress
	TimeZone string `toml:"time_zone"`

	// http
	AddRateLimitPerMin int      `toml:"add_rate_limit_per_min"`
	AllowedOrigins     []string `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("env [%s] not present in config", env)
	}

	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env,
// with defaults applied and values validated.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid [%s] config: %w", env, err)
	}

	return cfg, nil
}

func (c *Config) SetDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.MetricsHost == "" {
		c.MetricsHost = "localhost"
	}
	if c.MetricsPort == "" {
		c.MetricsPort = "2112"
	}
	if c.StorageBackend == "" {
		c.StorageBackend = StorageBackendDisk
	}
	c.StorageBackend = strings.ToLower(c.StorageBackend)
	if c.StorageKey == "" {
		c.StorageKey = DefaultStorageKey
	}
	if c.DiskStoragePath == "" {
		c.DiskStoragePath = "./data"
	}
	if c.MemoryCacheSizeMB <= 0 {
		c.MemoryCacheSizeMB = 100
	}
	if c.RedisHost == "" {
		c.RedisHost = "localhost"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.PostgresHost == "" {
		c.PostgresHost = "localhost"
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.PostgresDBName == "" {
		c.PostgresDBName = "workoutlog"
	}
	if c.TimeZone == "" {
		c.TimeZone = "Local"
	}
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageBackendDisk, StorageBackendMemory, StorageBackendRedis, StorageBackendPostgres:
	default:
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.AddRateLimitPerMin < 0 {
		return errors.New("add rate limit per minute cannot be negative")
	}
	return nil
}
