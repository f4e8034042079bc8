// Package config loads the client configuration from an optional file, the
// environment, and a .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. JTRACK_API_URL.
const EnvPrefix = "JTRACK"

// Storage backends.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config is the client configuration. Keys are the same in the config file and,
// upper-cased with the JTRACK_ prefix, in the environment.
type Config struct {
	APIURL        string        `mapstructure:"api_url"`
	Storage       string        `mapstructure:"storage"`
	StoragePath   string        `mapstructure:"storage_path"` // empty means ~/.jtrack/storage.json
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
	Timeout       time.Duration `mapstructure:"timeout"` // 0 means no client timeout
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		APIURL:      "http://127.0.0.1:5000",
		Storage:     StorageFile,
		RedisAddr:   "localhost:6379",
		RedisPrefix: "jtrack:",
		LogLevel:    "warn",
		LogFormat:   "console",
	}
}

// Load reads the configuration. path names a YAML/JSON/TOML file; when empty,
// jtrack.yaml is looked up in the working directory and ~/.jtrack, and a missing
// file is not an error. Environment variables override the file.
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	defaults := Defaults()
	v.SetDefault("api_url", defaults.APIURL)
	v.SetDefault("storage", defaults.Storage)
	v.SetDefault("storage_path", defaults.StoragePath)
	v.SetDefault("redis_addr", defaults.RedisAddr)
	v.SetDefault("redis_password", defaults.RedisPassword)
	v.SetDefault("redis_db", defaults.RedisDB)
	v.SetDefault("redis_prefix", defaults.RedisPrefix)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("timeout", defaults.Timeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("jtrack")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".jtrack"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile loads .env from the working directory if there is one.
func loadEnvFile() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config error: 'api_url' must be an http(s) URL, got %q", c.APIURL)
	}

	switch c.Storage {
	case StorageFile, StorageMemory:
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config error: 'redis_addr' is required when storage is redis")
		}
		if c.RedisDB < 0 {
			return fmt.Errorf("config error: 'redis_db' must be non-negative")
		}
	default:
		return fmt.Errorf("config error: 'storage' must be one of file, redis, memory, got %q", c.Storage)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: 'log_level' must be debug, info, warn, or error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("config error: 'log_format' must be json or console, got %q", c.LogFormat)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("config error: 'timeout' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// CLI flags are passed as c so that they win over the loaded configuration.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.Storage == "" {
		result.Storage = defaults.Storage
	}
	if result.StoragePath == "" {
		result.StoragePath = defaults.StoragePath
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.RedisPassword == "" {
		result.RedisPassword = defaults.RedisPassword
	}
	if result.RedisDB == 0 {
		result.RedisDB = defaults.RedisDB
	}
	if result.RedisPrefix == "" {
		result.RedisPrefix = defaults.RedisPrefix
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	return result
}
