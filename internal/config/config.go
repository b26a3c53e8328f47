// Package config provides configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"remit-pricing/internal/errors"
	"remit-pricing/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Storage selects and configures the reference data backend
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Cache contains reference data cache configuration
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Engine contains resolution settings
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`

	ReadTimeoutSeconds  int `json:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `json:"write_timeout_seconds" yaml:"write_timeout_seconds"`

	// CORSOrigins lists allowed origins; empty disables CORS headers
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// StorageConfig contains storage settings
type StorageConfig struct {
	// Backend is memory or postgres
	Backend string `json:"backend" yaml:"backend"`

	// SeedFile loads the memory backend (.hcl, .yaml, .json)
	SeedFile string `json:"seed_file" yaml:"seed_file"`

	DatabaseURL string `json:"database_url" yaml:"database_url"`
	MaxConns    int32  `json:"max_conns" yaml:"max_conns"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Backend is memory or redis
	Backend string `json:"backend" yaml:"backend"`

	TTLSeconds int `json:"ttl_seconds" yaml:"ttl_seconds"`
	MaxEntries int `json:"max_entries" yaml:"max_entries"`

	RedisAddr     string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db"`
}

// EngineConfig contains resolution settings
type EngineConfig struct {
	// ResolveTimeoutMillis bounds one resolution; 0 disables the bound
	ResolveTimeoutMillis int `json:"resolve_timeout_millis" yaml:"resolve_timeout_millis"`
}

// ReadTimeout returns the server read timeout
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// TTL returns the cache entry lifetime
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// ResolveTimeout returns the engine deadline
func (e EngineConfig) ResolveTimeout() time.Duration {
	return time.Duration(e.ResolveTimeoutMillis) * time.Millisecond
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 10,
		},
		Storage: StorageConfig{
			Backend:  "memory",
			MaxConns: 20,
		},
		Cache: CacheConfig{
			Enabled:    false,
			Backend:    "memory",
			TTLSeconds: 300,
			MaxEntries: 10000,
			RedisAddr:  "localhost:6379",
		},
		Engine: EngineConfig{
			ResolveTimeoutMillis: 5000,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a JSON or YAML file. A missing file yields
// the defaults. Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, config); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
	default:
		return nil, errors.Wrap(errors.TypeConfig, "failed to read config file", err).
			WithContext("path", path)
	}

	config.ApplyEnv()
	return config, nil
}

func decode(path string, data []byte, config *Config) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".json", "":
		err = json.Unmarshal(data, config)
	default:
		return errors.Newf(errors.TypeConfig, "unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return errors.Wrap(errors.TypeConfig, "failed to parse config file", err).
			WithContext("path", path)
	}
	return nil
}

// ApplyEnv overrides fields from the environment
func (c *Config) ApplyEnv() {
	c.Server.Addr = envOrDefault("PRICING_ADDR", c.Server.Addr)
	c.Server.CORSOrigins = envCSV("PRICING_CORS_ORIGINS", c.Server.CORSOrigins)

	c.Storage.Backend = envOrDefault("PRICING_STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.SeedFile = envOrDefault("PRICING_SEED_FILE", c.Storage.SeedFile)
	c.Storage.DatabaseURL = envOrDefault("DATABASE_URL", c.Storage.DatabaseURL)
	c.Storage.MaxConns = int32(envInt("PRICING_DB_MAX_CONNS", int(c.Storage.MaxConns)))

	c.Cache.Enabled = envBool("PRICING_CACHE_ENABLED", c.Cache.Enabled)
	c.Cache.Backend = envOrDefault("PRICING_CACHE_BACKEND", c.Cache.Backend)
	c.Cache.TTLSeconds = envInt("PRICING_CACHE_TTL_SECONDS", c.Cache.TTLSeconds)
	c.Cache.RedisAddr = envOrDefault("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = envOrDefault("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = envInt("REDIS_DB", c.Cache.RedisDB)

	c.Engine.ResolveTimeoutMillis = envInt("PRICING_RESOLVE_TIMEOUT_MILLIS", c.Engine.ResolveTimeoutMillis)

	c.Logging.Level = envOrDefault("PRICING_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = envOrDefault("PRICING_LOG_FORMAT", c.Logging.Format)
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.Config("storage.database_url is required for the postgres backend")
		}
	default:
		return errors.Config(fmt.Sprintf("unknown storage backend %q", c.Storage.Backend))
	}

	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case "memory":
		case "redis":
			if c.Cache.RedisAddr == "" {
				return errors.Config("cache.redis_addr is required for the redis backend")
			}
		default:
			return errors.Config(fmt.Sprintf("unknown cache backend %q", c.Cache.Backend))
		}
		if c.Cache.TTLSeconds <= 0 {
			return errors.Config("cache.ttl_seconds must be positive")
		}
	}

	if c.Engine.ResolveTimeoutMillis < 0 {
		return errors.Config("engine.resolve_timeout_millis must not be negative")
	}
	if c.Server.Addr == "" {
		return errors.Config("server.addr is required")
	}
	return nil
}

// Save saves configuration to a file, as YAML or JSON by extension
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var (
	globalConfig = Default()
	globalMu     sync.RWMutex
)

// Get returns the global configuration
func Get() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = config
}
