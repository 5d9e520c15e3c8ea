// Package config provides runtime configuration values for the service and the cart CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Config holds configuration knobs for the HTTP server, the store and the cart CLI.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
	StoreBackend    string        `yaml:"store_backend"`
	MongoURI        string        `yaml:"mongo_uri"`
	MongoDatabase   string        `yaml:"mongo_database"`
	MongoTimeout    time.Duration `yaml:"mongo_timeout"`
	APIURL          string        `yaml:"api_url"`
	CartFile        string        `yaml:"cart_file"`
}

func defaults() Config {
	return Config{
		HTTPAddr:        ":8080",
		ShutdownTimeout: 15 * time.Second,
		LogLevel:        "info",
		StoreBackend:    BackendMemory,
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "storefront",
		MongoTimeout:    5 * time.Second,
		APIURL:          "http://localhost:8080",
		CartFile:        defaultCartFile(),
	}
}

func defaultCartFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "storefront", "cart.json")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, def time.Duration) time.Duration {
	return time.Duration(atoienv(key, int(def/time.Millisecond))) * time.Millisecond
}

func durenvs(key string, def time.Duration) time.Duration {
	return time.Duration(atoienv(key, int(def/time.Second))) * time.Second
}

func applyEnv(c Config) Config {
	c.HTTPAddr = getenv("HTTP_ADDR", c.HTTPAddr)
	c.ShutdownTimeout = durenvs("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.StoreBackend = getenv("STORE_BACKEND", c.StoreBackend)
	c.MongoURI = getenv("MONGO_URI", c.MongoURI)
	c.MongoDatabase = getenv("MONGO_DATABASE", c.MongoDatabase)
	c.MongoTimeout = durenvms("MONGO_TIMEOUT_MS", c.MongoTimeout)
	c.APIURL = getenv("API_URL", c.APIURL)
	c.CartFile = getenv("CART_FILE", c.CartFile)
	return c
}

// Load collects configuration from environment with defaults. When
// CONFIG_FILE names a YAML file its values sit between the defaults and
// the environment.
func Load() (Config, error) {
	c := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		if c, err = LoadFile(path, c); err != nil {
			return Config{}, err
		}
	}
	c = applyEnv(c)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFile overlays the YAML document at path onto base.
func LoadFile(path string, base Config) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, &base); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return base, nil
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendMongo:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}
