// Package config loads tracker configuration from defaults, an optional YAML
// file, and BROWSETRACE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Storage struct {
	Driver    string `yaml:"driver" env:"DRIVER"`         // memory|sqlite|redis
	Path      string `yaml:"path" env:"PATH"`             // sqlite database file
	RedisAddr string `yaml:"redis_addr" env:"REDIS_ADDR"` // host:port
	RedisDB   int    `yaml:"redis_db" env:"REDIS_DB"`
}

type Config struct {
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`
	// SessionTimeout only applies when SlidingSession is set.
	SessionTimeout time.Duration `yaml:"session_timeout" env:"SESSION_TIMEOUT"`
	SessionTTL     time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	SlidingSession bool          `yaml:"sliding_session" env:"SLIDING_SESSION"`
	HTTPTimeout    time.Duration `yaml:"http_timeout" env:"HTTP_TIMEOUT"`
	Beacon         bool          `yaml:"beacon" env:"BEACON"`
	CTAClass       string        `yaml:"cta_class" env:"CTA_CLASS"`
	TextLimit      int           `yaml:"text_limit" env:"TEXT_LIMIT"`
	Storage        Storage       `yaml:"storage" envPrefix:"STORAGE_"`
}

func Default() Config {
	return Config{
		Endpoint:       "https://digitaltrackingsite.onrender.com/track",
		SessionTimeout: 30 * time.Minute,
		SessionTTL:     24 * time.Hour,
		HTTPTimeout:    10 * time.Second,
		Beacon:         true,
		CTAClass:       "cta",
		TextLimit:      50,
		Storage: Storage{
			Driver:    DriverMemory,
			Path:      "browsetrace.db",
			RedisAddr: "localhost:6379",
		},
	}
}

// Load builds the configuration. An empty path skips the YAML file.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	}
	if err := env.ParseWithOptions(&c, env.Options{Prefix: "BROWSETRACE_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint %q must be an absolute http(s) url", c.Endpoint)
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.SlidingSession && c.SessionTimeout <= 0 {
		return errors.New("session_timeout must be positive when sliding_session is enabled")
	}
	if c.TextLimit <= 0 {
		return errors.New("text_limit must be positive")
	}
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite, DriverRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverSQLite && c.Storage.Path == "" {
		return errors.New("storage.path is required for the sqlite driver")
	}
	return nil
}
