package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/xmigraph/pkg/cache"
	"github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/integrations"
)

const (
	appName = "xmigraph"

	// FileName is the config file name inside the config directory.
	FileName = "config.toml"

	// DefaultAddr is the API server listen address.
	DefaultAddr = ":8080"
)

// Environment variables overlaid by [Config.ApplyEnv].
const (
	EnvInstance = "LEANIX_INSTANCE"
	EnvAPIToken = "LEANIX_API_TOKEN"
	EnvCache    = "XMIGRAPH_CACHE"
	EnvAddr     = "XMIGRAPH_ADDR"
)

// Config is the complete application configuration.
type Config struct {
	LeanIX LeanIX            `toml:"leanix"`
	Cache  Cache             `toml:"cache"`
	Server Server            `toml:"server"`
	Styles map[string]string `toml:"styles"`
}

// LeanIX holds workspace credentials and request throttling.
type LeanIX struct {
	Instance  string  `toml:"instance"`
	APIToken  string  `toml:"api_token"`
	GroupKey  string  `toml:"group_key"`
	RateLimit float64 `toml:"rate_limit"` // Requests per second, 0 keeps the default
	RateBurst int     `toml:"rate_burst"`
}

// Configured reports whether both instance and token are set.
func (l LeanIX) Configured() bool {
	return l.Instance != "" && l.APIToken != ""
}

// RateLimitConfig returns the throttling settings and whether rate_limit
// overrides [integrations.DefaultRateLimit]. A missing burst defaults to
// one second of requests.
func (l LeanIX) RateLimitConfig() (integrations.RateLimitConfig, bool) {
	if l.RateLimit <= 0 {
		return integrations.DefaultRateLimit, false
	}
	burst := l.RateBurst
	if burst <= 0 {
		burst = max(int(l.RateLimit), 1)
	}
	return integrations.RateLimitConfig{RequestsPerSecond: l.RateLimit, BurstSize: burst}, true
}

// Cache selects the cache backend.
type Cache struct {
	Backend         string   `toml:"backend"`
	TTL             Duration `toml:"ttl"`
	Dir             string   `toml:"dir"`
	RedisAddr       string   `toml:"redis_addr"`
	RedisPassword   string   `toml:"redis_password"`
	RedisDB         int      `toml:"redis_db"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("90s", "24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Cache:  Cache{Backend: cache.BackendFile},
		Server: Server{Addr: DefaultAddr},
	}
}

// =============================================================================
// Loading
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/xmigraph/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, FileName), nil
}

// Load reads the configuration at path and overlays the environment.
//
// An empty path means [DefaultPath]; a missing default file is not an
// error and yields [Default]. A missing explicit path is FILE_NOT_FOUND.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return finish(Default())
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
		return finish(Default())
	case os.IsNotExist(err):
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data over [Default]. Unknown keys are rejected so
// typos surface early.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process
// environment without overriding variables that are already set. A
// missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	return nil
}

// ApplyEnv overlays non-empty environment values onto c.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.LeanIX.Instance, EnvInstance)
	set(&c.LeanIX.APIToken, EnvAPIToken)
	set(&c.Cache.Backend, EnvCache)
	set(&c.Server.Addr, EnvAddr)
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks field values. Credentials are only checked for shape
// when set; commands that need them call [LeanIX.Configured].
func (c *Config) Validate() error {
	switch strings.ToLower(c.Cache.Backend) {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.LeanIX.RateLimit < 0 || c.LeanIX.RateBurst < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "leanix rate_limit and rate_burst must not be negative")
	}
	if c.LeanIX.Instance != "" {
		if err := errors.ValidateInstance(c.LeanIX.Instance); err != nil {
			return err
		}
	}
	for typ := range c.Styles {
		if strings.TrimSpace(typ) == "" {
			return errors.New(errors.ErrCodeInvalidStyle, "style override with empty type")
		}
	}
	return nil
}

// CacheConfig converts the [cache] section into backend options. dir is
// used when no directory is configured.
func (c *Config) CacheConfig(dir string) cache.Config {
	if c.Cache.Dir != "" {
		dir = c.Cache.Dir
	}
	return cache.Config{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		},
	}
}
