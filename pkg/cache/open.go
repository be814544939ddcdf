package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend string // file (default), redis, mongo or none
	Dir     string // file
	Redis   RedisOptions
	Mongo   MongoOptions
}

// Open creates the configured backend.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory configured")
		}
		return NewFileCache(cfg.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, cfg.Redis)
	case BackendMongo:
		return NewMongoCache(ctx, cfg.Mongo)
	case BackendNone, "null", "off":
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
