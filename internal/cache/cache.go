package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ppiankov/scribedesk/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

const keyPrefix = "scribedesk:v1:"

// Namespaces for cached artefacts
const (
	NamespaceTranscript = "transcript" // audio bytes + model + language
	NamespaceDraft      = "draft"      // transcript + provider + model
)

// Key hashes the parts into a namespaced cache key.
// Parts are length-prefixed so ("ab","c") and ("a","bc") differ.
func Key(namespace string, parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write(p)
	}
	return keyPrefix + namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

// New builds the backend named in cfg. A disabled cache returns nil, nil;
// callers treat a nil Cache as "no caching".
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "memory":
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), nil
	case "disk":
		return NewDiskCache(cfg.Dir, cfg.DiskTTL), nil
	case "layered", "":
		return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL), nil
	case "redis":
		return NewRedisCache(cfg.Redis, cfg.DiskTTL)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: memory, disk, layered, redis)", cfg.Backend)
	}
}
