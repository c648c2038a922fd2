package cache

import (
	"context"
	"fmt"
	"strings"
)

// Open returns the cache selected by rawURL:
//
//	""                       file cache in dir, or no cache when dir is empty
//	"none", "off"            no cache
//	"file:///path"           file cache at /path
//	"redis://", "rediss://"  [RedisCache]
//	"mongodb://", "mongodb+srv://"  [MongoCache]
func Open(ctx context.Context, rawURL, dir string) (Cache, error) {
	switch {
	case rawURL == "":
		if dir == "" {
			return NewNullCache(), nil
		}
		return NewFileCache(dir)
	case rawURL == "none" || rawURL == "off":
		return NewNullCache(), nil
	case strings.HasPrefix(rawURL, "file://"):
		return NewFileCache(strings.TrimPrefix(rawURL, "file://"))
	case strings.HasPrefix(rawURL, "redis://"), strings.HasPrefix(rawURL, "rediss://"):
		return NewRedisCache(ctx, rawURL)
	case strings.HasPrefix(rawURL, "mongodb://"), strings.HasPrefix(rawURL, "mongodb+srv://"):
		return NewMongoCache(ctx, rawURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}
}

// Describe returns a short human-readable name for c.
func Describe(c Cache) string {
	switch c := c.(type) {
	case *FileCache:
		return "file " + c.Dir()
	case *RedisCache:
		return "redis"
	case *MongoCache:
		return "mongodb"
	case NullCache:
		return "disabled"
	default:
		return fmt.Sprintf("%T", c)
	}
}
