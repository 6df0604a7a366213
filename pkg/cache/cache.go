package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations used by the analysis layer. Values are
// JSON-encoded on write and decoded into dest on read; TryLock/Unlock back
// single-flight report regeneration.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Close() error
}

func jsonUnmarshal(raw string, dest interface{}) error {
	return json.Unmarshal([]byte(raw), dest)
}

// Key joins parts into a colon-separated cache key.
func Key(parts ...interface{}) string {
	key := ""
	for i, part := range parts {
		if i == 0 {
			key = fmt.Sprintf("%v", part)
			continue
		}
		key = fmt.Sprintf("%s:%v", key, part)
	}
	return key
}
