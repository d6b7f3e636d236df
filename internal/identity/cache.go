package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedDirectory fronts another directory with a redis cache so a join
// burst does not hammer the profile table.
type CachedDirectory struct {
	inner Directory
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedDirectory(inner Directory, rdb *redis.Client, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(id string) string {
	return fmt.Sprintf("profile:%s", id)
}

func (d *CachedDirectory) Lookup(ctx context.Context, id string) (Profile, error) {
	raw, err := d.rdb.Get(ctx, cacheKey(id)).Result()
	if err == nil {
		var p Profile
		if jsonErr := json.Unmarshal([]byte(raw), &p); jsonErr == nil {
			return p, nil
		}
		// Unparseable cache entry: fall through and rewrite it.
	}

	// A cache miss, redis trouble, and a garbled entry all read the same
	// way: go to the source. A cache problem must never block a join.
	p, err := d.inner.Lookup(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	if data, jsonErr := json.Marshal(p); jsonErr == nil {
		_ = d.rdb.Set(ctx, cacheKey(id), data, d.ttl).Err()
	}
	return p, nil
}

// Invalidate drops the cached entry, used after a profile upsert.
func (d *CachedDirectory) Invalidate(ctx context.Context, id string) {
	_ = d.rdb.Del(ctx, cacheKey(id)).Err()
}
