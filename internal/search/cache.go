package search

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// QueryCache remembers answered queries per user for a fixed TTL. A
// secondary per-user list records the keys in creation order; when it grows
// past the cap the oldest entry is evicted from both the list and the cache.
//
// The value set and the list append are two separate Redis commands, so a
// concurrent request can briefly observe one without the other. The worst
// case is an entry that expires by TTL instead of eviction, which is
// acceptable here.
type QueryCache struct {
	rdb        *redis.Client
	ttl        time.Duration
	maxPerUser int
}

// NewQueryCache creates a QueryCache.
func NewQueryCache(rdb *redis.Client, ttl time.Duration, maxPerUser int) *QueryCache {
	return &QueryCache{rdb: rdb, ttl: ttl, maxPerUser: maxPerUser}
}

// queryKey derives the cache key from the user identity and a hash of the
// raw query text.
func queryKey(userID uint, query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("user:%d:query:%x", userID, sum[:16])
}

func listKey(userID uint) string {
	return fmt.Sprintf("user:%d:queries", userID)
}

// Get returns the cached result for (userID, query), or found=false on a
// miss. Redis errors are treated as misses so the pipeline still runs.
func (c *QueryCache) Get(ctx context.Context, userID uint, query string) (*Result, bool) {
	raw, err := c.rdb.Get(ctx, queryKey(userID, query)).Result()
	if err != nil {
		return nil, false
	}
	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false
	}
	return &result, true
}

// Set stores the result under the query key, appends the key to the user's
// query list, and evicts the oldest entries beyond the per-user cap.
func (c *QueryCache) Set(ctx context.Context, userID uint, query string, result *Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cached result: %w", err)
	}

	key := queryKey(userID, query)
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("store cached result: %w", err)
	}

	lk := listKey(userID)
	if err := c.rdb.RPush(ctx, lk, key).Err(); err != nil {
		return fmt.Errorf("record cache key: %w", err)
	}

	length, err := c.rdb.LLen(ctx, lk).Result()
	if err != nil {
		return fmt.Errorf("read cache list length: %w", err)
	}
	for length > int64(c.maxPerUser) {
		oldest, err := c.rdb.LPop(ctx, lk).Result()
		if err != nil {
			break
		}
		c.rdb.Del(ctx, oldest)
		length--
	}

	return c.rdb.Expire(ctx, lk, c.ttl).Err()
}
