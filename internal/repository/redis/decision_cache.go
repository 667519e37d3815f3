package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"
)

const defaultDecisionPrefix = "access:decisions"

// DecisionCache caches the resolved permission set for a (user, scope-key)
// pair. Entries are short-lived; assignment mutations delete the exact
// key, role-wide permission edits are bounded by the TTL.
type DecisionCache struct {
	client *red.Client
	prefix string
	ttl    time.Duration
}

// NewDecisionCache constructs a Redis-backed decision cache.
func NewDecisionCache(client *red.Client, keyPrefix string, ttl time.Duration) *DecisionCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultDecisionPrefix
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &DecisionCache{client: client, prefix: prefix, ttl: ttl}
}

// Get fetches the cached permission names. A miss is reported via the ok
// flag, not an error.
func (c *DecisionCache) Get(ctx context.Context, userID, scopeKey string) ([]string, bool, error) {
	value, err := c.client.Get(ctx, c.key(userID, scopeKey)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get decision: %w", err)
	}

	var permissions []string
	if err := json.Unmarshal([]byte(value), &permissions); err != nil {
		return nil, false, fmt.Errorf("decode cached decision: %w", err)
	}

	return permissions, true, nil
}

// Set stores the permission names with the configured TTL. An empty set
// is cached too so "no assignment" does not re-query storage every call.
func (c *DecisionCache) Set(ctx context.Context, userID, scopeKey string, permissions []string) error {
	if permissions == nil {
		permissions = []string{}
	}

	encoded, err := json.Marshal(permissions)
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}

	if err := c.client.Set(ctx, c.key(userID, scopeKey), encoded, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set decision: %w", err)
	}

	return nil
}

// Invalidate drops the cached decision for one (user, scope-key) pair.
func (c *DecisionCache) Invalidate(ctx context.Context, userID, scopeKey string) error {
	if err := c.client.Del(ctx, c.key(userID, scopeKey)).Err(); err != nil {
		return fmt.Errorf("redis del decision: %w", err)
	}
	return nil
}

func (c *DecisionCache) key(userID, scopeKey string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, userID, scopeKey)
}
