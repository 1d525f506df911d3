package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jengzang/greenguardian-backend-go/internal/kv"
)

// box is the stored envelope; ExpiresAt is unix milliseconds
type box struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt int64           `json:"expiresAt"`
}

// TTLCache stores JSON values on a kv.Store with a fixed expiry.
// Expired or undecodable entries are removed when read; there is no sweeper.
type TTLCache struct {
	store kv.Store
	now   func() time.Time
}

// New creates a cache over store
func New(store kv.Store) *TTLCache {
	return &TTLCache{store: store, now: time.Now}
}

// WithClock replaces the time source, for tests
func (c *TTLCache) WithClock(now func() time.Time) *TTLCache {
	c.now = now
	return c
}

// Set stores value under key until now+ttl
func (c *TTLCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	data, err := json.Marshal(box{Value: raw, ExpiresAt: c.now().Add(ttl).UnixMilli()})
	if err != nil {
		return fmt.Errorf("failed to encode cache box: %w", err)
	}
	return c.store.SetItem(ctx, key, string(data))
}

// Get decodes a fresh value into dst. hit is false when the key is absent or expired.
func (c *TTLCache) Get(ctx context.Context, key string, dst interface{}) (hit bool, err error) {
	raw, ok, err := c.store.GetItem(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	var b box
	if err := json.Unmarshal([]byte(raw), &b); err != nil || b.ExpiresAt <= c.now().UnixMilli() {
		return false, c.store.RemoveItem(ctx, key)
	}
	if err := json.Unmarshal(b.Value, dst); err != nil {
		return false, c.store.RemoveItem(ctx, key)
	}
	return true, nil
}
