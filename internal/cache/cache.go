// Package cache keeps hot feed pages in redis so scroll traffic doesn't
// hammer postgres. Every method is safe on a nil *FeedCache: no redis, no
// caching, same answers.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deephealth-lab/community/internal/models"
)

const (
	genKey     = "feed:gen"
	defaultTTL = 30 * time.Second
)

type FeedCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to redis at addr. An empty addr disables caching entirely
// (nil cache returned, nil error).
func New(ctx context.Context, addr, password string) (*FeedCache, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Println("✅ Feed cache connected")
	return &FeedCache{rdb: rdb, ttl: defaultTTL}, nil
}

// pageKey folds the current generation into the key, so Invalidate only has
// to bump one counter instead of scanning for feed:* keys.
func (c *FeedCache) pageKey(ctx context.Context, sort, filter string, page, pageSize int) string {
	gen, err := c.rdb.Get(ctx, genKey).Int64()
	if err != nil && err != redis.Nil {
		gen = -1 // unknown generation, key will simply miss
	}
	return fmt.Sprintf("feed:%d:%s:%s:%d:%d", gen, sort, filter, page, pageSize)
}

// GetPage returns a cached page, if present.
func (c *FeedCache) GetPage(ctx context.Context, sort, filter string, page, pageSize int) (*models.FeedPage, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.pageKey(ctx, sort, filter, page, pageSize)).Bytes()
	if err != nil {
		return nil, false
	}
	var fp models.FeedPage
	if err := json.Unmarshal(raw, &fp); err != nil {
		return nil, false
	}
	return &fp, true
}

// SetPage stores a page under the current generation.
func (c *FeedCache) SetPage(ctx context.Context, sort, filter string, page, pageSize int, fp models.FeedPage) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(fp)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.pageKey(ctx, sort, filter, page, pageSize), raw, c.ttl).Err(); err != nil {
		log.Printf("feed cache set failed: %v", err)
	}
}

// Invalidate drops all cached pages by advancing the generation counter.
// Called after any post, reaction or comment write.
func (c *FeedCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Incr(ctx, genKey).Err(); err != nil {
		log.Printf("feed cache invalidate failed: %v", err)
	}
}

// Close releases the redis connection.
func (c *FeedCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
