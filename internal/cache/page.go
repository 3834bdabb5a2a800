// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed cache for assembled preview pages.
// A preview is built from the stored html, css and js of a project; the
// result is kept in Valkey so repeated previews skip the DB query and the
// HTML assembly.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached previews.
	pageKeyPrefix = "preview:"

	// DefaultPageTTL is how long an assembled preview stays cached.
	DefaultPageTTL = 5 * time.Minute

	deleteBatch = 500
)

// PageCache manages preview page caching in Valkey. A nil *PageCache is
// valid and behaves as an always-missing cache, so callers can run
// without Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// ProjectKey returns the cache key for a project's preview.
func ProjectKey(id int64) string {
	return pageKeyPrefix + strconv.FormatInt(id, 10)
}

// Get retrieves a cached preview. Errors are logged and reported as a miss.
func (pc *PageCache) Get(ctx context.Context, id int64) ([]byte, bool) {
	if pc == nil {
		return nil, false
	}
	val, err := pc.client.Get(ctx, ProjectKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "project_id", id, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "project_id", id)
	return val, true
}

// Set stores an assembled preview with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, id int64, html []byte) {
	if pc == nil {
		return
	}
	if err := pc.client.Set(ctx, ProjectKey(id), html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "project_id", id, "error", err)
	}
}

// Invalidate removes a project's preview. Called after update and delete.
func (pc *PageCache) Invalidate(ctx context.Context, id int64) {
	if pc == nil {
		return
	}
	if err := pc.client.Del(ctx, ProjectKey(id)).Err(); err != nil {
		slog.Warn("page cache invalidate error", "project_id", id, "error", err)
		return
	}
	slog.Debug("page cache invalidated", "project_id", id)
}

// InvalidateAll removes every cached preview. Keys are collected over the
// whole SCAN first and deleted afterwards, since deleting mid-scan can make
// the cursor skip keys.
func (pc *PageCache) InvalidateAll(ctx context.Context) int {
	if pc == nil {
		return 0
	}
	var keys []string
	iter := pc.client.Scan(ctx, 0, pageKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("page cache scan error", "error", err)
		return 0
	}

	var deleted int
	for start := 0; start < len(keys); start += deleteBatch {
		batch := keys[start:min(start+deleteBatch, len(keys))]
		n, err := pc.client.Del(ctx, batch...).Result()
		if err != nil {
			slog.Warn("page cache bulk delete error", "error", err)
			continue
		}
		deleted += int(n)
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
	return deleted
}
