// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache starts an in-memory Valkey and returns a cache bound to it.
func newTestCache(t *testing.T, ttl time.Duration) (*PageCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewPageCache(client, ttl), mr
}

func TestProjectKey(t *testing.T) {
	assert.Equal(t, "preview:42", ProjectKey(42))
}

func TestPageCache_SetGet(t *testing.T) {
	pc, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok := pc.Get(ctx, 1)
	assert.False(t, ok, "empty cache should miss")

	html := []byte("<html><body>preview</body></html>")
	pc.Set(ctx, 1, html)

	got, ok := pc.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, html, got)

	_, ok = pc.Get(ctx, 2)
	assert.False(t, ok)
}

func TestPageCache_TTL(t *testing.T) {
	pc, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	pc.Set(ctx, 7, []byte("x"))
	assert.Equal(t, 30*time.Second, mr.TTL(ProjectKey(7)))

	mr.FastForward(31 * time.Second)
	_, ok := pc.Get(ctx, 7)
	assert.False(t, ok, "entry should expire after TTL")
}

func TestPageCache_DefaultTTL(t *testing.T) {
	pc, mr := newTestCache(t, 0)
	pc.Set(context.Background(), 1, []byte("x"))
	assert.Equal(t, DefaultPageTTL, mr.TTL(ProjectKey(1)))
}

func TestPageCache_Invalidate(t *testing.T) {
	pc, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	pc.Set(ctx, 3, []byte("a"))
	pc.Set(ctx, 4, []byte("b"))
	pc.Invalidate(ctx, 3)

	assert.False(t, mr.Exists(ProjectKey(3)))
	assert.True(t, mr.Exists(ProjectKey(4)))
}

func TestPageCache_InvalidateAll(t *testing.T) {
	pc, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	for i := int64(1); i <= 1200; i++ {
		pc.Set(ctx, i, []byte(fmt.Sprintf("page %d", i)))
	}
	mr.Set("unrelated", "keep")

	assert.Equal(t, 1200, pc.InvalidateAll(ctx))
	assert.False(t, mr.Exists(ProjectKey(1200)))
	assert.False(t, mr.Exists(ProjectKey(1)))
	assert.True(t, mr.Exists("unrelated"))
}

func TestPageCache_ErrorsAreMisses(t *testing.T) {
	pc, mr := newTestCache(t, time.Minute)
	mr.Close()

	ctx := context.Background()
	pc.Set(ctx, 1, []byte("x"))
	_, ok := pc.Get(ctx, 1)
	assert.False(t, ok)
}

func TestPageCache_NilIsNoop(t *testing.T) {
	var pc *PageCache
	ctx := context.Background()

	pc.Set(ctx, 1, []byte("x"))
	pc.Invalidate(ctx, 1)
	assert.Zero(t, pc.InvalidateAll(ctx))
	_, ok := pc.Get(ctx, 1)
	assert.False(t, ok)
}

func TestConnectValkey(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := ConnectValkey(context.Background(), mr.Host(), mr.Port(), "")
	require.NoError(t, err)
	client.Close()
}

func TestConnectValkey_Unreachable(t *testing.T) {
	_, err := ConnectValkey(context.Background(), "127.0.0.1", "1", "")
	assert.Error(t, err)
}
