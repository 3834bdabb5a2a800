// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// limiterEntry holds a token bucket and the last time it was used.
type limiterEntry struct {
	limiter      *rate.Limiter
	lastSeenNano atomic.Int64
}

// RateLimiter provides per-IP token bucket rate limiting. It guards the
// generation endpoint, where every request costs one or two LLM calls.
type RateLimiter struct {
	clients   sync.Map // map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	proxyHops int
	maxAge    time.Duration
	stopCh    chan struct{}
	once      sync.Once
}

// NewRateLimiter creates a rate limiter refilling rps tokens per second
// up to burst. It starts a background goroutine to drop idle clients.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		rps:    rate.Limit(rps),
		burst:  burst,
		maxAge: 10 * time.Minute,
		stopCh: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup(time.Now())
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// TrustProxies sets how many reverse proxies in front of the server append
// to X-Forwarded-For. With 0, the default, only the TCP peer address is
// used. Call it before the limiter serves requests.
func (rl *RateLimiter) TrustProxies(hops int) *RateLimiter {
	rl.proxyHops = max(hops, 0)
	return rl
}

// Stop terminates the background cleanup goroutine. Safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := rl.clients.Load(key); ok {
		e := v.(*limiterEntry)
		e.lastSeenNano.Store(now)
		return e.limiter
	}

	e := &limiterEntry{limiter: rate.NewLimiter(rl.rps, rl.burst)}
	e.lastSeenNano.Store(now)
	actual, _ := rl.clients.LoadOrStore(key, e)
	return actual.(*limiterEntry).limiter
}

// allow checks whether the given key has a token left.
func (rl *RateLimiter) allow(key string) bool {
	return rl.limiter(key).Allow()
}

// cleanup removes clients idle for longer than maxAge.
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.clients.Range(func(key, value any) bool {
		e := value.(*limiterEntry)
		if now.Sub(time.Unix(0, e.lastSeenNano.Load())) > rl.maxAge {
			rl.clients.Delete(key)
		}
		return true
	})
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r, rl.proxyHops)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"detail":"Too many requests, slow down"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the address requests are limited by. Each trusted proxy
// appends its peer to X-Forwarded-For, so the client sits hops entries from
// the right; entries further left are client-supplied and ignored. A header
// shorter than hops means the request bypassed a proxy, so the peer address
// is used.
func clientIP(r *http.Request, hops int) string {
	if hops > 0 {
		var chain []string
		for _, v := range r.Header.Values("X-Forwarded-For") {
			for _, part := range strings.Split(v, ",") {
				chain = append(chain, strings.TrimSpace(part))
			}
		}
		if len(chain) >= hops {
			if ip := chain[len(chain)-hops]; ip != "" {
				return ip
			}
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
