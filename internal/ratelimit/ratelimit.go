// Package ratelimit provides a small per-client request limiter backed by a
// bounded LRU cache with per-entry TTL.
//
// The window is not a sliding window: a client's first request starts a
// fixed interval, the counter lives for that interval, and expiry resets it.
// State is process-local, so in a multi-instance deployment the effective
// limit is per instance, not global.
package ratelimit

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultInterval   = time.Minute
	defaultMaxPerSlot = 5
	defaultMaxClients = 500

	// unknownClient is shared by every request that carries no forwarded-IP
	// header. Those clients end up in one bucket; a known weakness rather
	// than a security boundary.
	unknownClient = "unknown"
)

// Config controls a Limiter.
type Config struct {
	// Interval is the length of a client's counting window.
	Interval time.Duration
	// MaxPerInterval is the number of requests allowed per window.
	MaxPerInterval int
	// MaxClients bounds the number of distinct clients tracked at once;
	// least-recently-seen clients are evicted beyond that.
	MaxClients int
}

// Result is the outcome of a limit check.
type Result struct {
	Allowed bool
	// Reset is when the client may retry (meaningful mostly when denied).
	Reset time.Time
}

// Limiter counts requests per client key within a fixed interval.
type Limiter struct {
	mu       sync.Mutex
	counters *expirable.LRU[string, *int]
	interval time.Duration
	max      int
}

// New creates a Limiter. Zero config fields fall back to defaults
// (1 minute, 5 requests, 500 tracked clients).
func New(cfg Config) *Limiter {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.MaxPerInterval <= 0 {
		cfg.MaxPerInterval = defaultMaxPerSlot
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = defaultMaxClients
	}
	return &Limiter{
		counters: expirable.NewLRU[string, *int](cfg.MaxClients, nil, cfg.Interval),
		interval: cfg.Interval,
		max:      cfg.MaxPerInterval,
	}
}

// Check records a request for the client behind r and reports whether it is
// within the limit.
func (l *Limiter) Check(r *http.Request) Result {
	return l.CheckKey(ClientKey(r))
}

// CheckKey is Check for a pre-derived client key.
func (l *Limiter) CheckKey(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	reset := time.Now().Add(l.interval)

	count, ok := l.counters.Get(key)
	if !ok {
		first := 1
		l.counters.Add(key, &first)
		return Result{Allowed: true, Reset: reset}
	}

	if *count >= l.max {
		return Result{Allowed: false, Reset: reset}
	}

	*count++
	return Result{Allowed: true, Reset: reset}
}

// ClientKey derives the limiter key for a request from the forwarded-IP
// headers, falling back to "unknown" when neither is present.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// The first entry is the originating client.
		if i := strings.Index(fwd, ","); i >= 0 {
			fwd = fwd[:i]
		}
		if fwd = strings.TrimSpace(fwd); fwd != "" {
			return fwd
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return unknownClient
}
