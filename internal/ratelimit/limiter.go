// Package ratelimit implements a fixed-window request limiter keyed by
// client identity. Each Limiter owns its entry table, so independent route
// groups (authentication vs general API) can be throttled separately for
// the same client.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// DefaultMessage is used when a Config carries no custom rejection text.
const DefaultMessage = "Too many requests, please try again later."

// Config describes one fixed-window budget.
type Config struct {
	Window      time.Duration
	MaxRequests int
	Message     string

	// OnReject, when set, is invoked for every request rejected by the
	// middleware. Used to bump rejection metrics.
	OnReject func()
}

// Info reports the remaining budget after an admitted request, for
// observability headers.
type Info struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitedError is returned when a client exceeds its window budget.
type RateLimitedError struct {
	RetryAfter int
	Message    string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %ds", e.RetryAfter)
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter tracks request counts per client key in fixed time windows. The
// zero value is not usable; construct with NewLimiter.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewLimiter constructs a Limiter for one route group.
func NewLimiter(cfg Config) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.Message == "" {
		cfg.Message = DefaultMessage
	}
	return &Limiter{
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Admit records one request for key and reports whether it fits the
// current window. Rejected requests do not advance the counter, so
// hammering a closed window never extends the lockout.
func (l *Limiter) Admit(key string) (Info, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{resetAt: now.Add(l.cfg.Window)}
		l.entries[key] = e
	}

	// The window restarts relative to the first request after expiry,
	// not on a fixed clock boundary.
	if !now.Before(e.resetAt) {
		e.count = 0
		e.resetAt = now.Add(l.cfg.Window)
	}

	if e.count >= l.cfg.MaxRequests {
		retryAfter := int(math.Ceil(e.resetAt.Sub(now).Seconds()))
		return Info{}, &RateLimitedError{RetryAfter: retryAfter, Message: l.cfg.Message}
	}

	e.count++
	return Info{
		Limit:     l.cfg.MaxRequests,
		Remaining: l.cfg.MaxRequests - e.count,
		ResetAt:   e.resetAt,
	}, nil
}

// Sweep deletes entries whose window has already expired. It takes the
// same lock as Admit, so it never races a concurrent update.
func (l *Limiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
		}
	}
}

// StartCleanup sweeps expired entries on a ticker until ctx is cancelled.
// Cleanup is best effort and never sits on the request path.
func (l *Limiter) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

// Size reports the number of tracked keys.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
