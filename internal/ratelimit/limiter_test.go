package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock lets tests move the limiter's notion of time explicitly.
type fixedClock struct {
	at time.Time
}

func (c *fixedClock) now() time.Time { return c.at }

func (c *fixedClock) advance(d time.Duration) { c.at = c.at.Add(d) }

func newTestLimiter(cfg Config) (*Limiter, *fixedClock) {
	clock := &fixedClock{at: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.now
	return l, clock
}

func TestAdmitCountsDownRemaining(t *testing.T) {
	l, clock := newTestLimiter(Config{Window: 15 * time.Minute, MaxRequests: 5})

	for i := 0; i < 5; i++ {
		info, err := l.Admit("203.0.113.1")
		require.NoError(t, err)
		assert.Equal(t, 5, info.Limit)
		assert.Equal(t, 4-i, info.Remaining)
		assert.Equal(t, clock.at.Add(15*time.Minute), info.ResetAt)
	}
}

func TestAdmitRejectsAtCeiling(t *testing.T) {
	l, _ := newTestLimiter(Config{Window: 15 * time.Minute, MaxRequests: 5, Message: "slow down"})

	for i := 0; i < 5; i++ {
		_, err := l.Admit("203.0.113.1")
		require.NoError(t, err)
	}

	_, err := l.Admit("203.0.113.1")
	var limited *RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, 900, limited.RetryAfter)
	assert.Equal(t, "slow down", limited.Message)
}

func TestRejectedRequestsDoNotExtendTheLockout(t *testing.T) {
	l, clock := newTestLimiter(Config{Window: 15 * time.Minute, MaxRequests: 2})

	_, err := l.Admit("client")
	require.NoError(t, err)
	_, err = l.Admit("client")
	require.NoError(t, err)

	// Hammering a closed window must not advance the counter or push
	// the reset instant out.
	for i := 0; i < 1000; i++ {
		_, err := l.Admit("client")
		require.Error(t, err)
	}

	clock.advance(15 * time.Minute)
	info, err := l.Admit("client")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Remaining)
}

func TestWindowRestartsRelativeToFirstRequestAfterExpiry(t *testing.T) {
	l, clock := newTestLimiter(Config{Window: 15 * time.Minute, MaxRequests: 5})

	_, err := l.Admit("client")
	require.NoError(t, err)

	clock.advance(40 * time.Minute)
	info, err := l.Admit("client")
	require.NoError(t, err)
	assert.Equal(t, 4, info.Remaining)
	assert.Equal(t, clock.at.Add(15*time.Minute), info.ResetAt)
}

func TestRetryAfterShrinksAsTheWindowAges(t *testing.T) {
	l, clock := newTestLimiter(Config{Window: 15 * time.Minute, MaxRequests: 1})

	_, err := l.Admit("client")
	require.NoError(t, err)

	clock.advance(14 * time.Minute)
	_, err = l.Admit("client")
	var limited *RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, 60, limited.RetryAfter)
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(Config{Window: 15 * time.Minute, MaxRequests: 1})

	_, err := l.Admit("203.0.113.1")
	require.NoError(t, err)
	_, err = l.Admit("203.0.113.1")
	require.Error(t, err)

	info, err := l.Admit("198.51.100.2")
	require.NoError(t, err)
	assert.Equal(t, 0, info.Remaining)
}

func TestLimiterGroupsAreIndependent(t *testing.T) {
	authLimiter, _ := newTestLimiter(Config{Window: 15 * time.Minute, MaxRequests: 1})
	apiLimiter, _ := newTestLimiter(Config{Window: 15 * time.Minute, MaxRequests: 1000})

	_, err := authLimiter.Admit("client")
	require.NoError(t, err)
	_, err = authLimiter.Admit("client")
	require.Error(t, err)

	// Exhausting the auth budget leaves the api budget untouched.
	info, err := apiLimiter.Admit("client")
	require.NoError(t, err)
	assert.Equal(t, 999, info.Remaining)
}

func TestSweepDropsOnlyExpiredEntries(t *testing.T) {
	l, clock := newTestLimiter(Config{Window: 15 * time.Minute, MaxRequests: 5})

	_, err := l.Admit("old")
	require.NoError(t, err)

	clock.advance(10 * time.Minute)
	_, err = l.Admit("fresh")
	require.NoError(t, err)

	clock.advance(6 * time.Minute)
	l.Sweep()

	assert.Equal(t, 1, l.Size())

	// The surviving entry keeps its count.
	info, err := l.Admit("fresh")
	require.NoError(t, err)
	assert.Equal(t, 3, info.Remaining)
}

func TestStartCleanupSweepsInBackground(t *testing.T) {
	l := NewLimiter(Config{Window: 10 * time.Millisecond, MaxRequests: 5})

	_, err := l.Admit("client")
	require.NoError(t, err)
	require.Equal(t, 1, l.Size())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.StartCleanup(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return l.Size() == 0
	}, time.Second, 5*time.Millisecond)
}
