package auth

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/mrlokans/bookstore/internal/config"
)

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // default: 5
	WindowDuration  time.Duration // default: 15m
	LockoutDuration time.Duration // default: 30m
	CleanupInterval time.Duration // default: 5m
}

// RateLimitConfigFrom reads the limiter settings from the auth config.
func RateLimitConfigFrom(cfg config.Auth) RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	}
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.WindowDuration <= 0 {
		c.WindowDuration = 15 * time.Minute
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = 30 * time.Minute
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 5 * time.Minute
	}
	return c
}

// failureWindow tracks failed logins for one client IP and username pair.
type failureWindow struct {
	opened      time.Time
	failures    int
	lockedUntil time.Time
}

func (w *failureWindow) locked(now time.Time) bool {
	return now.Before(w.lockedUntil)
}

// expired reports whether the window has closed and any lockout was served.
func (w *failureWindow) expired(now time.Time, window time.Duration) bool {
	return now.Sub(w.opened) > window && !w.locked(now)
}

// RateLimiter locks a client IP and username pair out of login once it
// collects MaxAttempts failures inside one window.
type RateLimiter struct {
	policy RateLimitConfig
	now    func() time.Time

	mu       sync.Mutex
	failures map[string]*failureWindow

	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter and starts its sweeper goroutine.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		policy:   cfg.withDefaults(),
		now:      time.Now,
		failures: make(map[string]*failureWindow),
		done:     make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the sweeper. It is safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func pairKey(ip, username string) string {
	return ip + "|" + username
}

// Allow reports whether another attempt is permitted and, if not, how long
// the caller has to wait.
func (rl *RateLimiter) Allow(ip, username string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.failures[pairKey(ip, username)]
	if !ok || !w.locked(now) {
		return true, 0
	}
	return false, w.lockedUntil.Sub(now)
}

// RecordFailure counts a failed attempt and reports whether it triggered a lockout.
func (rl *RateLimiter) RecordFailure(ip, username string) (bool, time.Duration) {
	now := rl.now()
	k := pairKey(ip, username)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.failures[k]
	// A served lockout starts a fresh count, as does a closed window.
	if !ok || now.Sub(w.opened) > rl.policy.WindowDuration || (!w.lockedUntil.IsZero() && !w.locked(now)) {
		w = &failureWindow{opened: now}
		rl.failures[k] = w
	}

	w.failures++
	if w.failures < rl.policy.MaxAttempts {
		return false, 0
	}
	w.lockedUntil = now.Add(rl.policy.LockoutDuration)
	return true, rl.policy.LockoutDuration
}

// RecordSuccess forgets the pair's failures.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.failures, pairKey(ip, username))
	rl.mu.Unlock()
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.policy.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for k, w := range rl.failures {
		if w.expired(now, rl.policy.WindowDuration) {
			delete(rl.failures, k)
		}
	}
}

// RetryAfterSeconds formats a wait for the Retry-After header, rounding up.
func RetryAfterSeconds(d time.Duration) string {
	secs := max(int64(math.Ceil(d.Seconds())), 1)
	return strconv.FormatInt(secs, 10)
}
