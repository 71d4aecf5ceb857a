// Package ratelimit provides per-client admission control. Each client key
// gets its own token bucket; policy (quota per window) comes from
// configuration, only the allow/deny contract is fixed.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate-limit policy.
type Config struct {
	// Quota is the number of requests allowed per window, per client.
	Quota int `koanf:"quota"`

	// Window is the sliding window the quota refills over.
	Window time.Duration `koanf:"window"`

	// MaxClients caps the number of tracked buckets. Idle buckets are
	// evicted once the cap is reached.
	MaxClients int `koanf:"max_clients"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Quota == 0 {
		c.Quota = 10
	}
	if c.Window == 0 {
		c.Window = time.Minute
	}
	if c.MaxClients == 0 {
		c.MaxClients = 10_000
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Quota < 1 {
		return fmt.Errorf("rate limit quota must be >= 1, got %d", c.Quota)
	}
	if c.Window <= 0 {
		return fmt.Errorf("rate limit window must be > 0, got %s", c.Window)
	}
	return nil
}

// Limiter is a keyed token-bucket rate limiter.
type Limiter struct {
	config Config

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter with the given policy.
func NewLimiter(cfg Config) (*Limiter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{
		config:  cfg,
		buckets: make(map[string]*bucket),
	}, nil
}

// Allow reports whether the client identified by key may proceed. The first
// Quota calls within a window succeed; further calls are denied until
// tokens refill.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= l.config.MaxClients {
			l.evictIdleLocked()
		}
		b = &bucket{
			limiter: rate.NewLimiter(
				rate.Every(l.config.Window/time.Duration(l.config.Quota)),
				l.config.Quota,
			),
		}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	l.mu.Unlock()

	return b.limiter.Allow()
}

// evictIdleLocked drops buckets idle for longer than a full window; they are
// fully refilled anyway, so recreating them is equivalent.
func (l *Limiter) evictIdleLocked() {
	cutoff := time.Now().Add(-l.config.Window)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
