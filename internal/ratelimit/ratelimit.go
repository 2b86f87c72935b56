// Package ratelimit implements the in-memory signup rate limits.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limiter implements a simple in-memory sliding window rate limiter
type Limiter struct {
	mu       sync.RWMutex
	counters map[string]*counter
	window   time.Duration
	max      int
}

type counter struct {
	count     int
	expiresAt time.Time
}

// NewLimiter creates a new rate limiter with the specified window and max requests
func NewLimiter(window time.Duration, max int) *Limiter {
	l := &Limiter{
		counters: make(map[string]*counter),
		window:   window,
		max:      max,
	}
	go l.cleanup()
	return l
}

// Allow checks if a request for the given key is allowed
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, exists := l.counters[key]

	if !exists || now.After(c.expiresAt) {
		l.counters[key] = &counter{
			count:     1,
			expiresAt: now.Add(l.window),
		}
		return true
	}

	if c.count >= l.max {
		return false
	}

	c.count++
	return true
}

// GetRemaining returns the number of remaining requests for the given key
func (l *Limiter) GetRemaining(key string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := time.Now()
	c, exists := l.counters[key]

	if !exists || now.After(c.expiresAt) {
		return l.max
	}

	remaining := l.max - c.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// cleanup periodically removes expired counters
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, c := range l.counters {
			if now.After(c.expiresAt) {
				delete(l.counters, key)
			}
		}
		l.mu.Unlock()
	}
}

// Config holds the per-window signup limits.
type Config struct {
	IPSignupsPerHour    int `mapstructure:"ip_signups_per_hour"`
	EmailSignupsPerHour int `mapstructure:"email_signups_per_hour"`
}

// SignupLimiter gates waitlist submissions per client IP and per submitted
// email address.
type SignupLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewSignupLimiter creates a limiter with the configured limits. Zero or
// negative limits fall back to the defaults.
func NewSignupLimiter(c Config) *SignupLimiter {
	ipLimit := c.IPSignupsPerHour
	if ipLimit <= 0 {
		ipLimit = 20
	}
	emailLimit := c.EmailSignupsPerHour
	if emailLimit <= 0 {
		emailLimit = 5
	}
	return &SignupLimiter{
		ip:    NewLimiter(time.Hour, ipLimit),
		email: NewLimiter(time.Hour, emailLimit),
	}
}

// CheckSignup verifies a signup attempt is allowed from the given IP and for
// the given email. Both counters advance on every call.
func (s *SignupLimiter) CheckSignup(ip, email string) error {
	if !s.ip.Allow(ip) {
		return fmt.Errorf("too many signups from this IP address, please try again later")
	}

	if email != "" && !s.email.Allow(email) {
		return fmt.Errorf("too many signups for this email address, please try again later")
	}

	return nil
}

// GetSignupLimits returns remaining signup attempts for IP and email
func (s *SignupLimiter) GetSignupLimits(ip, email string) (ipRemaining, emailRemaining int) {
	ipRemaining = s.ip.GetRemaining(ip)
	if email != "" {
		emailRemaining = s.email.GetRemaining(email)
	} else {
		emailRemaining = -1 // not applicable
	}
	return ipRemaining, emailRemaining
}
