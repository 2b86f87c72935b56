package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(time.Hour, 3)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	// A different key has its own window.
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestLimiter_WindowExpiry(t *testing.T) {
	l := NewLimiter(50*time.Millisecond, 1)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestLimiter_GetRemaining(t *testing.T) {
	l := NewLimiter(time.Hour, 5)

	assert.Equal(t, 5, l.GetRemaining("1.2.3.4"))
	l.Allow("1.2.3.4")
	l.Allow("1.2.3.4")
	assert.Equal(t, 3, l.GetRemaining("1.2.3.4"))
}

func TestSignupLimiter(t *testing.T) {
	s := NewSignupLimiter(Config{IPSignupsPerHour: 2, EmailSignupsPerHour: 1})

	assert.NoError(t, s.CheckSignup("1.2.3.4", "a@gmail.com"))
	assert.Error(t, s.CheckSignup("1.2.3.4", "a@gmail.com"), "email limit hit first")
	assert.Error(t, s.CheckSignup("1.2.3.4", "b@gmail.com"), "then the IP limit")

	// Another IP with a fresh email is unaffected.
	assert.NoError(t, s.CheckSignup("5.6.7.8", "c@gmail.com"))
}

func TestSignupLimiter_Defaults(t *testing.T) {
	s := NewSignupLimiter(Config{})

	ip, email := s.GetSignupLimits("1.2.3.4", "a@gmail.com")
	assert.Equal(t, 20, ip)
	assert.Equal(t, 5, email)

	_, email = s.GetSignupLimits("1.2.3.4", "")
	assert.Equal(t, -1, email)
}
