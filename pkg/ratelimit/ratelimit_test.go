package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(10)

	assert.True(t, l.Allow("conn-1"), "first message must be allowed")
	assert.True(t, l.Allow("conn-2"), "different key must be allowed")
}

func TestLimiterBurst(t *testing.T) {
	l := NewLimiter(5) // burst = 10

	allowed := 0
	for i := 0; i < 40; i++ {
		if l.Allow("conn-1") {
			allowed++
		}
	}

	assert.GreaterOrEqual(t, allowed, 5, "burst must be allowed")
	assert.Less(t, allowed, 40, "limiter must block past the burst")
}

func TestLimiterForget(t *testing.T) {
	l := NewLimiter(1)

	for i := 0; i < 10; i++ {
		l.Allow("conn-1")
	}
	assert.False(t, l.Allow("conn-1"))

	// Forgetting the key resets its bucket.
	l.Forget("conn-1")
	assert.True(t, l.Allow("conn-1"))
}
