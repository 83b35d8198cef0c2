package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnLimiterBurstThenDeny(t *testing.T) {
	l := NewConnLimiter(10, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("203.0.113.7"), "connection %d within burst", i+1)
	}
	assert.False(t, l.Allow("203.0.113.7"), "burst exhausted")
}

func TestConnLimiterIsolatesIPs(t *testing.T) {
	l := NewConnLimiter(10, 1)

	require.True(t, l.Allow("203.0.113.7"))
	require.False(t, l.Allow("203.0.113.7"))
	assert.True(t, l.Allow("198.51.100.4"), "a second IP gets its own budget")
}

func TestConnLimiterCleanup(t *testing.T) {
	l := NewConnLimiter(10, 5)
	l.Allow("203.0.113.7")
	l.Allow("198.51.100.4")

	l.mu.Lock()
	l.entries["203.0.113.7"].lastSeen = time.Now().Add(-2 * time.Hour)
	l.mu.Unlock()

	l.Cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.entries, "203.0.113.7")
	assert.Contains(t, l.entries, "198.51.100.4")
}
