package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = time.Hour

// ConnLimiter caps how fast a single IP may open new websocket connections.
// Limiters are created on first sight of an IP and dropped after an hour of
// inactivity via Cleanup.
type ConnLimiter struct {
	perMinute float64
	burst     int

	mu      sync.Mutex
	entries map[string]*connEntry
}

type connEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewConnLimiter(perMinute float64, burst int) *ConnLimiter {
	return &ConnLimiter{
		perMinute: perMinute,
		burst:     burst,
		entries:   make(map[string]*connEntry),
	}
}

// Allow reports whether the IP may open another connection.
func (l *ConnLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[ip]
	if !ok {
		e = &connEntry{limiter: rate.NewLimiter(rate.Limit(l.perMinute/60), l.burst)}
		l.entries[ip] = e
	}
	e.lastSeen = time.Now()

	return e.limiter.Allow()
}

// Cleanup drops limiters for IPs not seen within the idle TTL. Called
// periodically from the server loop.
func (l *ConnLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for ip, e := range l.entries {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(l.entries, ip)
		}
	}
}
