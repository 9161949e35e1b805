package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/clock"
)

// rateLimiter is a fixed-window per-key limiter. Keys are client sessions,
// falling back to the remote address for anonymous catalog reads.
type rateLimiter struct {
	clk    clock.Clock
	limit  int
	window time.Duration
	mu     sync.Mutex
	items  map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(clk clock.Clock, limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		clk:    clk,
		limit:  limit,
		window: window,
		items:  make(map[string]*rateLimitEntry),
	}
}

func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := r.clk.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.items[key]
	if entry == nil || now.Sub(entry.windowStart) > r.window {
		entry = &rateLimitEntry{windowStart: now}
		r.items[key] = entry
	}

	if entry.count >= r.limit {
		return false
	}

	entry.count++
	return true
}

// RateLimit guards the API group.
func (s *Server) RateLimit(c *gin.Context) {
	key := sessionID(c)
	if key == "" {
		key = c.ClientIP()
	}
	if !s.limiter.Allow(key) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": &apiError{
			Code:    "rate_limited",
			Message: "too many requests",
		}})
		return
	}
	c.Next()
}
