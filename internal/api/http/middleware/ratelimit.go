package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// PublicRateLimit throttles the unauthenticated surface per share token
// (falling back to client IP for token-less routes). Limiters for idle keys
// are dropped after an hour so the map cannot grow without bound.
func PublicRateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	type entry struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var mu sync.Mutex
	entries := make(map[string]*entry)

	cleanup := func(now time.Time) {
		for key, e := range entries {
			if now.Sub(e.lastSeen) > time.Hour {
				delete(entries, key)
			}
		}
	}

	return func(c *gin.Context) {
		key := c.Param("token")
		if key == "" {
			key = c.ClientIP()
		}

		now := time.Now()
		mu.Lock()
		e, ok := entries[key]
		if !ok {
			if len(entries) > 10000 {
				cleanup(now)
			}
			e = &entry{limiter: rate.NewLimiter(r, burst)}
			entries[key] = e
		}
		e.lastSeen = now
		allowed := e.limiter.Allow()
		mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
