package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ClientID is the header every call must carry; the engine uses it as the
// authenticated caller identity.
const ClientID = "X-Client-ID"

// RateLimiter allows one request per client per interval.
type RateLimiter struct {
	clients map[string]time.Time
	mu      sync.Mutex
	limit   time.Duration
}

func NewRateLimiter(limit time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]time.Time),
		limit:   limit,
	}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader(ClientID)
		if clientID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": ClientID + " header required"})
			c.Abort()
			return
		}
		r.mu.Lock()
		last, exists := r.clients[clientID]
		if exists && time.Since(last) < r.limit {
			r.mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		r.clients[clientID] = time.Now()
		if len(r.clients) > 10000 {
			r.evictStaleLocked()
		}
		r.mu.Unlock()
		c.Next()
	}
}

func (r *RateLimiter) evictStaleLocked() {
	cutoff := time.Now().Add(-10 * r.limit)
	for id, last := range r.clients {
		if last.Before(cutoff) {
			delete(r.clients, id)
		}
	}
}
