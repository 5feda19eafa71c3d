package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// idleExpiry drops limiters of clients that have been quiet for a while.
const idleExpiry = 15 * time.Minute

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	limiters *gocache.Cache
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewPerMinute creates a limiter that allows perMinute requests per client and minute.
// A non-positive value disables limiting.
func NewPerMinute(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		limiters: gocache.New(idleExpiry, 2*idleExpiry),
		rate:     rate.Inf,
	}
	if perMinute > 0 {
		rl.rate = rate.Every(time.Minute / time.Duration(perMinute))
		rl.burst = perMinute
	}
	return rl
}

// getLimiter returns the limiter of a client and keeps it alive.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.limiters.Get(key); ok {
		limiter := v.(*rate.Limiter)
		rl.limiters.SetDefault(key, limiter)
		return limiter
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters.SetDefault(key, limiter)
	return limiter
}

// Allow reports whether key may make another request now.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.rate == rate.Inf {
		return true
	}
	return rl.getLimiter(key).Allow()
}

// Middleware rejects requests above the limit with 429 and a plain-text message.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !rl.Allow(key) {
			log.Warn("rate limit exceeded", "client", key, "path", c.Request.URL.Path)
			c.Header("Retry-After", "60")
			c.String(http.StatusTooManyRequests, "Too many attempts, please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}
