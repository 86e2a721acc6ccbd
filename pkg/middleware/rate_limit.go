package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ourlovestory/scrapbook/pkg/metrics"
)

// limitKey picks the throttling key for a request: the authenticated subject
// when the auth middleware ran first, the client IP otherwise. Keying by
// subject keeps users behind a shared NAT from throttling each other.
func limitKey(c *gin.Context) string {
	if sub := Subject(c); sub != "" {
		return "sub:" + sub
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func (s *limiterStore) get(key string, rps float64, burst int) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lim, ok := s.limiters[key]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	s.limiters[key] = lim
	return lim
}

var memLimiters = &limiterStore{limiters: make(map[string]*rate.Limiter)}

// RateLimitMiddleware enforces a per-key token bucket in process memory.
// Suitable for single-instance deployments; distributed ones use the Redis
// variant so all replicas share one budget.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := memLimiters.get(limitKey(c), rps, burst)
		if !lim.Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
