package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var securityHeaders = map[string]string{
	"X-Frame-Options":           "DENY",
	"X-Content-Type-Options":    "nosniff",
	"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
	"Referrer-Policy":           "no-referrer",
	"Cache-Control":             "no-store",
}

// SecurityHeaders stamps the admin API's fixed response headers.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range securityHeaders {
			h.Set(k, v)
		}
		c.Next()
	}
}

type bucket struct {
	*rate.Limiter
	touched time.Time
}

// RateLimiter hands out one token bucket per client address and forgets
// addresses that stay quiet for longer than idle.
type RateLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu  sync.Mutex
	ips map[string]*bucket
}

func NewRateLimiter(limit rate.Limit, burst int, idle time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, burst: burst, idle: idle, ips: map[string]*bucket{}}
}

func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.ips[ip]
	if b == nil {
		b = &bucket{Limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.ips[ip] = b
	}
	b.touched = time.Now()
	return b.Limiter
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.ips {
		if now.Sub(b.touched) > rl.idle {
			delete(rl.ips, ip)
		}
	}
}

// Sweep runs until ctx is cancelled.
func (rl *RateLimiter) Sweep(ctx context.Context) {
	t := time.NewTicker(rl.idle)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			rl.evictIdle(now)
		}
	}
}

func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.GetLimiter(c.ClientIP()).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error":   "Too many requests",
		})
	}
}

// CORS admits the configured admin UI origins; ["*"] admits any origin while
// still allowing the session cookie.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

// Timeout puts a deadline of d on the request context.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
