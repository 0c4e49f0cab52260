// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipThrottle keeps one token bucket per client IP. Buckets idle past the
// reap window are dropped so the map does not grow with one-off callers.
type ipThrottle struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	limit   rate.Limit
	burst   int
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const reapWindow = 5 * time.Minute

func newIPThrottle(limit rate.Limit, burst int) *ipThrottle {
	t := &ipThrottle{
		buckets: make(map[string]*clientBucket),
		limit:   limit,
		burst:   burst,
	}
	go t.reap()
	return t
}

func (t *ipThrottle) reap() {
	for range time.Tick(time.Minute) {
		t.mu.Lock()
		for ip, b := range t.buckets {
			if time.Since(b.lastSeen) > reapWindow {
				delete(t.buckets, ip)
			}
		}
		t.mu.Unlock()
	}
}

func (t *ipThrottle) allow(ip string) bool {
	t.mu.Lock()
	b, ok := t.buckets[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	t.mu.Unlock()

	return b.limiter.Allow()
}

func (t *ipThrottle) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !t.allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Tiers: a general ceiling for list/search traffic, a tight bucket on
// credential endpoints, a middle one for multipart uploads.
var (
	apiThrottle        = newIPThrottle(rate.Every(time.Second/15), 30)
	credentialThrottle = newIPThrottle(rate.Every(time.Minute/8), 8)
	documentThrottle   = newIPThrottle(rate.Every(time.Minute/4), 12)
)

// APIRateLimit is the per-IP ceiling applied to every route.
func APIRateLimit() gin.HandlerFunc {
	return apiThrottle.handler()
}

// CredentialRateLimit guards register, login and token refresh.
func CredentialRateLimit() gin.HandlerFunc {
	return credentialThrottle.handler()
}

// DocumentRateLimit guards lease document and property photo uploads.
func DocumentRateLimit() gin.HandlerFunc {
	return documentThrottle.handler()
}
