// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/lojinha/loja-backend/internal/config"
	"github.com/lojinha/loja-backend/internal/i18n"
	"github.com/lojinha/loja-backend/internal/utils"
)

// ipThrottle hands out one token bucket per client IP. Buckets idle longer
// than idleTTL are evicted so the map stays bounded on a busy instance.
type ipThrottle struct {
	mu         sync.Mutex
	buckets    map[string]*clientBucket
	limit      rate.Limit
	burst      int
	idleTTL    time.Duration
	retryAfter int // seconds, hint for the 429 response
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPThrottle(limit rate.Limit, burst, retryAfter int) *ipThrottle {
	t := &ipThrottle{
		buckets:    make(map[string]*clientBucket),
		limit:      limit,
		burst:      burst,
		idleTTL:    5 * time.Minute,
		retryAfter: retryAfter,
	}
	go t.evictIdle()
	return t
}

func (t *ipThrottle) evictIdle() {
	ticker := time.NewTicker(time.Minute)
	for range ticker.C {
		t.mu.Lock()
		for ip, b := range t.buckets {
			if time.Since(b.lastSeen) > t.idleTTL {
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
			lang := utils.GetLangFromContext(c)
			c.Header("Retry-After", strconv.Itoa(t.retryAfter))
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED",
				i18n.T(lang, i18n.KeyRateLimited), nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GeneralRateLimit throttles the whole API surface per client IP.
func GeneralRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	n := cfg.GeneralPerSecond
	return newIPThrottle(rate.Limit(n), n, 1).handler()
}

// AuthRateLimit guards register/login/refresh against credential guessing.
func AuthRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	n := cfg.AuthPerMinute
	return newIPThrottle(perMinute(n), n, 60).handler()
}

// UploadRateLimit bounds multipart image uploads, which cost far more than
// plain JSON requests.
func UploadRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	n := cfg.UploadPerMinute
	return newIPThrottle(perMinute(n), n, 60).handler()
}

func perMinute(n int) rate.Limit {
	return rate.Limit(float64(n) / 60.0)
}
