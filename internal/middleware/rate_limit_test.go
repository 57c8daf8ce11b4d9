// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/lojinha/loja-backend/internal/config"
)

func TestAuthRateLimitThrottlesPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/login", AuthRateLimit(config.RateLimitConfig{AuthPerMinute: 2}),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = ip + ":40000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	throttled := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, throttled.Code)
	assert.Equal(t, "60", throttled.Header().Get("Retry-After"))

	// Each client IP gets its own bucket
	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)
}

func TestGeneralRateLimitAllowsBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/", GeneralRateLimit(config.RateLimitConfig{GeneralPerSecond: 5}),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.9:40000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
