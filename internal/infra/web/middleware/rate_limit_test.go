package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DioGolang/GoTrack/pkg/logger"
)

func TestRateLimiter_PerClientBurst(t *testing.T) {
	//Arrange
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter := NewRateLimiter(ctx, RateLimiterConfig{RequestsPerSecond: 1, Burst: 2})
	h := limiter.Handler(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	//Act
	codes := []int{call("10.0.0.1:1000"), call("10.0.0.1:1001"), call("10.0.0.1:1002")}
	other := call("10.0.0.2:1000")

	//Assert
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, http.StatusOK, other)
}

func TestClientIP(t *testing.T) {
	//Arrange
	direct := httptest.NewRequest(http.MethodGet, "/", nil)
	direct.RemoteAddr = "192.168.1.10:5555"
	proxied := httptest.NewRequest(http.MethodGet, "/", nil)
	proxied.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	//Act & Assert
	assert.Equal(t, "192.168.1.10", clientIP(direct))
	assert.Equal(t, "203.0.113.7", clientIP(proxied))
}
