package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(60, 2)
	rl.now = func() time.Time { return now }

	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1235").Code)

	limited := do("10.0.0.1:1236")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234").Code)

	// One token refills per second at 60/min.
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1237").Code)
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10, 1)
	rl.now = func() time.Time { return now }

	rl.limiterFor("a")
	rl.limiterFor("b")
	assert.Len(t, rl.clients, 2)

	now = now.Add(idleLimiterTTL + time.Minute)
	rl.limiterFor("c")
	assert.Len(t, rl.clients, 1)
}
