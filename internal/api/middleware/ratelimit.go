package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long a client's bucket may sit unused before it is
// swept.
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu          sync.Mutex
	clients     map[string]*clientLimiter
	lastCleanup time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerMinute per client IP
// with the given burst.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(float64(requestsPerMinute) / time.Minute.Seconds()),
		burst:   burst,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

// NewAuthRateLimiter builds the limiter guarding the register and login routes.
func NewAuthRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return NewRateLimiter(cfg.AuthRequestsPerMinute, cfg.AuthBurst)
}

// Handler rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		limiter := rl.limiterFor(key)

		if !limiter.AllowN(rl.now(), 1) {
			reservation := limiter.ReserveN(rl.now(), 1)
			delay := reservation.DelayFrom(rl.now())
			reservation.CancelAt(rl.now())

			retryAfter := max(int(delay.Seconds()+0.5), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			logger.FromContext(r.Context()).Warn("rate limit exceeded",
				"client", key,
				"retry_after", retryAfter)
			shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if rl.lastCleanup.IsZero() {
		rl.lastCleanup = now
	}
	if now.Sub(rl.lastCleanup) > idleLimiterTTL {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) > idleLimiterTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastCleanup = now
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// clientIP uses RemoteAddr, which chi's RealIP middleware has already
// rewritten from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
