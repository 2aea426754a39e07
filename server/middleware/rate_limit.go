// Package middleware holds the HTTP middleware shared by the API
// surface.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// cleanupInterval controls how often idle per-client limiters are
	// dropped.
	cleanupInterval = 10 * time.Minute
	clientIdleTTL   = 30 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	rps       rate.Limit
	burst     int
	lastSweep time.Time
}

// NewRateLimiter allows rps sustained requests per second per client
// with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*clientLimiter),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

// Middleware returns the echo middleware function.
func (r *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !r.allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

func (r *RateLimiter) allow(clientIP string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastSweep) > cleanupInterval {
		for ip, cl := range r.clients {
			if now.Sub(cl.lastSeen) > clientIdleTTL {
				delete(r.clients, ip)
			}
		}
		r.lastSweep = now
	}

	cl, ok := r.clients[clientIP]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(r.rps, r.burst)}
		r.clients[clientIP] = cl
	}
	cl.lastSeen = now
	return cl.limiter.Allow()
}
