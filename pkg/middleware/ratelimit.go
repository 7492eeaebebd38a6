// pkg/middleware/ratelimit.go
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"kolnexus/pkg/problems"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit limits requests per client IP. Used on the interactive auth
// endpoints to slow down credential stuffing; data routes are not
// limited here.
func RateLimit(perMin int) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = map[string]*ipLimiter{}
	)
	limit := rate.Limit(float64(perMin) / 60.0)

	get := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now()
		if len(limiters) > 4096 {
			for k, v := range limiters {
				if now.Sub(v.lastSeen) > 10*time.Minute {
					delete(limiters, k)
				}
			}
		}
		l, ok := limiters[ip]
		if !ok {
			l = &ipLimiter{limiter: rate.NewLimiter(limit, perMin)}
			limiters[ip] = l
		}
		l.lastSeen = now
		return l.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !get(ip).Allow() {
				problems.Write(w, http.StatusTooManyRequests, "rate-limited", "Too many requests", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
