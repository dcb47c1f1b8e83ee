package middleware

import (
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"webbrowser/internal/util"
	"webbrowser/pkg/response"
)

const (
	// clients idle for longer than this lose their limiter
	clientIdleTTL   = 5 * time.Minute
	cleanupInterval = time.Minute
)

// RateLimit limits each client IP to rps requests per second with the given
// burst. A non-positive rps disables limiting.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}

	var mu sync.Mutex
	clients := gocache.New(clientIdleTTL, cleanupInterval)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := util.GetClientIPAddress(r)

			mu.Lock()
			var limiter *rate.Limiter
			if cached, ok := clients.Get(ip); ok {
				limiter = cached.(*rate.Limiter)
			} else {
				limiter = rate.NewLimiter(rate.Limit(rps), burst)
			}
			// refreshes the idle deadline
			clients.SetDefault(ip, limiter)
			allowed := limiter.Allow()
			mu.Unlock()

			if !allowed {
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
