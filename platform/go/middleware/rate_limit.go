package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	platformlogging "github.com/zenGate-Global/local-library/platform/go/logging"
	"github.com/zenGate-Global/local-library/platform/go/ratelimit"
)

// RateLimiter decides whether a client may issue another request.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

// RateLimit rejects clients that exceed the limiter's budget with 429.
// The client key is the host of RemoteAddr, the socket peer unless chi's RealIP ran
// earlier in the chain.
// When the limiter itself fails the request is let through and the failure logged.
func RateLimit(limiter RateLimiter, fallback *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				platformlogging.FromRequest(r, fallback).Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
				http.Error(w, "Too many requests, please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
