// Package throttle provides an HTTP middleware that rate limits requests.
// The LightField session handle tolerates exactly one caller at a time
// and dislikes being hammered with setting writes; this keeps chatty
// clients from destabilizing it.
package throttle

import (
	"net/http"

	"golang.org/x/time/rate"
)

// Throttle wraps a token bucket rate limiter as a middleware.
type Throttle struct {
	limiter *rate.Limiter
}

// New returns a Throttle permitting perSecond requests sustained with the
// given burst.
func New(perSecond float64, burst int) *Throttle {
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Check is an HTTP middleware that returns 429 when the limit is
// exceeded, otherwise passes the request down the line
func (t *Throttle) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.limiter.Allow() {
			http.Error(w, "request rate too high for instrument session", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
