package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// keyPressLimiter throttles requests that press keys. Reading the display and
// health checks never consume a token.
type keyPressLimiter interface {
	Allow() bool
	// RetryAfter reports how long until the next key press would be accepted.
	RetryAfter() time.Duration
}

type keyPressBucket struct {
	limiter *rate.Limiter
}

func newKeyPressBucket(pressesPerSecond float64, burst int) keyPressLimiter {
	if pressesPerSecond <= 0 {
		pressesPerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &keyPressBucket{
		limiter: rate.NewLimiter(rate.Limit(pressesPerSecond), burst),
	}
}

func (b *keyPressBucket) Allow() bool {
	if b == nil || b.limiter == nil {
		return true
	}
	return b.limiter.Allow()
}

func (b *keyPressBucket) RetryAfter() time.Duration {
	if b == nil || b.limiter == nil {
		return 0
	}
	// The reservation is only used to read the delay; cancelling returns the token.
	reservation := b.limiter.Reserve()
	defer reservation.Cancel()
	if !reservation.OK() {
		return 0
	}
	return reservation.Delay()
}

// pressesKeys reports whether r changes the calculation.
func pressesKeys(r *http.Request) bool {
	return r.Method == http.MethodPost || r.Method == http.MethodDelete
}

func retryAfterHeader(wait time.Duration) string {
	seconds := int(math.Ceil(wait.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

// rateLimitMiddleware sits outside the access log, so throttled requests are
// logged here with their request ID.
func rateLimitMiddleware(limiter keyPressLimiter, logger *zap.Logger, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !pressesKeys(r) || limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}

		wait := limiter.RetryAfter()
		logger.Warn("key presses throttled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("retry_after", wait),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("request_id", requestIDFromContext(r.Context())),
		)
		w.Header().Set("Retry-After", retryAfterHeader(wait))
		writeError(w, http.StatusTooManyRequests, "Too many requests",
			"key presses are arriving faster than the rate limit allows",
			"Wait for the Retry-After interval before pressing more keys")
	})
}
