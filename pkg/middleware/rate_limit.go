package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"roombook/pkg/clock"
	apperrors "roombook/pkg/errors"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"
)

const (
	CodeRateLimited        = "RATE_LIMITED"
	rateLimitSweepInterval = 10 * time.Minute
)

// RequesterRateLimiter is a sliding window limiter keyed on the requester id.
type RequesterRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	clock    clock.Clock
	log      *logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewRequesterRateLimiter(limit int, window time.Duration, clk clock.Clock, log *logger.Logger) *RequesterRateLimiter {
	limiter := &RequesterRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		clock:    clk,
		log:      log,
		stopCh:   make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *RequesterRateLimiter) cleanup() {
	ticker := time.NewTicker(rateLimitSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RequesterRateLimiter) sweep() {
	now := rl.clock.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for requester, timestamps := range rl.requests {
		if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) >= rl.window {
			delete(rl.requests, requester)
		}
	}
}

func (rl *RequesterRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow records a request for requesterID and reports whether it fits in the
// window. Anonymous requests are not limited.
func (rl *RequesterRateLimiter) Allow(requesterID string) bool {
	if requesterID == "" {
		return true
	}
	now := rl.clock.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	timestamps := rl.requests[requesterID]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[requesterID] = valid
		return false
	}

	rl.requests[requesterID] = append(valid, now)
	return true
}

func (rl *RequesterRateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.requests)
}

func RequesterRateLimit(limiter *RequesterRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requesterID := httputil.ExtractRequesterID(r)

			if !limiter.Allow(requesterID) {
				rejectRateLimited(w, limiter, r, requesterID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, limiter *RequesterRateLimiter, r *http.Request, requesterID string) {
	limiter.log.Warn("Rate limit exceeded",
		"request_id", RequestIDFromContext(r.Context()),
		"requester_id", requesterID,
		"path", r.URL.Path,
	)

	w.Header().Set("Retry-After", formatSeconds(limiter.window))
	_ = apperrors.WriteError(w, apperrors.New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests))
}

func formatSeconds(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
