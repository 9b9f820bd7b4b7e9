package httpcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiter spaces out requests to the same host across all callers.
var limiter = NewHostLimiter(1100 * time.Millisecond)

// SetHostDelay changes the minimum spacing for one host on the shared limiter.
func SetHostDelay(host string, delay time.Duration) {
	limiter.SetDelay(host, delay)
}

// HostLimiter enforces a minimum delay between requests to the same host.
// It is safe for concurrent use.
type HostLimiter struct {
	overrides map[string]time.Duration
	limiters  map[string]*rate.Limiter
	mu        sync.Mutex
	minDelay  time.Duration
}

// NewHostLimiter returns a limiter allowing one request per minDelay per host.
func NewHostLimiter(minDelay time.Duration) *HostLimiter {
	return &HostLimiter{
		minDelay:  minDelay,
		overrides: make(map[string]time.Duration),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// SetDelay overrides the minimum delay for host. A zero delay disables limiting.
func (h *HostLimiter) SetDelay(host string, delay time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.overrides[host] = delay
	delete(h.limiters, host)
}

func (h *HostLimiter) get(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	if l, ok := h.limiters[host]; ok {
		return l
	}
	delay := h.minDelay
	if d, ok := h.overrides[host]; ok {
		delay = d
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	l := rate.NewLimiter(limit, 1)
	h.limiters[host] = l
	return l
}

// Wait blocks until a request to host may proceed or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, host string, logger *slog.Logger) error {
	if host == "" {
		return nil
	}
	l := h.get(host)
	if logger != nil && l.Tokens() < 1 {
		logger.Debug("rate limit pause", "host", host)
	}
	return l.Wait(ctx)
}
