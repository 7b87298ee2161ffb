package crawl

import (
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter hands out a per-hostname token bucket so a crawl with
// many URLs on the same host doesn't hammer it, independent of the
// global CRAWL_DELAY sleep. It is additive: Crawler still applies the
// global sleep too, so a single-host crawl whose per-host rate allows
// at least one request per CRAWL_DELAY is paced by the global sleep
// alone; a lower per-host rate slows it further.
type HostLimiter struct {
	rps   float64
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiter builds a limiter bucket keyed by hostname.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	return &HostLimiter{
		rps:      rps,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// For returns (creating if needed) the token bucket for rawURL's host.
func (h *HostLimiter) For(rawURL string) *rate.Limiter {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(h.rps), h.burst)
		h.limiters[host] = l
	}
	return l
}
