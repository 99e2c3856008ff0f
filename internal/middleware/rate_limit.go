package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"sync"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/deppfellow/sovyx-backend/internal/lib/metrics"
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// limiterStore keeps one token bucket per client ip and forgets idle ones.
type limiterStore struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{
		entries: make(map[string]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
		now:     time.Now,
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *limiterStore) cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// NewIPExtractor resolves the client ip from the socket peer, or from
// X-Forwarded-For when the peer is one of the trusted proxy ranges.
func NewIPExtractor(trustedProxies []string) echo.IPExtractor {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect()
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		if _, ipNet, err := net.ParseCIDR(cidr); err == nil {
			options = append(options, echo.TrustIPRange(ipNet))
		}
	}
	return echo.ExtractIPFromXFFHeader(options...)
}

// RateLimitMiddleware enforces rate_limit.rps per client ip. A non-positive
// rps turns it into a pass-through.
type RateLimitMiddleware struct {
	server *server.Server
	store  *limiterStore
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	r := &RateLimitMiddleware{server: s}
	if s.Config.RateLimit.RPS > 0 {
		r.store = newLimiterStore(s.Config.RateLimit.RPS, s.Config.RateLimit.Burst)
	}
	return r
}

func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if r.store == nil {
			return next
		}

		return func(c echo.Context) error {
			lim := r.store.get(c.RealIP())

			res := lim.Reserve()
			if !res.OK() {
				r.RecordRateLimitHit(c.Path())
				return errs.NewTooManyRequestsError("1s")
			}
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				retryAfter := int(math.Ceil(delay.Seconds()))
				c.Response().Header().Set("Retry-After", fmt.Sprint(retryAfter))
				r.RecordRateLimitHit(c.Path())
				return errs.NewTooManyRequestsError(fmt.Sprintf("%ds", retryAfter))
			}

			return next(c)
		}
	}
}

// StartJanitor drops idle buckets until ctx is cancelled.
func (r *RateLimitMiddleware) StartJanitor(ctx context.Context) {
	if r.store == nil {
		return
	}

	t := time.NewTicker(2 * time.Minute)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				r.store.cleanup()
			}
		}
	}()
}

func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	metrics.RateLimited.WithLabelValues(endpoint).Inc()

	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}
