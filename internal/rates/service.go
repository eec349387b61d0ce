package rates

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/dividend-dashboard/internal/cache"
	"github.com/trogers1052/dividend-dashboard/internal/metrics"
)

// Service resolves the rate from, in order: the in-process value, the shared
// cache, the provider, and finally the fallback. It never fails.
type Service struct {
	provider Provider
	cache    Cache
	ttl      time.Duration
	fallback float64
	log      zerolog.Logger
	now      func() time.Time

	mu    sync.Mutex
	local cache.Expiring[float64]
}

// NewService creates a rate service. cache may be nil. A non-positive
// fallback uses metrics.DefaultUSDToCAD.
func NewService(provider Provider, c Cache, ttl time.Duration, fallback float64, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		cache:    c,
		ttl:      ttl,
		fallback: metrics.NormalizeRate(fallback),
		log:      log.With().Str("component", "rates").Logger(),
		now:      time.Now,
	}
}

// Rate returns a usable USD->CAD rate
func (s *Service) Rate(ctx context.Context) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.local.IsStale(now) {
		return s.local.Value
	}

	if s.cache != nil {
		rate, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("Rate cache unavailable")
		} else if ok && rate > 0 {
			s.local = cache.NewExpiring(rate, s.ttl, now)
			return rate
		}
	}

	rate, err := s.provider.FetchRate(ctx)
	if err != nil {
		if s.local.Value > 0 {
			s.log.Warn().Err(err).Float64("rate", s.local.Value).Msg("Failed to fetch exchange rate, keeping last known rate")
			return s.local.Value
		}
		s.log.Warn().Err(err).Float64("fallback", s.fallback).Msg("Failed to fetch exchange rate, using fallback")
		return s.fallback
	}

	s.local = cache.NewExpiring(rate, s.ttl, now)
	if s.cache != nil {
		if err := s.cache.Set(ctx, rate, s.ttl); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache exchange rate")
		}
	}
	s.log.Debug().Float64("rate", rate).Msg("Exchange rate refreshed")
	return rate
}
