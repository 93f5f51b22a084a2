package service

import (
	"context"
	"time"

	"storefront-orders/internal/models"
	"storefront-orders/internal/redisclient"
	"storefront-orders/internal/store"
	"storefront-orders/internal/util"

	"go.uber.org/zap"
)

// StatsService derives aggregate statistics from the order ledger. A
// short-TTL Redis cache sits in front of the scan; write paths
// invalidate it, so the TTL only bounds staleness when invalidation is
// missed. With a nil Redis client every read hits the ledger.
type StatsService struct {
	store    store.OrderStore
	redis    *redisclient.Client
	currency string
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(st store.OrderStore, redis *redisclient.Client, currency string, cacheTTL time.Duration) *StatsService {
	return &StatsService{
		store:    st,
		redis:    redis,
		currency: currency,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// ComputeStats returns total/completed counts and completed revenue in
// the reporting currency, from a single ledger snapshot.
func (s *StatsService) ComputeStats(ctx context.Context) (*models.Stats, error) {
	ctx, span := util.StartSpan(ctx, "StatsService.ComputeStats")
	defer span.End()

	if s.redis != nil {
		cached, err := s.redis.GetCachedStats(ctx)
		if err != nil {
			s.logger.Warn("Stats cache read failed", zap.Error(err))
		} else if cached != nil {
			util.StatsCacheHitsTotal.Inc()
			return cached, nil
		}
	}

	util.StatsCacheMissesTotal.Inc()
	stats, err := s.store.ComputeStats(ctx, s.currency)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.SetCachedStats(ctx, stats, s.cacheTTL); err != nil {
			s.logger.Warn("Stats cache write failed", zap.Error(err))
		}
	}

	return stats, nil
}
