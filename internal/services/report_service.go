package services

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"tokoadmin/internal/repositories"
)

const (
	// UncategorizedBucket holds products without a category.
	UncategorizedBucket = "uncategorized"
	// UnassignedCreator labels products without a user.
	UnassignedCreator = "Unassigned"
	// ReportLowStockBelow is the exclusive stock bound of the stats widget.
	ReportLowStockBelow = 20
)

// Cache keys, relative to the cache prefix.
const (
	keyCategoryDistribution = "category_distribution"
	keyStatsOverview        = "stats_overview"
	keyCreatorBreakdown     = "creator_breakdown"
)

var reportKeys = []string{keyCategoryDistribution, keyStatsOverview, keyCreatorBreakdown}

// ReportCache stores computed reports. *cache.Cache satisfies it.
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Stats is the dashboard summary of the live catalog.
type Stats struct {
	Total         int64           `json:"total"`
	Active        int64           `json:"active"`
	ActivePercent float64         `json:"active_percent"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStock      int64           `json:"low_stock"`
	Featured      int64           `json:"featured"`
}

// CreatorShare is the number of live products one user created.
type CreatorShare struct {
	UserID *string `json:"user_id"`
	Name   string  `json:"name"`
	Count  int64   `json:"count"`
}

// ReportService computes the read-only catalog reports.
type ReportService struct {
	repo  repositories.ProductRepository
	users repositories.UserRepository
	cache ReportCache
	// flight collapses concurrent misses on the same report.
	flight singleflight.Group
	// generation is bumped by Invalidate; results computed under an older
	// generation are returned but never cached.
	generation atomic.Uint64
}

// NewReportService creates a new ReportService. users and cache may be nil.
func NewReportService(repo repositories.ProductRepository, users repositories.UserRepository, cache ReportCache) *ReportService {
	return &ReportService{
		repo:  repo,
		users: users,
		cache: cache,
	}
}

// CategoryDistribution counts live products per category.
func (s *ReportService) CategoryDistribution(ctx context.Context) (map[string]int64, error) {
	return load(ctx, s, keyCategoryDistribution, func(ctx context.Context) (map[string]int64, error) {
		counts, err := s.repo.CountByCategory(ctx)
		if err != nil {
			return nil, err
		}
		distribution := make(map[string]int64, len(counts))
		for category, n := range counts {
			if category == "" {
				category = UncategorizedBucket
			}
			distribution[category] += n
		}
		return distribution, nil
	})
}

// StatsOverview summarizes the live catalog.
func (s *ReportService) StatsOverview(ctx context.Context) (*Stats, error) {
	return load(ctx, s, keyStatsOverview, func(ctx context.Context) (*Stats, error) {
		summary, err := s.repo.Summarize(ctx, ReportLowStockBelow)
		if err != nil {
			return nil, err
		}
		return &Stats{
			Total:         summary.Total,
			Active:        summary.Active,
			ActivePercent: activePercent(summary.Active, summary.Total),
			TotalValue:    summary.TotalValue,
			LowStock:      summary.LowStock,
			Featured:      summary.Featured,
		}, nil
	})
}

func activePercent(active, total int64) float64 {
	if total < 1 {
		total = 1
	}
	return float64(active) / float64(total) * 100
}

// CreatorBreakdown counts live products per creating user, largest first.
func (s *ReportService) CreatorBreakdown(ctx context.Context) ([]CreatorShare, error) {
	return load(ctx, s, keyCreatorBreakdown, s.creatorBreakdown)
}

func (s *ReportService) creatorBreakdown(ctx context.Context) ([]CreatorShare, error) {
	counts, err := s.repo.CountByCreator(ctx)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	if s.users != nil {
		ids := make([]string, 0, len(counts))
		for _, c := range counts {
			if c.UserID != nil {
				ids = append(ids, *c.UserID)
			}
		}
		if len(ids) > 0 {
			if names, err = s.users.NamesByID(ctx, ids); err != nil {
				return nil, err
			}
		}
	}

	shares := make([]CreatorShare, 0, len(counts))
	for _, c := range counts {
		share := CreatorShare{UserID: c.UserID, Name: UnassignedCreator, Count: c.Count}
		if c.UserID != nil {
			share.Name = names[*c.UserID]
		}
		shares = append(shares, share)
	}
	return shares, nil
}

// load serves key from the cache, or computes it once for every concurrent
// caller on a miss and caches the result. Callers must not mutate it.
func load[T any](ctx context.Context, s *ReportService, key string, compute func(context.Context) (T, error)) (T, error) {
	var result T
	if s.cached(ctx, key, &result) {
		return result, nil
	}
	generation := s.generation.Load()
	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		computed, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, generation, computed)
		return computed, nil
	})
	if err != nil {
		return result, err
	}
	return v.(T), nil
}

// Invalidate drops every cached report.
func (s *ReportService) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	s.generation.Add(1)
	for _, key := range reportKeys {
		s.flight.Forget(key)
	}
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "*"); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate report cache")
	}
}

// cached loads key into dest. Cache errors count as a miss.
func (s *ReportService) cached(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("report cache read failed")
		return false
	}
	return hit
}

// store caches value unless an Invalidate ran since generation was read.
func (s *ReportService) store(ctx context.Context, key string, generation uint64, value interface{}) {
	if s.cache == nil || s.generation.Load() != generation {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("report cache write failed")
		return
	}
	// an Invalidate that landed between the check and the write
	if s.generation.Load() != generation {
		if err := s.cache.DeletePattern(ctx, key); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to drop stale report")
		}
	}
}
