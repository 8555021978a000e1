package oracle

import (
	"context"
	"time"

	"anchor/core"

	"github.com/bluele/gcache"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultStaleAfter quotes older than this freeze all price-dependent
// actions.
const DefaultStaleAfter = 3 * time.Hour

// PriceService serves staleness-checked prices for registry tokens, with a
// short-lived in-process cache in front of the feeds.
type PriceService struct {
	registry   *core.Registry
	staleAfter time.Duration
	cacheTTL   time.Duration
	cache      gcache.Cache
	sf         singleflight.Group
}

// New new oracle price service. A non-positive staleAfter falls back to
// DefaultStaleAfter; a non-positive cacheTTL disables caching.
func New(registry *core.Registry, staleAfter, cacheTTL time.Duration) core.IPriceOracleService {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	return &PriceService{
		registry:   registry,
		staleAfter: staleAfter,
		cacheTTL:   cacheTTL,
		cache:      gcache.New(64).LRU().Build(),
	}
}

// GetPrice returns the current price of assetID, rejecting unapproved
// tokens, non-positive prices and quotes outside the staleness window.
func (s *PriceService) GetPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	feed, ok := s.registry.Feed(assetID)
	if !ok {
		return decimal.Zero, core.ErrTokenNotAllowed
	}

	if s.cacheTTL > 0 {
		if v, err := s.cache.Get(assetID); err == nil {
			if price, ok := v.(decimal.Decimal); ok {
				return price, nil
			}
		}
	}

	v, err, _ := s.sf.Do(assetID, func() (interface{}, error) {
		price, err := s.fetch(ctx, feed)
		if err != nil {
			return nil, err
		}

		if s.cacheTTL > 0 {
			s.cache.SetWithExpire(assetID, price, s.cacheTTL)
		}

		return price, nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return v.(decimal.Decimal), nil
}

func (s *PriceService) fetch(ctx context.Context, feed core.PriceFeed) (decimal.Decimal, error) {
	data, err := feed.LatestPrice(ctx)
	if err != nil {
		return decimal.Zero, core.ErrPriceNotAvailable
	}

	if data.Price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, core.ErrInvalidPrice
	}

	if time.Since(data.UpdatedAt) > s.staleAfter {
		return decimal.Zero, core.ErrStalePrice
	}

	return data.Price, nil
}
