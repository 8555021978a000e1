package oracle

import (
	"context"

	"anchor/core"
)

// StoreFeed serves the most recent persisted quote for one asset; the
// pricesync worker keeps the store current.
type StoreFeed struct {
	assetID    string
	priceStore core.IPriceStore
}

// NewStoreFeed new store-backed price feed
func NewStoreFeed(assetID string, priceStore core.IPriceStore) core.PriceFeed {
	return &StoreFeed{
		assetID:    assetID,
		priceStore: priceStore,
	}
}

func (f *StoreFeed) LatestPrice(ctx context.Context) (*core.PriceData, error) {
	price, err := f.priceStore.FindLatest(ctx, f.assetID)
	if err != nil {
		return nil, err
	}

	if price.ID == 0 {
		return nil, core.ErrPriceNotAvailable
	}

	return &core.PriceData{
		Price:     price.Price,
		UpdatedAt: price.CreatedAt,
	}, nil
}
