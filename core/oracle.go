package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceData is one quote from a price feed.
type PriceData struct {
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PriceFeed is the latest-round read capability of one price oracle.
type PriceFeed interface {
	LatestPrice(ctx context.Context) (*PriceData, error)
}

// IPriceOracleService serves prices for approved tokens. Implementations
// must reject non-positive prices and quotes older than the staleness
// window; a failure here freezes every price-dependent action.
type IPriceOracleService interface {
	GetPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
}

// IPriceTickerService pulls fresh quotes from an external market data
// endpoint; the pricesync worker persists them for the store feeds.
type IPriceTickerService interface {
	PullPriceTicker(ctx context.Context, symbol string) (*PriceTicker, error)
}
