package oracle

import (
	"context"

	"anchor/core"
	"anchor/pkg/resthttp"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

// TickerService pulls spot quotes from a market data endpoint. When a
// provider allow list is set, quotes from other providers are dropped.
type TickerService struct {
	endpoint  string
	providers []string
}

// NewTickerService new ticker service
func NewTickerService(endpoint string, providers []string) core.IPriceTickerService {
	return &TickerService{
		endpoint:  endpoint,
		providers: providers,
	}
}

func (s *TickerService) PullPriceTicker(ctx context.Context, symbol string) (*core.PriceTicker, error) {
	r, err := resthttp.Request(ctx).
		SetQueryParam("symbol", symbol).
		Get(s.endpoint + "/prices")
	if err != nil {
		return nil, err
	}

	var tickers []*core.PriceTicker
	if err := resthttp.ParseResponse(r, &tickers); err != nil {
		return nil, err
	}

	for _, ticker := range tickers {
		if len(s.providers) > 0 && !govalidator.IsIn(ticker.Provider, s.providers...) {
			continue
		}

		if ticker.Symbol == symbol && ticker.Price.GreaterThan(decimal.Zero) {
			return ticker, nil
		}
	}

	return nil, core.ErrPriceNotAvailable
}
