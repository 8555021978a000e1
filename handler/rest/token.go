package rest

import (
	"net/http"

	"anchor/core"
	"anchor/handler/render"
	"anchor/handler/views"

	"github.com/shopspring/decimal"
)

func tokensHandler(registry *core.Registry, priceSrv core.IPriceOracleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokens := registry.Tokens()
		tokenViews := make([]*views.Token, 0, len(tokens))
		for _, token := range tokens {
			// a frozen feed should not break the listing
			price, err := priceSrv.GetPrice(ctx, token.AssetID)
			if err != nil {
				price = decimal.Zero
			}

			tokenViews = append(tokenViews, &views.Token{
				AssetID: token.AssetID,
				Symbol:  token.Symbol,
				Price:   price,
			})
		}

		render.JSON(w, tokenViews)
	}
}
