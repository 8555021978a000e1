package views

import (
	"github.com/shopspring/decimal"
)

// Token approved collateral token view
type Token struct {
	AssetID string          `json:"asset_id"`
	Symbol  string          `json:"symbol"`
	Price   decimal.Decimal `json:"price"`
}
