package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Price one persisted oracle quote
type Price struct {
	ID        int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string          `sql:"size:36;index:price_asset_idx" json:"asset_id"`
	Price     decimal.Decimal `sql:"type:decimal(20,8)" json:"price"`
	Content   types.JSONText  `sql:"type:varchar(1024)" json:"content,omitempty"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// PriceTicker quote pulled from the oracle endpoint
type PriceTicker struct {
	Provider string          `json:"provider,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	Price    decimal.Decimal `json:"price,omitempty"`
}

// IPriceStore price store interface
type IPriceStore interface {
	Create(ctx context.Context, tx *db.DB, price *Price) error
	// FindLatest returns the most recent quote for assetID; ID == 0 when
	// no quote was ever written.
	FindLatest(ctx context.Context, assetID string) (*Price, error)
	DeleteBefore(ctx context.Context, t time.Time) error
}
