package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Collateral is one user's deposited balance of one approved token.
type Collateral struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string          `sql:"size:36;unique_index:collateral_idx" json:"user_id"`
	AssetID   string          `sql:"size:36;unique_index:collateral_idx" json:"asset_id"`
	Amount    decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ICollateralStore collateral store interface
type ICollateralStore interface {
	// Find returns the balance row for (userID, assetID). A row with
	// ID == 0 is returned when the user never deposited the token.
	Find(ctx context.Context, userID, assetID string) (*Collateral, error)
	FindByUser(ctx context.Context, userID string) ([]*Collateral, error)
	Save(ctx context.Context, tx *db.DB, collateral *Collateral) error
	Update(ctx context.Context, tx *db.DB, collateral *Collateral) error
}
