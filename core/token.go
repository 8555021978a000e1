package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// ITokenService moves collateral tokens between users and engine custody.
// Every failure must be treated as fatal to the enclosing action.
type ITokenService interface {
	// Pull moves amount of assetID from the user into engine custody.
	Pull(ctx context.Context, assetID, from string, amount decimal.Decimal) error
	// Push moves amount of assetID out of engine custody to the user.
	Push(ctx context.Context, assetID, to string, amount decimal.Decimal) error
}

// IDebtTokenService is the synthetic dollar token. The engine is its only
// mint and burn authority.
type IDebtTokenService interface {
	Mint(ctx context.Context, to string, amount decimal.Decimal) error
	// Pull moves amount of debt token from the user into engine custody,
	// typically right before a Burn.
	Pull(ctx context.Context, from string, amount decimal.Decimal) error
	// Burn destroys amount of debt token held in engine custody.
	Burn(ctx context.Context, amount decimal.Decimal) error
}

// Balance is one account's holding of one token, used by the in-process
// token adapter.
type Balance struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string          `sql:"size:36;unique_index:balance_idx" json:"user_id"`
	AssetID   string          `sql:"size:36;unique_index:balance_idx" json:"asset_id"`
	Amount    decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IBalanceStore balance store interface
type IBalanceStore interface {
	Find(ctx context.Context, userID, assetID string) (*Balance, error)
	Save(ctx context.Context, tx *db.DB, balance *Balance) error
	Update(ctx context.Context, tx *db.DB, balance *Balance) error
}
