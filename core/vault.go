package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Vault tracks the synthetic dollars a user has minted against collateral.
// A vault is created implicitly on first mint and decays to zero debt on
// full burn; it is never deleted.
type Vault struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string          `sql:"size:36;unique_index:vault_user_idx" json:"user_id"`
	Debt      decimal.Decimal `sql:"type:decimal(32,16)" json:"debt"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IVaultStore vault store interface
type IVaultStore interface {
	// Find returns the vault for userID. A vault with ID == 0 is returned
	// when the user has never minted.
	Find(ctx context.Context, userID string) (*Vault, error)
	Save(ctx context.Context, tx *db.DB, vault *Vault) error
	Update(ctx context.Context, tx *db.DB, vault *Vault) error
	// List returns vaults ordered by id, starting after fromID.
	List(ctx context.Context, fromID uint64, limit int) ([]*Vault, error)
}
