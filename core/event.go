package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

const (
	// EventActionDeposit collateral entered engine custody
	EventActionDeposit = "deposit"
	// EventActionRedeem collateral left engine custody. ReceiverID may
	// differ from UserID: a liquidation debits the vault owner and pays
	// the liquidator.
	EventActionRedeem = "redeem"
)

const (
	// EventKeyDebtCovered debt repaid by a liquidation :decimal
	EventKeyDebtCovered = "debt_covered"
	// EventKeyBonus collateral bonus paid to the liquidator :decimal
	EventKeyBonus = "bonus"
)

// Event is an observable ledger movement.
type Event struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID    string          `sql:"size:36;unique_index:event_trace_idx" json:"trace_id"`
	Action     string          `sql:"size:16" json:"action"`
	UserID     string          `sql:"size:36;index:event_user_idx" json:"user_id"`
	ReceiverID string          `sql:"size:36" json:"receiver_id"`
	AssetID    string          `sql:"size:36" json:"asset_id"`
	Amount     decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Extra      types.JSONText  `sql:"type:varchar(1024)" json:"extra,omitempty"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// SetExtra marshals values into the event extra payload.
func (e *Event) SetExtra(values map[string]interface{}) error {
	bs, err := json.Marshal(values)
	if err != nil {
		return err
	}
	e.Extra = types.JSONText(bs)
	return nil
}

// IEventStore event store interface
type IEventStore interface {
	Create(ctx context.Context, tx *db.DB, event *Event) error
	List(ctx context.Context, offset time.Time, limit int) ([]*Event, error)
	ListByUser(ctx context.Context, userID string, offset time.Time, limit int) ([]*Event, error)
}
