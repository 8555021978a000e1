package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// CollateralPosition is one token leg of an account summary.
type CollateralPosition struct {
	AssetID string          `json:"asset_id"`
	Symbol  string          `json:"symbol"`
	Amount  decimal.Decimal `json:"amount"`
	Value   decimal.Decimal `json:"value"`
}

// AccountSummary is the read-only view of one account.
type AccountSummary struct {
	UserID          string                `json:"user_id"`
	Debt            decimal.Decimal       `json:"debt"`
	CollateralValue decimal.Decimal       `json:"collateral_value"`
	HealthFactor    decimal.Decimal       `json:"health_factor"`
	Collaterals     []*CollateralPosition `json:"collaterals"`
}

// IEngine is the action protocol over the collateral/debt ledger. Every
// mutating action is atomic: it either commits in full or leaves no trace.
type IEngine interface {
	// Deposit locks amount of assetID from the caller as collateral.
	Deposit(ctx context.Context, userID, assetID string, amount decimal.Decimal) error
	// Mint creates amount of debt token against the caller's collateral.
	Mint(ctx context.Context, userID string, amount decimal.Decimal) error
	// DepositAndMint deposits then mints in one action.
	DepositAndMint(ctx context.Context, userID, assetID string, collateralAmount, debtAmount decimal.Decimal) error
	// Redeem returns amount of assetID collateral to the caller.
	Redeem(ctx context.Context, userID, assetID string, amount decimal.Decimal) error
	// Burn repays amount of the caller's minted debt.
	Burn(ctx context.Context, userID string, amount decimal.Decimal) error
	// RedeemAndBurn burns then redeems in one action.
	RedeemAndBurn(ctx context.Context, userID, assetID string, collateralAmount, debtAmount decimal.Decimal) error
	// Liquidate lets liquidator cover debtToCover of userID's debt in
	// exchange for a bonus-weighted slice of their assetID collateral.
	Liquidate(ctx context.Context, liquidator, userID, assetID string, debtToCover decimal.Decimal) error

	// HealthFactor of an arbitrary account.
	HealthFactor(ctx context.Context, userID string) (decimal.Decimal, error)
	// AccountSummary returns debt, collateral value and per-token balances.
	AccountSummary(ctx context.Context, userID string) (*AccountSummary, error)
	// CollateralValue is the oracle-priced dollar value of all collateral.
	CollateralValue(ctx context.Context, userID string) (decimal.Decimal, error)
	// CollateralBalance is the deposited amount of one token.
	CollateralBalance(ctx context.Context, userID, assetID string) (decimal.Decimal, error)
	// ValueOf converts a token amount to its dollar value.
	ValueOf(ctx context.Context, assetID string, amount decimal.Decimal) (decimal.Decimal, error)
	// AmountFrom converts a dollar value to a token amount.
	AmountFrom(ctx context.Context, assetID string, value decimal.Decimal) (decimal.Decimal, error)
}
