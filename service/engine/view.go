package engine

import (
	"context"

	"anchor/core"
	"anchor/internal/risk"

	"github.com/shopspring/decimal"
)

// HealthFactor of an arbitrary account.
func (e *Engine) HealthFactor(ctx context.Context, userID string) (decimal.Decimal, error) {
	vault, _, totalValue, err := e.accountState(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	return risk.HealthFactor(vault.Debt, totalValue), nil
}

// AccountSummary returns debt, collateral value and per-token balances.
func (e *Engine) AccountSummary(ctx context.Context, userID string) (*core.AccountSummary, error) {
	vault, positions, totalValue, err := e.accountState(ctx, userID)
	if err != nil {
		return nil, err
	}

	collaterals := make([]*core.CollateralPosition, 0, len(positions))
	for _, pos := range positions {
		collaterals = append(collaterals, &core.CollateralPosition{
			AssetID: pos.token.AssetID,
			Symbol:  pos.token.Symbol,
			Amount:  pos.collateral.Amount,
			Value:   pos.value,
		})
	}

	return &core.AccountSummary{
		UserID:          userID,
		Debt:            vault.Debt,
		CollateralValue: totalValue,
		HealthFactor:    risk.HealthFactor(vault.Debt, totalValue),
		Collaterals:     collaterals,
	}, nil
}

// CollateralValue is the oracle-priced dollar value of all collateral.
func (e *Engine) CollateralValue(ctx context.Context, userID string) (decimal.Decimal, error) {
	_, _, totalValue, err := e.accountState(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	return totalValue, nil
}

// CollateralBalance is the deposited amount of one token.
func (e *Engine) CollateralBalance(ctx context.Context, userID, assetID string) (decimal.Decimal, error) {
	if !e.registry.Has(assetID) {
		return decimal.Zero, core.ErrTokenNotAllowed
	}

	collateral, err := e.collaterals.Find(ctx, userID, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	return collateral.Amount, nil
}

// ValueOf converts a token amount to its dollar value.
func (e *Engine) ValueOf(ctx context.Context, assetID string, amount decimal.Decimal) (decimal.Decimal, error) {
	price, err := e.prices.GetPrice(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	return risk.CollateralValue(amount, price), nil
}

// AmountFrom converts a dollar value to a token amount.
func (e *Engine) AmountFrom(ctx context.Context, assetID string, value decimal.Decimal) (decimal.Decimal, error) {
	price, err := e.prices.GetPrice(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	return risk.AmountFromValue(value, price), nil
}
