// Package risk holds the pure collateral/debt arithmetic: valuation,
// health factor and liquidation seizure math. Nothing here touches
// storage or oracles.
package risk

import (
	"github.com/shopspring/decimal"
)

// ValuePrecision decimal places kept after every multiplicative step.
// Truncation (round toward zero) everywhere, never rounding up.
const ValuePrecision = 8

var (
	// LiquidationThreshold share of collateral value counted toward solvency.
	LiquidationThreshold = decimal.New(5, -1)
	// LiquidationBonus premium paid to liquidators, in seized collateral.
	LiquidationBonus = decimal.New(1, -1)
	// CloseFactor max share of a vault's debt one liquidation may cover.
	CloseFactor = decimal.New(5, -1)
	// MinHealthFactor below this a vault is liquidatable.
	MinHealthFactor = decimal.New(1, 0)
	// MaxHealthFactor stands in for infinite solvency on debt-free vaults;
	// it compares greater than any reachable real health factor.
	MaxHealthFactor = decimal.New(1, 18)
)

// CollateralValue converts a token amount to its dollar value at price.
func CollateralValue(amount, price decimal.Decimal) decimal.Decimal {
	return amount.Mul(price).Truncate(ValuePrecision)
}

// AmountFromValue converts a dollar value back to a token amount at price.
// The price must be positive; the oracle layer guarantees that.
func AmountFromValue(value, price decimal.Decimal) decimal.Decimal {
	return value.Div(price).Truncate(ValuePrecision)
}

// AdjustedCollateral is the risk-weighted collateral value counted toward
// solvency.
func AdjustedCollateral(collateralValue decimal.Decimal) decimal.Decimal {
	return collateralValue.Mul(LiquidationThreshold).Truncate(ValuePrecision)
}

// HealthFactor is the single source of truth for solvency: risk-adjusted
// collateral value over debt. Zero debt yields MaxHealthFactor so pure
// collateral operations are always permitted.
func HealthFactor(debt, collateralValue decimal.Decimal) decimal.Decimal {
	if debt.LessThanOrEqual(decimal.Zero) {
		return MaxHealthFactor
	}

	return AdjustedCollateral(collateralValue).Div(debt).Truncate(ValuePrecision)
}

// IsHealthy reports whether hf clears the minimum health factor.
func IsHealthy(hf decimal.Decimal) bool {
	return hf.GreaterThanOrEqual(MinHealthFactor)
}

// Seizure returns the collateral seized for covering debtValue of debt at
// the collateral's price, split into the base amount and the liquidator
// bonus.
func Seizure(debtValue, price decimal.Decimal) (seized, bonus decimal.Decimal) {
	seized = AmountFromValue(debtValue, price)
	bonus = seized.Mul(LiquidationBonus).Truncate(ValuePrecision)
	return seized, bonus
}

// MaxClose is the largest debt slice one liquidation may cover.
func MaxClose(debt decimal.Decimal) decimal.Decimal {
	return debt.Mul(CloseFactor).Truncate(ValuePrecision)
}
