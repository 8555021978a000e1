package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	r, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return r
}

func TestCollateralValue(t *testing.T) {
	// 15 units at $2000 is worth $30000
	assert.True(t, CollateralValue(d("15"), d("2000")).Equal(d("30000")))
	assert.True(t, CollateralValue(d("0"), d("2000")).IsZero())
}

func TestAmountFromValue(t *testing.T) {
	// $100 of a $2000 token is 0.05 units
	assert.True(t, AmountFromValue(d("100"), d("2000")).Equal(d("0.05")))
}

func TestValueRoundTrip(t *testing.T) {
	tolerance := decimal.New(1, -ValuePrecision)

	for _, amount := range []string{"1", "0.33333333", "15", "2.71828182"} {
		price := d("1987.65")
		value := CollateralValue(d(amount), price)
		back := AmountFromValue(value, price)

		diff := back.Sub(d(amount)).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance), "amount %s round-tripped to %s", amount, back)
	}
}

func TestHealthFactor(t *testing.T) {
	// $20000 collateral, $100 debt: (20000 * 0.5) / 100 = 100
	hf := HealthFactor(d("100"), d("20000"))
	assert.True(t, hf.Equal(d("100")))
	assert.True(t, IsHealthy(hf))

	// threshold exactly met
	hf = HealthFactor(d("10000"), d("20000"))
	assert.True(t, hf.Equal(d("1")))
	assert.True(t, IsHealthy(hf))

	// below water
	hf = HealthFactor(d("10001"), d("20000"))
	assert.False(t, IsHealthy(hf))
}

func TestHealthFactorZeroDebt(t *testing.T) {
	hf := HealthFactor(decimal.Zero, d("20000"))
	assert.True(t, hf.Equal(MaxHealthFactor))
	assert.True(t, IsHealthy(hf))

	// no debt and no collateral is a valid terminal state
	hf = HealthFactor(decimal.Zero, decimal.Zero)
	assert.True(t, hf.Equal(MaxHealthFactor))
}

func TestSeizure(t *testing.T) {
	// covering $1000 of debt against a $2000 token seizes 0.5 plus a 10% bonus
	seized, bonus := Seizure(d("1000"), d("2000"))
	require.True(t, seized.Equal(d("0.5")))
	require.True(t, bonus.Equal(d("0.05")))
}

func TestMaxClose(t *testing.T) {
	assert.True(t, MaxClose(d("100")).Equal(d("50")))
	assert.True(t, MaxClose(decimal.Zero).IsZero())
}

func TestTruncationBias(t *testing.T) {
	// 1/3 at $3: values truncate down, never up
	value := CollateralValue(d("0.333333339"), d("3"))
	assert.True(t, value.Equal(d("1.00000001")), "got %s", value)
}
