package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"anchor/core"
	"anchor/internal/risk"
	"anchor/pkg/number"
	"anchor/service/oracle"
	"anchor/store/collateral"
	"anchor/store/event"
	"anchor/store/vault"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	btcAsset  = "btc-asset"
	ethAsset  = "eth-asset"
	debtAsset = "anc-asset"

	alice   = "alice"
	bob     = "bob"
	custody = "custody"
)

type fakeFeed struct {
	price     decimal.Decimal
	updatedAt time.Time
}

func (f *fakeFeed) LatestPrice(ctx context.Context) (*core.PriceData, error) {
	return &core.PriceData{Price: f.price, UpdatedAt: f.updatedAt}, nil
}

// fakeTokens is an in-memory collateral token adapter; pullHook lets a
// test inject failures or reentrant calls at the transfer boundary.
type fakeTokens struct {
	balances map[string]decimal.Decimal
	pullHook func(ctx context.Context) error
}

func balanceKey(assetID, userID string) string {
	return assetID + ":" + userID
}

func (f *fakeTokens) balance(assetID, userID string) decimal.Decimal {
	return f.balances[balanceKey(assetID, userID)]
}

func (f *fakeTokens) move(assetID, from, to string, amount decimal.Decimal) error {
	if f.balance(assetID, from).LessThan(amount) {
		return core.ErrTransferFailed
	}

	f.balances[balanceKey(assetID, from)] = f.balance(assetID, from).Sub(amount)
	f.balances[balanceKey(assetID, to)] = f.balance(assetID, to).Add(amount)
	return nil
}

func (f *fakeTokens) Pull(ctx context.Context, assetID, from string, amount decimal.Decimal) error {
	if f.pullHook != nil {
		if err := f.pullHook(ctx); err != nil {
			return err
		}
	}

	return f.move(assetID, from, custody, amount)
}

func (f *fakeTokens) Push(ctx context.Context, assetID, to string, amount decimal.Decimal) error {
	return f.move(assetID, custody, to, amount)
}

// fakeDebt is an in-memory debt token adapter tracking total supply.
type fakeDebt struct {
	tokens   *fakeTokens
	supply   decimal.Decimal
	mintHook func(ctx context.Context) error
}

func (f *fakeDebt) Mint(ctx context.Context, to string, amount decimal.Decimal) error {
	if f.mintHook != nil {
		if err := f.mintHook(ctx); err != nil {
			return err
		}
	}

	f.tokens.balances[balanceKey(debtAsset, to)] = f.tokens.balance(debtAsset, to).Add(amount)
	f.supply = f.supply.Add(amount)
	return nil
}

func (f *fakeDebt) Pull(ctx context.Context, from string, amount decimal.Decimal) error {
	return f.tokens.move(debtAsset, from, custody, amount)
}

func (f *fakeDebt) Burn(ctx context.Context, amount decimal.Decimal) error {
	if err := f.tokens.move(debtAsset, custody, "burned", amount); err != nil {
		return err
	}

	f.supply = f.supply.Sub(amount)
	return nil
}

type testEnv struct {
	eng         core.IEngine
	conn        *db.DB
	vaults      core.IVaultStore
	collaterals core.ICollateralStore
	events      core.IEventStore
	tokens      *fakeTokens
	debt        *fakeDebt
	btcFeed     *fakeFeed
	ethFeed     *fakeFeed
}

func newTestEnv(t *testing.T) *testEnv {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn := db.MustOpen(db.Config{
		Dialect:  "sqlite3",
		Host:     dsn,
		Database: dsn,
	})
	require.Nil(t, db.Migrate(conn))

	btcFeed := &fakeFeed{price: number.Decimal("2000"), updatedAt: time.Now()}
	ethFeed := &fakeFeed{price: number.Decimal("100"), updatedAt: time.Now()}

	registry, err := core.NewRegistry(
		[]string{btcAsset, ethAsset},
		[]string{"BTC", "ETH"},
		[]core.PriceFeed{btcFeed, ethFeed},
	)
	require.Nil(t, err)

	tokens := &fakeTokens{balances: map[string]decimal.Decimal{}}
	debt := &fakeDebt{tokens: tokens}

	env := &testEnv{
		conn:        conn,
		vaults:      vault.New(conn),
		collaterals: collateral.New(conn),
		events:      event.New(conn),
		tokens:      tokens,
		debt:        debt,
		btcFeed:     btcFeed,
		ethFeed:     ethFeed,
	}
	env.eng = New(conn, registry, env.vaults, env.collaterals, env.events, oracle.New(registry, time.Hour, 0), tokens, debt)
	return env
}

func (env *testEnv) seed(assetID, userID, amount string) {
	env.tokens.balances[balanceKey(assetID, userID)] = number.Decimal(amount)
}

func (env *testEnv) collateralAmount(t *testing.T, userID, assetID string) decimal.Decimal {
	c, err := env.collaterals.Find(context.Background(), userID, assetID)
	require.Nil(t, err)
	return c.Amount
}

func (env *testEnv) debtOf(t *testing.T, userID string) decimal.Decimal {
	v, err := env.vaults.Find(context.Background(), userID)
	require.Nil(t, err)
	return v.Debt
}

func TestDepositAndMintFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")

	require.Nil(t, env.eng.Deposit(ctx, alice, btcAsset, number.Decimal("1")))
	assert.Equal(t, "1", env.collateralAmount(t, alice, btcAsset).String())
	assert.Equal(t, "9", env.tokens.balance(btcAsset, alice).String())
	assert.Equal(t, "1", env.tokens.balance(btcAsset, custody).String())

	require.Nil(t, env.eng.Mint(ctx, alice, number.Decimal("500")))
	assert.Equal(t, "500", env.debtOf(t, alice).String())
	assert.Equal(t, "500", env.tokens.balance(debtAsset, alice).String())
	assert.Equal(t, "500", env.debt.supply.String())

	// 1 BTC * 2000 * 0.5 / 500
	hf, err := env.eng.HealthFactor(ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, "2", hf.String())

	summary, err := env.eng.AccountSummary(ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, "500", summary.Debt.String())
	assert.Equal(t, "2000", summary.CollateralValue.String())
	assert.Len(t, summary.Collaterals, 2)

	events, err := env.events.List(ctx, time.Time{}, 100)
	require.Nil(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, core.EventActionDeposit, events[0].Action)
	assert.Equal(t, alice, events[0].UserID)
}

func TestDepositRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")

	assert.ErrorIs(t, env.eng.Deposit(ctx, alice, btcAsset, decimal.Zero), core.ErrInvalidAmount)
	assert.ErrorIs(t, env.eng.Deposit(ctx, alice, btcAsset, number.Decimal("-1")), core.ErrInvalidAmount)
	assert.ErrorIs(t, env.eng.Deposit(ctx, alice, "doge-asset", number.Decimal("1")), core.ErrTokenNotAllowed)
}

func TestDepositRollbackOnTransferFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	// alice has nothing to pull

	err := env.eng.Deposit(ctx, alice, btcAsset, number.Decimal("1"))
	assert.ErrorIs(t, err, core.ErrTransferFailed)

	assert.True(t, env.collateralAmount(t, alice, btcAsset).IsZero())
	events, err := env.events.List(ctx, time.Time{}, 100)
	require.Nil(t, err)
	assert.Len(t, events, 0)
}

func TestMintInsolvent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")
	require.Nil(t, env.eng.Deposit(ctx, alice, btcAsset, number.Decimal("1")))

	// adjusted collateral is 1000; minting 1001 breaks the health factor
	err := env.eng.Mint(ctx, alice, number.Decimal("1001"))
	require.True(t, core.IsHealthFactorBroken(err))

	var herr *core.HealthFactorError
	require.ErrorAs(t, err, &herr)
	assert.True(t, herr.HealthFactor.LessThan(risk.MinHealthFactor))

	assert.True(t, env.debtOf(t, alice).IsZero())
	assert.True(t, env.tokens.balance(debtAsset, alice).IsZero())

	require.Nil(t, env.eng.Mint(ctx, alice, number.Decimal("1000")))
	assert.Equal(t, "1000", env.debtOf(t, alice).String())
}

func TestCompositeDepositAndMint(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")

	require.Nil(t, env.eng.DepositAndMint(ctx, alice, btcAsset, number.Decimal("2"), number.Decimal("1500")))
	assert.Equal(t, "2", env.collateralAmount(t, alice, btcAsset).String())
	assert.Equal(t, "1500", env.debtOf(t, alice).String())
	assert.Equal(t, "1500", env.tokens.balance(debtAsset, alice).String())
}

func TestCompositeDepositAndMintInsolvent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")

	// 2 BTC adjusted to 2000 cannot back 2001 of debt
	err := env.eng.DepositAndMint(ctx, alice, btcAsset, number.Decimal("2"), number.Decimal("2001"))
	require.True(t, core.IsHealthFactorBroken(err))

	// nothing moved, nothing written
	assert.Equal(t, "10", env.tokens.balance(btcAsset, alice).String())
	assert.True(t, env.collateralAmount(t, alice, btcAsset).IsZero())
	assert.True(t, env.debtOf(t, alice).IsZero())
}

func TestCompositeRollbackOnMintFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")
	env.debt.mintHook = func(ctx context.Context) error { return core.ErrMintFailed }

	err := env.eng.DepositAndMint(ctx, alice, btcAsset, number.Decimal("2"), number.Decimal("1000"))
	assert.ErrorIs(t, err, core.ErrMintFailed)

	assert.True(t, env.collateralAmount(t, alice, btcAsset).IsZero())
	assert.True(t, env.debtOf(t, alice).IsZero())
	events, err := env.events.List(ctx, time.Time{}, 100)
	require.Nil(t, err)
	assert.Len(t, events, 0)
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")
	require.Nil(t, env.eng.DepositAndMint(ctx, alice, btcAsset, number.Decimal("1"), number.Decimal("500")))

	// down to 0.6 BTC: adjusted 600 still covers 500
	require.Nil(t, env.eng.Redeem(ctx, alice, btcAsset, number.Decimal("0.4")))
	assert.Equal(t, "0.6", env.collateralAmount(t, alice, btcAsset).String())
	assert.Equal(t, "9.4", env.tokens.balance(btcAsset, alice).String())

	// 0.2 more would leave adjusted 400 under 500 of debt
	err := env.eng.Redeem(ctx, alice, btcAsset, number.Decimal("0.2"))
	require.True(t, core.IsHealthFactorBroken(err))
	assert.Equal(t, "0.6", env.collateralAmount(t, alice, btcAsset).String())

	assert.ErrorIs(t, env.eng.Redeem(ctx, alice, btcAsset, number.Decimal("2")), core.ErrInsufficientCollateral)
}

func TestBurn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")
	require.Nil(t, env.eng.DepositAndMint(ctx, alice, btcAsset, number.Decimal("1"), number.Decimal("500")))

	require.Nil(t, env.eng.Burn(ctx, alice, number.Decimal("200")))
	assert.Equal(t, "300", env.debtOf(t, alice).String())
	assert.Equal(t, "300", env.tokens.balance(debtAsset, alice).String())
	assert.Equal(t, "300", env.debt.supply.String())

	assert.ErrorIs(t, env.eng.Burn(ctx, alice, number.Decimal("400")), core.ErrInsufficientDebt)
}

func TestRedeemAndBurnFullExit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")
	require.Nil(t, env.eng.DepositAndMint(ctx, alice, btcAsset, number.Decimal("1"), number.Decimal("500")))

	require.Nil(t, env.eng.RedeemAndBurn(ctx, alice, btcAsset, number.Decimal("1"), number.Decimal("500")))
	assert.True(t, env.collateralAmount(t, alice, btcAsset).IsZero())
	assert.True(t, env.debtOf(t, alice).IsZero())
	assert.Equal(t, "10", env.tokens.balance(btcAsset, alice).String())
	assert.True(t, env.debt.supply.IsZero())

	hf, err := env.eng.HealthFactor(ctx, alice)
	require.Nil(t, err)
	assert.True(t, hf.Equal(risk.MaxHealthFactor))
}

func TestLiquidate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")
	require.Nil(t, env.eng.DepositAndMint(ctx, alice, btcAsset, number.Decimal("1"), number.Decimal("900")))

	// price crash puts alice under water: 750 adjusted vs 900 of debt
	env.btcFeed.price = number.Decimal("1500")
	env.btcFeed.updatedAt = time.Now()

	env.seed(debtAsset, bob, "500")
	env.debt.supply = env.debt.supply.Add(number.Decimal("500"))

	require.Nil(t, env.eng.Liquidate(ctx, bob, alice, btcAsset, number.Decimal("400")))

	// 400 / 1500 seized plus a 10% bonus
	assert.Equal(t, "0.29333332", env.tokens.balance(btcAsset, bob).String())
	assert.Equal(t, "0.70666668", env.collateralAmount(t, alice, btcAsset).String())
	assert.Equal(t, "500", env.debtOf(t, alice).String())
	assert.Equal(t, "100", env.tokens.balance(debtAsset, bob).String())
	assert.Equal(t, "1000", env.debt.supply.String())

	hf, err := env.eng.HealthFactor(ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, "1.06000002", hf.String())

	events, err := env.events.ListByUser(ctx, alice, time.Time{}, 100)
	require.Nil(t, err)
	require.Len(t, events, 2)
	seize := events[1]
	assert.Equal(t, core.EventActionRedeem, seize.Action)
	assert.Equal(t, alice, seize.UserID)
	assert.Equal(t, bob, seize.ReceiverID)
	assert.Equal(t, "0.29333332", seize.Amount.String())
}

func TestLiquidateRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")
	require.Nil(t, env.eng.DepositAndMint(ctx, alice, btcAsset, number.Decimal("1"), number.Decimal("900")))
	env.seed(debtAsset, bob, "900")

	// healthy position cannot be liquidated
	assert.ErrorIs(t, env.eng.Liquidate(ctx, bob, alice, btcAsset, number.Decimal("100")), core.ErrHealthFactorOk)

	env.btcFeed.price = number.Decimal("1500")
	env.btcFeed.updatedAt = time.Now()

	// close factor caps a single liquidation at half the debt
	assert.ErrorIs(t, env.eng.Liquidate(ctx, bob, alice, btcAsset, number.Decimal("460")), core.ErrExcessiveRepay)
	assert.Equal(t, "900", env.debtOf(t, alice).String())
}

func TestLiquidateNotImproved(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")
	require.Nil(t, env.eng.DepositAndMint(ctx, alice, btcAsset, number.Decimal("2"), number.Decimal("2000")))
	env.seed(debtAsset, bob, "1000")

	// deep crash: seizing bonus-weighted collateral hurts the position
	// more than the covered debt helps it
	env.btcFeed.price = number.Decimal("1000")
	env.btcFeed.updatedAt = time.Now()

	err := env.eng.Liquidate(ctx, bob, alice, btcAsset, number.Decimal("400"))
	assert.ErrorIs(t, err, core.ErrHealthFactorNotImproved)
	assert.Equal(t, "2000", env.debtOf(t, alice).String())
	assert.Equal(t, "2", env.collateralAmount(t, alice, btcAsset).String())
}

func TestLiquidateInsufficientCollateral(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")
	require.Nil(t, env.eng.DepositAndMint(ctx, alice, btcAsset, number.Decimal("2"), number.Decimal("2000")))
	env.seed(debtAsset, bob, "1000")

	// covering 1000 at price 500 would seize 2.2 BTC from a 2 BTC position
	env.btcFeed.price = number.Decimal("500")
	env.btcFeed.updatedAt = time.Now()

	err := env.eng.Liquidate(ctx, bob, alice, btcAsset, number.Decimal("1000"))
	assert.ErrorIs(t, err, core.ErrInsufficientCollateral)
}

func TestStalePriceFreezesActions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")
	env.seed(ethAsset, alice, "10")
	require.Nil(t, env.eng.DepositAndMint(ctx, alice, btcAsset, number.Decimal("1"), number.Decimal("500")))

	// one stale feed freezes every price-dependent action, including
	// those touching only the other token
	env.ethFeed.updatedAt = time.Now().Add(-4 * time.Hour)

	assert.ErrorIs(t, env.eng.Mint(ctx, alice, number.Decimal("1")), core.ErrStalePrice)
	assert.ErrorIs(t, env.eng.Redeem(ctx, alice, btcAsset, number.Decimal("0.1")), core.ErrStalePrice)
	assert.ErrorIs(t, env.eng.Burn(ctx, alice, number.Decimal("1")), core.ErrStalePrice)
	assert.ErrorIs(t, env.eng.Liquidate(ctx, bob, alice, btcAsset, number.Decimal("1")), core.ErrStalePrice)
	_, err := env.eng.HealthFactor(ctx, alice)
	assert.ErrorIs(t, err, core.ErrStalePrice)

	// deposits price nothing and stay open
	require.Nil(t, env.eng.Deposit(ctx, alice, ethAsset, number.Decimal("1")))
}

func TestReentrantCallRejected(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(btcAsset, alice, "10")

	var reentrantErr error
	env.tokens.pullHook = func(ctx context.Context) error {
		reentrantErr = env.eng.Mint(ctx, alice, number.Decimal("1"))
		return reentrantErr
	}

	err := env.eng.Deposit(ctx, alice, btcAsset, number.Decimal("1"))
	assert.ErrorIs(t, err, core.ErrTransferFailed)
	assert.ErrorIs(t, reentrantErr, core.ErrReentrantCall)

	// the aborted action left no trace
	assert.True(t, env.collateralAmount(t, alice, btcAsset).IsZero())
	assert.Equal(t, "10", env.tokens.balance(btcAsset, alice).String())

	// and the guard is released afterwards
	env.tokens.pullHook = nil
	require.Nil(t, env.eng.Deposit(ctx, alice, btcAsset, number.Decimal("1")))
}

func TestValueConversions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	value, err := env.eng.ValueOf(ctx, ethAsset, number.Decimal("15"))
	require.Nil(t, err)
	assert.Equal(t, "1500", value.String())

	amount, err := env.eng.AmountFrom(ctx, btcAsset, number.Decimal("100"))
	require.Nil(t, err)
	assert.Equal(t, "0.05", amount.String())

	_, err = env.eng.ValueOf(ctx, "doge-asset", number.Decimal("1"))
	assert.ErrorIs(t, err, core.ErrTokenNotAllowed)

	balance, err := env.eng.CollateralBalance(ctx, alice, btcAsset)
	require.Nil(t, err)
	assert.True(t, balance.IsZero())
	_, err = env.eng.CollateralBalance(ctx, alice, "doge-asset")
	assert.ErrorIs(t, err, core.ErrTokenNotAllowed)
}
