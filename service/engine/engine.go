package engine

import (
	"context"
	"sync/atomic"
	"time"

	"anchor/core"
	"anchor/internal/risk"
	"anchor/pkg/id"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

// Engine is the action protocol over the collateral/debt ledger.
//
// Every mutating action runs under a mutual-exclusion guard and follows
// check -> effect -> interaction ordering: validations and health-factor
// checks on the prospective state first, then one db transaction holding
// the ledger writes, with the external token interactions ordered last
// inside it so that any failure rolls the ledger back.
type Engine struct {
	db          *db.DB
	registry    *core.Registry
	vaults      core.IVaultStore
	collaterals core.ICollateralStore
	events      core.IEventStore
	prices      core.IPriceOracleService
	tokens      core.ITokenService
	debtToken   core.IDebtTokenService

	entered int32
}

// New new engine
func New(
	db *db.DB,
	registry *core.Registry,
	vaults core.IVaultStore,
	collaterals core.ICollateralStore,
	events core.IEventStore,
	prices core.IPriceOracleService,
	tokens core.ITokenService,
	debtToken core.IDebtTokenService,
) core.IEngine {
	return &Engine{
		db:          db,
		registry:    registry,
		vaults:      vaults,
		collaterals: collaterals,
		events:      events,
		prices:      prices,
		tokens:      tokens,
		debtToken:   debtToken,
	}
}

// enter rejects any overlapping entry into a mutating action. The engine
// is serialized, atomic per call; a token hook calling back in while an
// action is in flight fails here before touching any state.
func (e *Engine) enter() (func(), error) {
	if !atomic.CompareAndSwapInt32(&e.entered, 0, 1) {
		return nil, core.ErrReentrantCall
	}

	return func() { atomic.StoreInt32(&e.entered, 0) }, nil
}

// position is one priced collateral leg of an account.
type position struct {
	token      *core.Token
	collateral *core.Collateral
	price      decimal.Decimal
	value      decimal.Decimal
}

// accountState prices every approved token in registry order, zero
// balances included. A single stale or broken feed fails the whole read:
// the engine freezes rather than act on bad prices.
func (e *Engine) accountState(ctx context.Context, userID string) (*core.Vault, []*position, decimal.Decimal, error) {
	vault, err := e.vaults.Find(ctx, userID)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}

	positions := make([]*position, 0, len(e.registry.Tokens()))
	total := decimal.Zero

	for _, token := range e.registry.Tokens() {
		price, err := e.prices.GetPrice(ctx, token.AssetID)
		if err != nil {
			return nil, nil, decimal.Zero, err
		}

		collateral, err := e.collaterals.Find(ctx, userID, token.AssetID)
		if err != nil {
			return nil, nil, decimal.Zero, err
		}

		value := risk.CollateralValue(collateral.Amount, price)
		total = total.Add(value)

		positions = append(positions, &position{
			token:      token,
			collateral: collateral,
			price:      price,
			value:      value,
		})
	}

	return vault, positions, total, nil
}

func findPosition(positions []*position, assetID string) *position {
	for _, pos := range positions {
		if pos.token.AssetID == assetID {
			return pos
		}
	}

	return nil
}

func assertSolvent(debt, collateralValue decimal.Decimal) error {
	hf := risk.HealthFactor(debt, collateralValue)
	if !risk.IsHealthy(hf) {
		return &core.HealthFactorError{HealthFactor: hf}
	}

	return nil
}

func (e *Engine) applyCollateral(ctx context.Context, tx *db.DB, collateral *core.Collateral) error {
	if collateral.ID == 0 {
		return e.collaterals.Save(ctx, tx, collateral)
	}

	return e.collaterals.Update(ctx, tx, collateral)
}

func (e *Engine) applyVault(ctx context.Context, tx *db.DB, vault *core.Vault) error {
	if vault.ID == 0 {
		return e.vaults.Save(ctx, tx, vault)
	}

	return e.vaults.Update(ctx, tx, vault)
}

// Deposit locks amount of assetID from the caller as collateral. Deposits
// can only improve solvency, so no health check is needed.
func (e *Engine) Deposit(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	release, err := e.enter()
	if err != nil {
		return err
	}
	defer release()

	if amount.LessThanOrEqual(decimal.Zero) {
		return core.ErrInvalidAmount
	}
	if !e.registry.Has(assetID) {
		return core.ErrTokenNotAllowed
	}

	log := logger.FromContext(ctx).WithField("engine", "deposit")

	collateral, err := e.collaterals.Find(ctx, userID, assetID)
	if err != nil {
		return err
	}

	return e.db.Tx(func(tx *db.DB) error {
		collateral.Amount = collateral.Amount.Add(amount)
		if err := e.applyCollateral(ctx, tx, collateral); err != nil {
			return err
		}

		event := &core.Event{
			TraceID:    id.GenTraceID(),
			Action:     core.EventActionDeposit,
			UserID:     userID,
			ReceiverID: userID,
			AssetID:    assetID,
			Amount:     amount,
			CreatedAt:  time.Now(),
		}
		if err := e.events.Create(ctx, tx, event); err != nil {
			return err
		}

		if err := e.tokens.Pull(ctx, assetID, userID, amount); err != nil {
			log.WithError(err).Errorln("pull collateral failed")
			return core.ErrTransferFailed
		}

		return nil
	})
}

// Mint creates amount of debt token against the caller's collateral.
func (e *Engine) Mint(ctx context.Context, userID string, amount decimal.Decimal) error {
	release, err := e.enter()
	if err != nil {
		return err
	}
	defer release()

	return e.mint(ctx, userID, amount)
}

func (e *Engine) mint(ctx context.Context, userID string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return core.ErrInvalidAmount
	}

	log := logger.FromContext(ctx).WithField("engine", "mint")

	vault, _, totalValue, err := e.accountState(ctx, userID)
	if err != nil {
		return err
	}

	debt := vault.Debt.Add(amount)
	if err := assertSolvent(debt, totalValue); err != nil {
		return err
	}

	return e.db.Tx(func(tx *db.DB) error {
		vault.Debt = debt
		if err := e.applyVault(ctx, tx, vault); err != nil {
			return err
		}

		if err := e.debtToken.Mint(ctx, userID, amount); err != nil {
			log.WithError(err).Errorln("debt mint failed")
			return core.ErrMintFailed
		}

		return nil
	})
}

// DepositAndMint deposits then mints in one atomic action.
func (e *Engine) DepositAndMint(ctx context.Context, userID, assetID string, collateralAmount, debtAmount decimal.Decimal) error {
	release, err := e.enter()
	if err != nil {
		return err
	}
	defer release()

	if collateralAmount.LessThanOrEqual(decimal.Zero) || debtAmount.LessThanOrEqual(decimal.Zero) {
		return core.ErrInvalidAmount
	}
	if !e.registry.Has(assetID) {
		return core.ErrTokenNotAllowed
	}

	log := logger.FromContext(ctx).WithField("engine", "deposit_mint")

	vault, positions, totalValue, err := e.accountState(ctx, userID)
	if err != nil {
		return err
	}

	pos := findPosition(positions, assetID)
	debt := vault.Debt.Add(debtAmount)
	newValue := totalValue.Add(risk.CollateralValue(collateralAmount, pos.price))
	if err := assertSolvent(debt, newValue); err != nil {
		return err
	}

	traceID := id.GenTraceID()

	return e.db.Tx(func(tx *db.DB) error {
		pos.collateral.Amount = pos.collateral.Amount.Add(collateralAmount)
		if err := e.applyCollateral(ctx, tx, pos.collateral); err != nil {
			return err
		}

		vault.Debt = debt
		if err := e.applyVault(ctx, tx, vault); err != nil {
			return err
		}

		event := &core.Event{
			TraceID:    foxuuid.Modify(traceID, "deposit"),
			Action:     core.EventActionDeposit,
			UserID:     userID,
			ReceiverID: userID,
			AssetID:    assetID,
			Amount:     collateralAmount,
			CreatedAt:  time.Now(),
		}
		if err := e.events.Create(ctx, tx, event); err != nil {
			return err
		}

		if err := e.tokens.Pull(ctx, assetID, userID, collateralAmount); err != nil {
			log.WithError(err).Errorln("pull collateral failed")
			return core.ErrTransferFailed
		}

		if err := e.debtToken.Mint(ctx, userID, debtAmount); err != nil {
			log.WithError(err).Errorln("debt mint failed")
			return core.ErrMintFailed
		}

		return nil
	})
}

// Redeem returns amount of assetID collateral to the caller.
func (e *Engine) Redeem(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	release, err := e.enter()
	if err != nil {
		return err
	}
	defer release()

	return e.redeem(ctx, userID, assetID, amount)
}

func (e *Engine) redeem(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return core.ErrInvalidAmount
	}
	if !e.registry.Has(assetID) {
		return core.ErrTokenNotAllowed
	}

	log := logger.FromContext(ctx).WithField("engine", "redeem")

	vault, positions, totalValue, err := e.accountState(ctx, userID)
	if err != nil {
		return err
	}

	pos := findPosition(positions, assetID)
	if pos.collateral.Amount.LessThan(amount) {
		return core.ErrInsufficientCollateral
	}

	newValue := totalValue.Sub(risk.CollateralValue(amount, pos.price))
	if err := assertSolvent(vault.Debt, newValue); err != nil {
		return err
	}

	return e.db.Tx(func(tx *db.DB) error {
		pos.collateral.Amount = pos.collateral.Amount.Sub(amount)
		if err := e.applyCollateral(ctx, tx, pos.collateral); err != nil {
			return err
		}

		event := &core.Event{
			TraceID:    id.GenTraceID(),
			Action:     core.EventActionRedeem,
			UserID:     userID,
			ReceiverID: userID,
			AssetID:    assetID,
			Amount:     amount,
			CreatedAt:  time.Now(),
		}
		if err := e.events.Create(ctx, tx, event); err != nil {
			return err
		}

		if err := e.tokens.Push(ctx, assetID, userID, amount); err != nil {
			log.WithError(err).Errorln("push collateral failed")
			return core.ErrTransferFailed
		}

		return nil
	})
}

// Burn repays amount of the caller's minted debt.
func (e *Engine) Burn(ctx context.Context, userID string, amount decimal.Decimal) error {
	release, err := e.enter()
	if err != nil {
		return err
	}
	defer release()

	return e.burn(ctx, userID, amount)
}

func (e *Engine) burn(ctx context.Context, userID string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return core.ErrInvalidAmount
	}

	log := logger.FromContext(ctx).WithField("engine", "burn")

	vault, _, totalValue, err := e.accountState(ctx, userID)
	if err != nil {
		return err
	}

	if vault.Debt.LessThan(amount) {
		return core.ErrInsufficientDebt
	}

	// Burning strictly reduces debt, so this check should never fire;
	// kept for defense in depth.
	debt := vault.Debt.Sub(amount)
	if err := assertSolvent(debt, totalValue); err != nil {
		return err
	}

	return e.db.Tx(func(tx *db.DB) error {
		vault.Debt = debt
		if err := e.applyVault(ctx, tx, vault); err != nil {
			return err
		}

		if err := e.debtToken.Pull(ctx, userID, amount); err != nil {
			log.WithError(err).Errorln("pull debt token failed")
			return core.ErrTransferFailed
		}

		if err := e.debtToken.Burn(ctx, amount); err != nil {
			log.WithError(err).Errorln("debt burn failed")
			return core.ErrTransferFailed
		}

		return nil
	})
}

// RedeemAndBurn burns then redeems in one atomic action.
func (e *Engine) RedeemAndBurn(ctx context.Context, userID, assetID string, collateralAmount, debtAmount decimal.Decimal) error {
	release, err := e.enter()
	if err != nil {
		return err
	}
	defer release()

	if collateralAmount.LessThanOrEqual(decimal.Zero) || debtAmount.LessThanOrEqual(decimal.Zero) {
		return core.ErrInvalidAmount
	}
	if !e.registry.Has(assetID) {
		return core.ErrTokenNotAllowed
	}

	log := logger.FromContext(ctx).WithField("engine", "redeem_burn")

	vault, positions, totalValue, err := e.accountState(ctx, userID)
	if err != nil {
		return err
	}

	if vault.Debt.LessThan(debtAmount) {
		return core.ErrInsufficientDebt
	}

	pos := findPosition(positions, assetID)
	if pos.collateral.Amount.LessThan(collateralAmount) {
		return core.ErrInsufficientCollateral
	}

	debt := vault.Debt.Sub(debtAmount)
	newValue := totalValue.Sub(risk.CollateralValue(collateralAmount, pos.price))
	if err := assertSolvent(debt, newValue); err != nil {
		return err
	}

	traceID := id.GenTraceID()

	return e.db.Tx(func(tx *db.DB) error {
		vault.Debt = debt
		if err := e.applyVault(ctx, tx, vault); err != nil {
			return err
		}

		pos.collateral.Amount = pos.collateral.Amount.Sub(collateralAmount)
		if err := e.applyCollateral(ctx, tx, pos.collateral); err != nil {
			return err
		}

		event := &core.Event{
			TraceID:    foxuuid.Modify(traceID, "redeem"),
			Action:     core.EventActionRedeem,
			UserID:     userID,
			ReceiverID: userID,
			AssetID:    assetID,
			Amount:     collateralAmount,
			CreatedAt:  time.Now(),
		}
		if err := e.events.Create(ctx, tx, event); err != nil {
			return err
		}

		if err := e.debtToken.Pull(ctx, userID, debtAmount); err != nil {
			log.WithError(err).Errorln("pull debt token failed")
			return core.ErrTransferFailed
		}

		if err := e.debtToken.Burn(ctx, debtAmount); err != nil {
			log.WithError(err).Errorln("debt burn failed")
			return core.ErrTransferFailed
		}

		if err := e.tokens.Push(ctx, assetID, userID, collateralAmount); err != nil {
			log.WithError(err).Errorln("push collateral failed")
			return core.ErrTransferFailed
		}

		return nil
	})
}

// Liquidate lets liquidator cover part of an undercollateralized user's
// debt in exchange for a bonus-weighted slice of their collateral.
func (e *Engine) Liquidate(ctx context.Context, liquidator, userID, assetID string, debtToCover decimal.Decimal) error {
	release, err := e.enter()
	if err != nil {
		return err
	}
	defer release()

	if debtToCover.LessThanOrEqual(decimal.Zero) {
		return core.ErrInvalidAmount
	}
	if !e.registry.Has(assetID) {
		return core.ErrTokenNotAllowed
	}

	log := logger.FromContext(ctx).WithField("engine", "liquidate")

	vault, positions, totalValue, err := e.accountState(ctx, userID)
	if err != nil {
		return err
	}

	startHF := risk.HealthFactor(vault.Debt, totalValue)
	if risk.IsHealthy(startHF) {
		return core.ErrHealthFactorOk
	}

	if vault.Debt.LessThan(debtToCover) {
		return core.ErrInsufficientDebt
	}
	if debtToCover.GreaterThan(risk.MaxClose(vault.Debt)) {
		return core.ErrExcessiveRepay
	}

	pos := findPosition(positions, assetID)
	seized, bonus := risk.Seizure(debtToCover, pos.price)
	total := seized.Add(bonus)
	if pos.collateral.Amount.LessThan(total) {
		// the position is too far under water for a bonus-paying
		// liquidation; a known limitation of the bonus design
		return core.ErrInsufficientCollateral
	}

	debt := vault.Debt.Sub(debtToCover)
	newValue := totalValue.Sub(risk.CollateralValue(total, pos.price))
	endHF := risk.HealthFactor(debt, newValue)
	if endHF.LessThanOrEqual(startHF) {
		return core.ErrHealthFactorNotImproved
	}

	liquidatorVault, _, liquidatorValue, err := e.accountState(ctx, liquidator)
	if err != nil {
		return err
	}
	if err := assertSolvent(liquidatorVault.Debt, liquidatorValue); err != nil {
		return err
	}

	log.Infof("user:%s liquidator:%s cover:%s seize:%s bonus:%s hf:%s->%s",
		userID, liquidator, debtToCover, seized, bonus, startHF, endHF)

	traceID := id.GenTraceID()

	return e.db.Tx(func(tx *db.DB) error {
		pos.collateral.Amount = pos.collateral.Amount.Sub(total)
		if err := e.applyCollateral(ctx, tx, pos.collateral); err != nil {
			return err
		}

		vault.Debt = debt
		if err := e.applyVault(ctx, tx, vault); err != nil {
			return err
		}

		event := &core.Event{
			TraceID:    foxuuid.Modify(traceID, "seize"),
			Action:     core.EventActionRedeem,
			UserID:     userID,
			ReceiverID: liquidator,
			AssetID:    assetID,
			Amount:     total,
			CreatedAt:  time.Now(),
		}
		if err := event.SetExtra(map[string]interface{}{
			core.EventKeyDebtCovered: debtToCover,
			core.EventKeyBonus:       bonus,
		}); err != nil {
			return err
		}
		if err := e.events.Create(ctx, tx, event); err != nil {
			return err
		}

		if err := e.debtToken.Pull(ctx, liquidator, debtToCover); err != nil {
			log.WithError(err).Errorln("pull debt token failed")
			return core.ErrTransferFailed
		}

		if err := e.debtToken.Burn(ctx, debtToCover); err != nil {
			log.WithError(err).Errorln("debt burn failed")
			return core.ErrTransferFailed
		}

		if err := e.tokens.Push(ctx, assetID, liquidator, total); err != nil {
			log.WithError(err).Errorln("push collateral failed")
			return core.ErrTransferFailed
		}

		return nil
	})
}
