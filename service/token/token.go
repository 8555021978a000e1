package token

import (
	"context"

	"anchor/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Service is an in-process fungible-token adapter for single-node
// deployments: balances live in the balance store, custody is the
// system custody account. Engine tests substitute their own fakes.
type Service struct {
	db        *db.DB
	system    *core.System
	balances  core.IBalanceStore
	debtAsset string
}

// New new token service
func New(db *db.DB, system *core.System, balances core.IBalanceStore, debtAsset string) *Service {
	return &Service{
		db:        db,
		system:    system,
		balances:  balances,
		debtAsset: debtAsset,
	}
}

// Pull moves amount of assetID from the user into engine custody.
func (s *Service) Pull(ctx context.Context, assetID, from string, amount decimal.Decimal) error {
	return s.move(ctx, assetID, from, s.system.CustodyID, amount)
}

// Push moves amount of assetID out of engine custody to the user.
func (s *Service) Push(ctx context.Context, assetID, to string, amount decimal.Decimal) error {
	return s.move(ctx, assetID, s.system.CustodyID, to, amount)
}

// Debt exposes the debt-token capability of the same balance table.
func (s *Service) Debt() core.IDebtTokenService {
	return &debtService{s}
}

type debtService struct {
	tokens *Service
}

func (s *debtService) Mint(ctx context.Context, to string, amount decimal.Decimal) error {
	if err := s.tokens.credit(ctx, s.tokens.debtAsset, to, amount); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("debt mint failed")
		return core.ErrMintFailed
	}

	return nil
}

func (s *debtService) Pull(ctx context.Context, from string, amount decimal.Decimal) error {
	return s.tokens.move(ctx, s.tokens.debtAsset, from, s.tokens.system.CustodyID, amount)
}

func (s *debtService) Burn(ctx context.Context, amount decimal.Decimal) error {
	return s.tokens.debit(ctx, s.tokens.debtAsset, s.tokens.system.CustodyID, amount)
}

func (s *Service) move(ctx context.Context, assetID, from, to string, amount decimal.Decimal) error {
	err := s.db.Tx(func(tx *db.DB) error {
		if err := s.debitTx(ctx, tx, assetID, from, amount); err != nil {
			return err
		}

		return s.creditTx(ctx, tx, assetID, to, amount)
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).
			Errorf("token move failed: %s %s -> %s", assetID, from, to)
		return core.ErrTransferFailed
	}

	return nil
}

func (s *Service) credit(ctx context.Context, assetID, userID string, amount decimal.Decimal) error {
	return s.db.Tx(func(tx *db.DB) error {
		return s.creditTx(ctx, tx, assetID, userID, amount)
	})
}

func (s *Service) debit(ctx context.Context, assetID, userID string, amount decimal.Decimal) error {
	err := s.db.Tx(func(tx *db.DB) error {
		return s.debitTx(ctx, tx, assetID, userID, amount)
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorf("token debit failed: %s %s", assetID, userID)
		return core.ErrTransferFailed
	}

	return nil
}

func (s *Service) creditTx(ctx context.Context, tx *db.DB, assetID, userID string, amount decimal.Decimal) error {
	balance, err := s.balances.Find(ctx, userID, assetID)
	if err != nil {
		return err
	}

	balance.Amount = balance.Amount.Add(amount)
	if balance.ID == 0 {
		return s.balances.Save(ctx, tx, balance)
	}

	return s.balances.Update(ctx, tx, balance)
}

func (s *Service) debitTx(ctx context.Context, tx *db.DB, assetID, userID string, amount decimal.Decimal) error {
	balance, err := s.balances.Find(ctx, userID, assetID)
	if err != nil {
		return err
	}

	if balance.Amount.LessThan(amount) {
		return core.ErrTransferFailed
	}

	balance.Amount = balance.Amount.Sub(amount)
	if balance.ID == 0 {
		return s.balances.Save(ctx, tx, balance)
	}

	return s.balances.Update(ctx, tx, balance)
}
