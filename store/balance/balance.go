package balance

import (
	"context"

	"anchor/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type balanceStore struct {
	db *db.DB
}

// New new balance store
func New(db *db.DB) core.IBalanceStore {
	return &balanceStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Balance{})
		if err := tx.AutoMigrate(core.Balance{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *balanceStore) Find(ctx context.Context, userID, assetID string) (*core.Balance, error) {
	var balance core.Balance
	if err := s.db.View().Where("user_id=? and asset_id=?", userID, assetID).First(&balance).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Balance{UserID: userID, AssetID: assetID}, nil
		}
		return nil, err
	}

	return &balance, nil
}

func (s *balanceStore) Save(ctx context.Context, tx *db.DB, balance *core.Balance) error {
	return tx.Update().Create(balance).Error
}

func (s *balanceStore) Update(ctx context.Context, tx *db.DB, balance *core.Balance) error {
	version := balance.Version
	balance.Version++
	return tx.Update().Model(core.Balance{}).
		Where("user_id=? and asset_id=? and version=?", balance.UserID, balance.AssetID, version).
		Updates(map[string]interface{}{
			"amount":  balance.Amount,
			"version": balance.Version,
		}).Error
}
