package price

import (
	"context"
	"time"

	"anchor/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type priceStore struct {
	db *db.DB
}

// New new price store
func New(db *db.DB) core.IPriceStore {
	return &priceStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Price{})
		if err := tx.AutoMigrate(core.Price{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *priceStore) Create(ctx context.Context, tx *db.DB, price *core.Price) error {
	return tx.Update().Create(price).Error
}

func (s *priceStore) FindLatest(ctx context.Context, assetID string) (*core.Price, error) {
	var price core.Price
	if err := s.db.View().Where("asset_id=?", assetID).Order("created_at DESC").First(&price).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Price{AssetID: assetID}, nil
		}
		return nil, err
	}

	return &price, nil
}

func (s *priceStore) DeleteBefore(ctx context.Context, t time.Time) error {
	return s.db.Update().Where("created_at < ?", t).Delete(core.Price{}).Error
}
