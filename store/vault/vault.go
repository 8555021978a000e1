package vault

import (
	"context"

	"anchor/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type vaultStore struct {
	db *db.DB
}

// New new vault store
func New(db *db.DB) core.IVaultStore {
	return &vaultStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Vault{})
		if err := tx.AutoMigrate(core.Vault{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *vaultStore) Find(ctx context.Context, userID string) (*core.Vault, error) {
	var vault core.Vault
	if err := s.db.View().Where("user_id=?", userID).First(&vault).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Vault{UserID: userID}, nil
		}
		return nil, err
	}

	return &vault, nil
}

func (s *vaultStore) Save(ctx context.Context, tx *db.DB, vault *core.Vault) error {
	return tx.Update().Create(vault).Error
}

func (s *vaultStore) Update(ctx context.Context, tx *db.DB, vault *core.Vault) error {
	version := vault.Version
	vault.Version++
	return tx.Update().Model(core.Vault{}).
		Where("user_id=? and version=?", vault.UserID, version).
		Updates(map[string]interface{}{
			"debt":    vault.Debt,
			"version": vault.Version,
		}).Error
}

func (s *vaultStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Vault, error) {
	var vaults []*core.Vault
	if err := s.db.View().Where("id > ?", fromID).Order("id ASC").Limit(limit).Find(&vaults).Error; err != nil {
		return nil, err
	}

	return vaults, nil
}
