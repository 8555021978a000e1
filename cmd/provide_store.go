package cmd

import (
	"anchor/core"
	"anchor/store/balance"
	"anchor/store/collateral"
	"anchor/store/event"
	"anchor/store/price"
	"anchor/store/vault"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideVaultStore(db *db.DB) core.IVaultStore {
	return vault.New(db)
}

func provideCollateralStore(db *db.DB) core.ICollateralStore {
	return collateral.New(db)
}

func provideEventStore(db *db.DB) core.IEventStore {
	return event.New(db)
}

func providePriceStore(db *db.DB) core.IPriceStore {
	return price.New(db)
}

func provideBalanceStore(db *db.DB) core.IBalanceStore {
	return balance.New(db)
}

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}
