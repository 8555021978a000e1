package cmd

import (
	"anchor/core"
	"anchor/service/engine"
	"anchor/service/oracle"
	"anchor/service/token"

	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cast"
)

func provideRegistry(priceStr core.IPriceStore) *core.Registry {
	assetIDs := make([]string, 0, len(cfg.Tokens))
	symbols := make([]string, 0, len(cfg.Tokens))
	feeds := make([]core.PriceFeed, 0, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		assetIDs = append(assetIDs, t.AssetID)
		symbols = append(symbols, t.Symbol)
		feeds = append(feeds, oracle.NewStoreFeed(t.AssetID, priceStr))
	}

	registry, err := core.NewRegistry(assetIDs, symbols, feeds)
	if err != nil {
		panic(err)
	}

	return registry
}

func providePriceService(registry *core.Registry) core.IPriceOracleService {
	return oracle.New(
		registry,
		cast.ToDuration(cfg.Oracle.StaleAfter),
		cast.ToDuration(cfg.Oracle.CacheTTL),
	)
}

func provideTickerService() core.IPriceTickerService {
	return oracle.NewTickerService(cfg.Oracle.EndPoint, cfg.Oracle.Providers)
}

func provideTokenService(database *db.DB, system *core.System) *token.Service {
	return token.New(database, system, provideBalanceStore(database), cfg.Debt.AssetID)
}

func provideEngine(database *db.DB, system *core.System) core.IEngine {
	registry := provideRegistry(providePriceStore(database))
	tokens := provideTokenService(database, system)

	return engine.New(
		database,
		registry,
		provideVaultStore(database),
		provideCollateralStore(database),
		provideEventStore(database),
		providePriceService(registry),
		tokens,
		tokens.Debt(),
	)
}
