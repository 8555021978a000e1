package cmd

import (
	"anchor/core"

	"github.com/fox-one/pkg/store/db"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

func provideSystem() *core.System {
	return &core.System{
		CustodyID: cfg.App.CustodyID,
		Genesis:   cfg.App.Genesis,
		Location:  cfg.App.Location,
		Version:   rootCmd.Version,
	}
}
