package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config anchor config
type Config struct {
	App    App           `json:"app"`
	DB     db.Config     `json:"db"`
	API    API           `json:"api"`
	Oracle Oracle        `json:"oracle"`
	Tokens []TokenConfig `json:"tokens"`
	Debt   DebtConfig    `json:"debt"`
}

// App app config
type App struct {
	CustodyID string `json:"custody_id"`
	Genesis   int64  `json:"genesis"`
	Location  string `json:"location"`
}

// API api config
type API struct {
	Port int `json:"port"`
}

// Oracle price oracle config
type Oracle struct {
	EndPoint string `json:"end_point"`
	// StaleAfter is the freshness window, e.g. "3h".
	StaleAfter string `json:"stale_after"`
	// CacheTTL is the in-process quote cache, e.g. "3s".
	CacheTTL string `json:"cache_ttl"`
	// Providers limits ticker quotes to these providers when set.
	Providers []string `json:"providers,omitempty"`
}

// TokenConfig one approved collateral token
type TokenConfig struct {
	AssetID string `json:"asset_id"`
	Symbol  string `json:"symbol"`
}

// DebtConfig the synthetic dollar token
type DebtConfig struct {
	AssetID string `json:"asset_id"`
	Symbol  string `json:"symbol"`
}
