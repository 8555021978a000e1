package views

import (
	"anchor/core"
)

// Account account view
type Account struct {
	*core.AccountSummary
	Liquidatable bool `json:"liquidatable"`
}
