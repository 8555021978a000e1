package rest

import (
	"net/http"

	"anchor/core"
	"anchor/handler/render"
	"anchor/internal/risk"
)

func constantsHandler(system *core.System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, render.H{
			"genesis":               system.Genesis,
			"version":               system.Version,
			"liquidation_threshold": risk.LiquidationThreshold,
			"liquidation_bonus":     risk.LiquidationBonus,
			"close_factor":          risk.CloseFactor,
			"min_health_factor":     risk.MinHealthFactor,
		})
	}
}
