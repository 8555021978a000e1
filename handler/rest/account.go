package rest

import (
	"net/http"

	"anchor/core"
	"anchor/handler/param"
	"anchor/handler/render"
	"anchor/handler/views"
	"anchor/internal/risk"
)

func accountHandler(eng core.IEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID string `json:"user"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		summary, err := eng.AccountSummary(ctx, params.UserID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		accountView := views.Account{
			AccountSummary: summary,
			Liquidatable:   !risk.IsHealthy(summary.HealthFactor),
		}

		render.JSON(w, &accountView)
	}
}

func accountHealthHandler(eng core.IEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID string `json:"user"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		hf, err := eng.HealthFactor(ctx, params.UserID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{"health_factor": hf})
	}
}

func collateralHandler(eng core.IEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID  string `json:"user"`
			AssetID string `json:"asset"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount, err := eng.CollateralBalance(ctx, params.UserID, params.AssetID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		value, err := eng.ValueOf(ctx, params.AssetID, amount)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{
			"asset_id": params.AssetID,
			"amount":   amount,
			"value":    value,
		})
	}
}
