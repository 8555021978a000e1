package rest

import (
	"errors"
	"net/http"

	"anchor/core"
	"anchor/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(system *core.System, registry *core.Registry, eng core.IEngine, priceSrv core.IPriceOracleService, eventStore core.IEventStore) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/accounts/{user}", accountHandler(eng))
	router.Get("/accounts/{user}/health", accountHealthHandler(eng))
	router.Get("/accounts/{user}/collaterals/{asset}", collateralHandler(eng))
	router.Get("/tokens", tokensHandler(registry, priceSrv))
	router.Get("/events", eventsHandler(eventStore))
	router.Get("/constants", constantsHandler(system))

	return router
}
