package rest

import (
	"net/http"
	"time"

	"anchor/core"
	"anchor/handler/param"
	"anchor/handler/render"
)

// response ledger events
func eventsHandler(eventStore core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID string `json:"user"`
			Offset string `json:"offset"`
			Limit  int    `json:"limit"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		limit := params.Limit
		if limit <= 0 {
			limit = 500
		}

		offsetTime, err := time.Parse(time.RFC3339Nano, params.Offset)
		if err != nil {
			offsetTime = time.Time{}
		}

		var events []*core.Event
		if params.UserID != "" {
			events, err = eventStore.ListByUser(ctx, params.UserID, offsetTime, limit)
		} else {
			events, err = eventStore.List(ctx, offsetTime, limit)
		}
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, events)
	}
}
