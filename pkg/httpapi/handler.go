package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/assetkit/pkg/logger"
)

// HandlerFunc handles a request and returns what to render.
type HandlerFunc func(r *http.Request) Response

// wrap adapts h to net/http. Render failures can only be logged since the
// status line is already written.
func wrap(log *slog.Logger, h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h(r)
		if resp == nil {
			resp = NoContent()
		}
		if err := resp.Render(w, r); err != nil {
			log.ErrorContext(r.Context(), "failed to render response", logger.Error(err))
		}
	}
}

// fail logs err at the level its status deserves and renders it.
func (a *API) fail(r *http.Request, err error) Response {
	he := statusFor(err)
	if he.Code >= http.StatusInternalServerError {
		a.log.ErrorContext(r.Context(), "request error", logger.Error(err))
	} else {
		a.log.DebugContext(r.Context(), "client error", logger.Error(err))
	}
	return Error(err)
}
