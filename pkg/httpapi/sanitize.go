package httpapi

import (
	"net/http"

	"github.com/dmitrymomot/assetkit/pkg/binder"
)

type sanitizeRequest struct {
	HTML string `json:"html"`
}

type sanitizeResponse struct {
	HTML string `json:"html"`
}

func (a *API) sanitize(r *http.Request) Response {
	var req sanitizeRequest
	if err := binder.Bind(r, &req, binder.JSON(a.maxHTML)); err != nil {
		return a.fail(r, err)
	}
	return JSON(sanitizeResponse{HTML: a.sanitizer.Sanitize(req.HTML)})
}
