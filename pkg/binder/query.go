package binder

import "net/http"

// Query returns a binder for URL query parameters (`query` tag).
func Query() Func {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrInvalidQuery)
	}
}
