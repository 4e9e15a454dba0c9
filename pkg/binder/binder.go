package binder

import (
	"fmt"
	"net/http"
	"strings"
)

// Func decodes part of r into v.
type Func func(r *http.Request, v any) error

// Bind applies binders to v in order and stops at the first error.
func Bind(r *http.Request, v any, binders ...Func) error {
	for _, b := range binders {
		if err := b(r, v); err != nil {
			return err
		}
	}
	return nil
}

// mediaType returns the lowercase media type of the request without parameters.
func mediaType(r *http.Request, expected string) (string, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return "", fmt.Errorf("%w: expected %s", ErrMissingContentType, expected)
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct)), nil
}
