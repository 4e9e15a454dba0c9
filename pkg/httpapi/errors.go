package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/assetkit/pkg/binder"
	"github.com/dmitrymomot/assetkit/pkg/file"
	"github.com/dmitrymomot/assetkit/pkg/media"
)

// HTTPError is an error with a fixed status code and a machine readable key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

var (
	ErrBadRequest    = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrNotFound      = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict      = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrTooLarge      = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "payload_too_large"}
	ErrInternal      = HTTPError{Code: http.StatusInternalServerError, Key: "internal_error"}
	ErrMissingFile   = errors.New("file is required")
	ErrInvalidMedia  = errors.New("invalid media id")
	ErrMissingParams = errors.New("scope is required")
	ErrMissingPos    = errors.New("position is required")
)

// statusFor maps err to the HTTP error it is reported as.
func statusFor(err error) HTTPError {
	var (
		he     HTTPError
		maxErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, file.ErrFileTooLarge), errors.As(err, &maxErr):
		return ErrTooLarge
	case errors.Is(err, media.ErrUnsupportedImage),
		errors.Is(err, media.ErrInvalidUpload),
		errors.Is(err, ErrMissingFile),
		errors.Is(err, ErrInvalidMedia),
		errors.Is(err, ErrMissingParams),
		errors.Is(err, ErrMissingPos),
		errors.Is(err, binder.ErrInvalidJSON),
		errors.Is(err, binder.ErrInvalidForm),
		errors.Is(err, binder.ErrInvalidQuery),
		errors.Is(err, binder.ErrInvalidPath),
		errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrUnsupportedMediaType):
		return ErrBadRequest
	case errors.Is(err, media.ErrMediaNotFound):
		return ErrNotFound
	case errors.Is(err, media.ErrMediaExists):
		return ErrConflict
	default:
		return ErrInternal
	}
}

// codeFor refines the generic key with the domain error that caused it.
func codeFor(err error, he HTTPError) string {
	switch {
	case errors.Is(err, media.ErrUnsupportedImage):
		return "unsupported_image"
	case errors.Is(err, media.ErrStorageWriteFailed):
		return "storage_write_failed"
	case errors.Is(err, media.ErrMediaNotFound):
		return "media_not_found"
	}
	return he.Key
}
