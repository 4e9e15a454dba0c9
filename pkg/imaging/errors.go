package imaging

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedImage is returned for undecodable, oversized or unknown-format sources.
	ErrUnsupportedImage = errors.New("unsupported image")

	// ErrPartialVariantFailure reports that some, but not necessarily all, variants failed.
	ErrPartialVariantFailure = errors.New("some image variants failed")

	// ErrInvalidConfig is returned by NewEncoder and LoadConfig for unusable variant matrices.
	ErrInvalidConfig = errors.New("invalid imaging configuration")

	// ErrCodecUnavailable is returned when no encoder is registered for a format.
	ErrCodecUnavailable = errors.New("image codec unavailable")
)

// VariantError describes a single variant that could not be produced.
type VariantError struct {
	Label  string
	Width  int
	Format Format
	Err    error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("variant %s@%dw (%s): %v", e.Label, e.Width, e.Format, e.Err)
}

func (e *VariantError) Unwrap() error {
	return e.Err
}
