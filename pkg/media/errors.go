package media

import (
	"errors"

	"github.com/dmitrymomot/assetkit/pkg/imaging"
)

var (
	// ErrUnsupportedImage aborts ingest of undecodable, oversized or non-image uploads.
	ErrUnsupportedImage = imaging.ErrUnsupportedImage

	ErrStorageWriteFailed  = errors.New("failed to write media to storage")
	ErrStorageDeleteFailed = errors.New("failed to delete media from storage")
	ErrMediaNotFound       = errors.New("media not found")
	ErrMediaExists         = errors.New("media already exists")
	ErrInvalidUpload       = errors.New("invalid upload")
	ErrPersistFailed       = errors.New("failed to persist media")
)
