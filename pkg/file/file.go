package file

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// Storage is the backend contract the asset pipeline writes through.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) bool
	// Read returns the full content stored at path.
	Read(ctx context.Context, path string) ([]byte, error)
	// Write stores data at path, replacing any existing object.
	Write(ctx context.Context, path string, data []byte) error
	// Delete removes the object at path.
	Delete(ctx context.Context, path string) error
	// URL returns the public URL for path.
	URL(path string) string
}

var imageMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// DetectMIMEType sniffs the MIME type from content.
// Uses http.DetectContentType which looks at the first 512 bytes, so a renamed
// extension cannot change the result.
func DetectMIMEType(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	mimeType := http.DetectContentType(data)
	// DetectContentType may append parameters, e.g. "text/plain; charset=utf-8"
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

// IsImageMIME reports whether mimeType is a raster image type the pipeline knows.
func IsImageMIME(mimeType string) bool {
	_, ok := imageMIMETypes[mimeType]
	return ok
}

// ExtensionForMIME returns the canonical extension (with dot) for a known image type,
// or an empty string.
func ExtensionForMIME(mimeType string) string {
	return imageMIMETypes[mimeType]
}

// ValidateSize checks if the file size is within the allowed limit.
// FileHeader.Size may be 0 for streamed uploads; callers that need a hard limit
// must also check the length of the bytes they read.
func ValidateSize(fh *multipart.FileHeader, maxBytes int64) error {
	if fh == nil {
		return ErrNilFileHeader
	}
	if fh.Size > maxBytes {
		return fmt.Errorf("file size %d bytes exceeds %d bytes limit: %w", fh.Size, maxBytes, ErrFileTooLarge)
	}
	return nil
}

// ReadAll reads the uploaded file into memory, refusing more than maxBytes.
// A non-positive maxBytes disables the limit.
func ReadAll(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if fh == nil {
		return nil, ErrNilFileHeader
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = src.Close() }()

	var r io.Reader = src
	if maxBytes > 0 {
		// One extra byte tells "exactly at limit" apart from "over limit"
		r = io.LimitReader(src, maxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("upload exceeds %d bytes limit: %w", maxBytes, ErrFileTooLarge)
	}

	return data, nil
}

// SanitizeFilename removes any path components and dangerous characters from a filename.
// Returns "unnamed" for empty or special directory references.
//
// Example:
//
//	safe := file.SanitizeFilename("../../../etc/passwd") // Returns "passwd"
//	safe = file.SanitizeFilename("C:\\Windows\\file.txt") // Returns "file.txt"
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}

	return filename
}

// cleanKey normalizes a storage key and rejects traversal attempts.
func cleanKey(path string) (string, error) {
	key := strings.TrimPrefix(filepath.ToSlash(path), "/")
	if key == "" || strings.Contains(key, "\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
		}
	}
	return key, nil
}
