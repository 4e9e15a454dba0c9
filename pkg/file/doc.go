// Package file provides the byte-oriented storage backends used by the asset pipeline.
//
// Every backend implements the Storage interface:
//
//   - Exists reports whether an object is present at a path
//   - Read returns the full content of an object
//   - Write stores content at a path, replacing what was there
//   - Delete removes a single object
//   - URL builds the public address of an object
//
// Two implementations are provided:
//   - LocalStorage: filesystem storage confined to a base directory
//   - S3Storage: AWS S3 and S3-compatible services (MinIO, Wasabi, etc.)
//
// Paths are always relative, slash-separated keys such as
// "products/2025/03/7b1f...-red-shoe.jpg". Both backends reject paths that try
// to escape their root with ErrInvalidPath.
//
// # Usage
//
//	storage, err := file.NewLocalStorage("/var/lib/assets", "https://cdn.example.com/assets")
//	if err != nil {
//		return err
//	}
//
//	if err := storage.Write(ctx, "products/red-shoe.jpg", data); err != nil {
//		return err
//	}
//	url := storage.URL("products/red-shoe.jpg")
//
// Using S3 storage:
//
//	storage, err := file.NewS3Storage(ctx, file.S3Config{
//		Bucket:      "catalog-assets",
//		Region:      "eu-central-1",
//		AccessKeyID: "key",
//		SecretKey:   "secret",
//	})
//
// # Upload helpers
//
// ReadAll, ValidateSize and DetectMIMEType help HTTP handlers turn a multipart
// upload into bytes and check them before they reach a backend. MIME detection
// sniffs content, never the file extension.
//
// # Error Handling
//
// Backends return sentinel errors that can be checked with errors.Is:
//
//	err := storage.Delete(ctx, path)
//	if errors.Is(err, file.ErrFileNotFound) {
//		// nothing to delete
//	}
//
// S3-specific errors are mapped to the same sentinels:
//   - NoSuchKey / NotFound -> ErrFileNotFound
//   - NoSuchBucket -> ErrBucketNotFound
//   - AccessDenied -> ErrAccessDenied
package file
