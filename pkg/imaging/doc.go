// Package imaging generates the derived presentation variants of an uploaded image.
//
// An Encoder owns a fixed matrix of Descriptors (label + target width) and a set
// of output formats. For every descriptor that is not wider than the source it
// resizes the image preserving aspect ratio and encodes it once per format:
// JPEG and WebP always, AVIF when Config.AVIF is set and the runtime probe run at
// construction succeeded. Sources are never upscaled and never cropped.
//
// Variant file names are a pure function of the original path, the label and the
// width, so encoding the same source twice writes the same files and the full set
// of possible variant paths can be derived from an original path alone:
//
//	imaging.VariantPath("products/2025/03/9f2c-shoe.jpg", "card", 260, imaging.FormatWebP)
//	// "products/2025/03/9f2c-shoe-card-260w.webp"
//
// # Usage
//
//	enc, err := imaging.NewEncoder(imaging.DefaultConfig(), storage, imaging.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	res, err := enc.Encode(ctx, data, "image/jpeg", "products/2025/03/9f2c-shoe.jpg")
//	if errors.Is(err, imaging.ErrUnsupportedImage) {
//		// reject the upload
//	}
//	if err := res.Err(); err != nil {
//		// some variants failed; the original is still a valid fallback
//	}
//
// # Errors
//
// ErrUnsupportedImage is returned for empty, oversized, undecodable or
// unknown-format input; nothing is written in that case. A failure of a single
// variant never aborts the others; failures are collected in Result.Failures and
// Result.Err wraps them with ErrPartialVariantFailure.
package imaging
