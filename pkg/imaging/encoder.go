package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/dmitrymomot/assetkit/pkg/file"
	"github.com/dmitrymomot/assetkit/pkg/logger"
)

// Source formats the encoder accepts.
var sourceFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Encoder resizes and re-encodes source images into the configured variant matrix.
// It is safe for concurrent use.
type Encoder struct {
	cfg     Config
	storage file.Storage
	log     *slog.Logger
	codecs  map[Format]Codec
	formats []Format
	probe   func() error
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Encoder) {
		e.log = logger.OrDiscard(l)
	}
}

// WithCodec replaces the encoder used for a format.
func WithCodec(f Format, c Codec) Option {
	return func(e *Encoder) {
		e.codecs[f] = c
	}
}

// WithAVIFProbe replaces the runtime AVIF capability check run by NewEncoder.
// A nil error means AVIF is usable.
func WithAVIFProbe(fn func() error) Option {
	return func(e *Encoder) {
		e.probe = fn
	}
}

// NewEncoder validates cfg and returns an encoder writing variants to storage.
// Zero-valued fields of cfg take their defaults. When cfg.AVIF is set the AVIF
// codec is probed once; a failed probe disables AVIF for this encoder.
func NewEncoder(cfg Config, storage file.Storage, opts ...Option) (*Encoder, error) {
	if storage == nil {
		return nil, fmt.Errorf("%w: storage is required", ErrInvalidConfig)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Variants = append([]Descriptor(nil), cfg.Variants...)

	e := &Encoder{
		cfg:     cfg,
		storage: storage,
		log:     logger.Discard(),
		codecs:  defaultCodecs(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.probe == nil {
		e.probe = func() error { return probe(e.codecs[FormatAVIF]) }
	}

	e.formats = []Format{FormatJPEG, FormatWebP}
	if cfg.AVIF {
		if err := e.probe(); err != nil {
			e.log.Info("avif encoding unavailable", logger.Error(err))
		} else {
			e.formats = append(e.formats, FormatAVIF)
		}
	}

	return e, nil
}

// AVIFSupported reports whether this encoder produces AVIF variants.
func (e *Encoder) AVIFSupported() bool {
	for _, f := range e.formats {
		if f == FormatAVIF {
			return true
		}
	}
	return false
}

// Formats returns the output formats produced for every variant.
func (e *Encoder) Formats() []Format {
	return append([]Format(nil), e.formats...)
}

// Config returns the effective configuration.
func (e *Encoder) Config() Config {
	cfg := e.cfg
	cfg.Variants = append([]Descriptor(nil), e.cfg.Variants...)
	return cfg
}

// Info describes a source image without decoding its pixels.
type Info struct {
	Format string
	Width  int
	Height int
}

// Inspect checks size limits and the image header. Every rejection wraps
// ErrUnsupportedImage. sourceFormat may be a short name ("png") or a MIME type
// ("image/png"); when empty the detected format is used.
func (e *Encoder) Inspect(src []byte, sourceFormat string) (Info, error) {
	if len(src) == 0 {
		return Info{}, fmt.Errorf("%w: empty input", ErrUnsupportedImage)
	}
	if e.cfg.MaxBytes > 0 && int64(len(src)) > e.cfg.MaxBytes {
		return Info{}, fmt.Errorf("%w: %d bytes exceeds %d bytes limit", ErrUnsupportedImage, len(src), e.cfg.MaxBytes)
	}

	want := normalizeFormat(sourceFormat)
	if want != "" && !sourceFormats[want] {
		return Info{}, fmt.Errorf("%w: format %q", ErrUnsupportedImage, sourceFormat)
	}

	ic, got, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if !sourceFormats[got] {
		return Info{}, fmt.Errorf("%w: format %q", ErrUnsupportedImage, got)
	}
	if ic.Width <= 0 || ic.Height <= 0 {
		return Info{}, fmt.Errorf("%w: empty dimensions", ErrUnsupportedImage)
	}
	if e.cfg.MaxPixels > 0 && ic.Width*ic.Height > e.cfg.MaxPixels {
		return Info{}, fmt.Errorf("%w: %dx%d exceeds %d pixels limit", ErrUnsupportedImage, ic.Width, ic.Height, e.cfg.MaxPixels)
	}

	return Info{Format: got, Width: ic.Width, Height: ic.Height}, nil
}

// Variant is one encoded and stored output.
type Variant struct {
	Label  string
	Width  int
	Height int
	Format Format
	Path   string
	Size   int
}

// Result is the outcome of one Encode call.
type Result struct {
	SourceWidth  int
	SourceHeight int
	Variants     []Variant
	// Skipped lists descriptors wider than the source.
	Skipped  []Descriptor
	Failures []*VariantError
}

// Err returns nil when every attempted variant was produced, otherwise the
// failures joined with ErrPartialVariantFailure.
func (r *Result) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures)+1)
	errs = append(errs, ErrPartialVariantFailure)
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Find returns the produced variant with the given label and format.
func (r *Result) Find(label string, f Format) (Variant, bool) {
	if r == nil {
		return Variant{}, false
	}
	for _, v := range r.Variants {
		if v.Label == label && v.Format == f {
			return v, true
		}
	}
	return Variant{}, false
}

// Encode decodes src, produces every variant not wider than the source in every
// enabled format and writes them next to originalPath. A failed variant is
// recorded in Result.Failures and does not stop the others. The returned error
// is non-nil only when the source is rejected or ctx is done.
func (e *Encoder) Encode(ctx context.Context, src []byte, sourceFormat, originalPath string) (*Result, error) {
	if originalPath == "" {
		return nil, fmt.Errorf("%w: original path is required", file.ErrInvalidPath)
	}

	info, err := e.Inspect(src, sourceFormat)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	start := time.Now()
	res := &Result{SourceWidth: info.Width, SourceHeight: info.Height}

	for _, d := range e.cfg.Variants {
		if d.Width > info.Width {
			res.Skipped = append(res.Skipped, d)
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		scaled := resize(img, d.Width)
		for _, f := range e.formats {
			v, err := e.encodeOne(ctx, scaled, d, f, originalPath)
			if err != nil {
				verr := &VariantError{Label: d.Label, Width: d.Width, Format: f, Err: err}
				res.Failures = append(res.Failures, verr)
				e.log.WarnContext(ctx, "image variant failed",
					logger.MediaPath(originalPath),
					logger.Variant(d.Label, d.Width, f.String()),
					logger.Error(err),
				)
				continue
			}
			res.Variants = append(res.Variants, v)
		}
	}

	e.log.DebugContext(ctx, "image variants encoded",
		logger.MediaPath(originalPath),
		slog.Int("produced", len(res.Variants)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("failed", len(res.Failures)),
		logger.Duration(time.Since(start)),
	)

	return res, nil
}

func (e *Encoder) encodeOne(ctx context.Context, img image.Image, d Descriptor, f Format, originalPath string) (Variant, error) {
	c := e.codecs[f]
	if c == nil {
		return Variant{}, ErrCodecUnavailable
	}

	var buf bytes.Buffer
	if err := safeEncode(c, &buf, img, e.cfg.Quality.For(f)); err != nil {
		return Variant{}, err
	}

	p := VariantPath(originalPath, d.Label, d.Width, f)
	if err := e.storage.Write(ctx, p, buf.Bytes()); err != nil {
		return Variant{}, err
	}

	return Variant{
		Label:  d.Label,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
		Format: f,
		Path:   p,
		Size:   buf.Len(),
	}, nil
}

func normalizeFormat(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "image/")
	if s == "jpg" {
		return "jpeg"
	}
	return s
}
