package imaging_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/assetkit/pkg/file"
	"github.com/dmitrymomot/assetkit/pkg/imaging"
)

func pngImage(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func newStorage(t *testing.T) (*file.LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := file.NewLocalStorage(dir, "/media/")
	require.NoError(t, err)
	return s, dir
}

// fakeCodec writes a marker so tests do not depend on a real encoder.
func fakeCodec(marker string) imaging.Codec {
	return func(w io.Writer, img image.Image, quality int) error {
		_, err := io.WriteString(w, marker)
		return err
	}
}

func failingCodec(w io.Writer, img image.Image, quality int) error {
	return errors.New("encoder exploded")
}

// failingStorage fails writes whose path contains match.
type failingStorage struct {
	file.Storage
	match string

	mu     sync.Mutex
	writes []string
}

func (s *failingStorage) Write(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	s.writes = append(s.writes, path)
	s.mu.Unlock()
	if strings.Contains(path, s.match) {
		return file.ErrFailedToWriteFile
	}
	return s.Storage.Write(ctx, path, data)
}

func TestNewEncoder(t *testing.T) {
	t.Parallel()

	storage, _ := newStorage(t)

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		enc, err := imaging.NewEncoder(imaging.Config{}, storage)
		require.NoError(t, err)

		cfg := enc.Config()
		assert.Equal(t, imaging.DefaultVariants(), cfg.Variants)
		assert.Equal(t, imaging.Quality{JPEG: 88, WebP: 88, AVIF: 90}, cfg.Quality)
		assert.Equal(t, []imaging.Format{imaging.FormatJPEG, imaging.FormatWebP}, enc.Formats())
		assert.False(t, enc.AVIFSupported())
	})

	t.Run("nil storage", func(t *testing.T) {
		t.Parallel()
		_, err := imaging.NewEncoder(imaging.DefaultConfig(), nil)
		assert.ErrorIs(t, err, imaging.ErrInvalidConfig)
	})

	t.Run("invalid matrix", func(t *testing.T) {
		t.Parallel()
		cfg := imaging.DefaultConfig()
		cfg.Variants = []imaging.Descriptor{{Label: "thumb", Width: 80}, {Label: "thumb", Width: 120}}
		_, err := imaging.NewEncoder(cfg, storage)
		assert.ErrorIs(t, err, imaging.ErrInvalidConfig)
	})

	t.Run("avif disabled skips probe", func(t *testing.T) {
		t.Parallel()
		called := false
		_, err := imaging.NewEncoder(imaging.DefaultConfig(), storage,
			imaging.WithAVIFProbe(func() error { called = true; return nil }))
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("avif enabled and probe fails", func(t *testing.T) {
		t.Parallel()
		cfg := imaging.DefaultConfig()
		cfg.AVIF = true
		enc, err := imaging.NewEncoder(cfg, storage,
			imaging.WithAVIFProbe(func() error { return errors.New("no avif") }))
		require.NoError(t, err)
		assert.False(t, enc.AVIFSupported())
	})

	t.Run("avif enabled and probe succeeds", func(t *testing.T) {
		t.Parallel()
		cfg := imaging.DefaultConfig()
		cfg.AVIF = true
		enc, err := imaging.NewEncoder(cfg, storage,
			imaging.WithAVIFProbe(func() error { return nil }))
		require.NoError(t, err)
		assert.True(t, enc.AVIFSupported())
		assert.Contains(t, enc.Formats(), imaging.FormatAVIF)
	})

	t.Run("panicking avif codec disables avif", func(t *testing.T) {
		t.Parallel()
		cfg := imaging.DefaultConfig()
		cfg.AVIF = true
		enc, err := imaging.NewEncoder(cfg, storage,
			imaging.WithCodec(imaging.FormatAVIF, func(io.Writer, image.Image, int) error { panic("wasm trap") }))
		require.NoError(t, err)
		assert.False(t, enc.AVIFSupported())
	})
}

func TestEncoder_Encode(t *testing.T) {
	t.Parallel()

	t.Run("never upscales", func(t *testing.T) {
		t.Parallel()
		storage, dir := newStorage(t)
		enc, err := imaging.NewEncoder(imaging.DefaultConfig(), storage)
		require.NoError(t, err)

		res, err := enc.Encode(context.Background(), jpegImage(t, 500, 250), "image/jpeg", "products/2025/03/abc-shoe.jpg")
		require.NoError(t, err)
		require.NoError(t, res.Err())

		assert.Equal(t, 500, res.SourceWidth)
		assert.Equal(t, 250, res.SourceHeight)
		assert.Len(t, res.Variants, 6)
		assert.Equal(t, []imaging.Descriptor{
			{Label: "grid_2x", Width: 800},
			{Label: "detail", Width: 1000},
		}, res.Skipped)

		for _, v := range res.Variants {
			assert.LessOrEqual(t, v.Width, res.SourceWidth, v.Path)
			assert.Equal(t, v.Width/2, v.Height, v.Path)
			assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(v.Path)))
		}

		card, ok := res.Find("card", imaging.FormatJPEG)
		require.True(t, ok)
		assert.Equal(t, "products/2025/03/abc-shoe-card-260w.jpg", card.Path)

		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(card.Path)))
		require.NoError(t, err)
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 260, cfg.Width)
		assert.Equal(t, 130, cfg.Height)

		webpCard, ok := res.Find("card", imaging.FormatWebP)
		require.True(t, ok)
		assert.Equal(t, "products/2025/03/abc-shoe-card-260w.webp", webpCard.Path)
		assert.Positive(t, webpCard.Size)

		_, ok = res.Find("detail", imaging.FormatJPEG)
		assert.False(t, ok)
	})

	t.Run("equal width is kept", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)
		enc, err := imaging.NewEncoder(imaging.DefaultConfig(), storage,
			imaging.WithCodec(imaging.FormatWebP, fakeCodec("webp")))
		require.NoError(t, err)

		res, err := enc.Encode(context.Background(), pngImage(t, 400, 300, color.White), "png", "banners/x.png")
		require.NoError(t, err)

		grid, ok := res.Find("grid", imaging.FormatJPEG)
		require.True(t, ok)
		assert.Equal(t, 400, grid.Width)
		assert.Equal(t, 300, grid.Height)
	})

	t.Run("identical input yields identical names", func(t *testing.T) {
		t.Parallel()
		storage, dir := newStorage(t)
		enc, err := imaging.NewEncoder(imaging.DefaultConfig(), storage,
			imaging.WithCodec(imaging.FormatWebP, fakeCodec("webp")))
		require.NoError(t, err)

		src := jpegImage(t, 900, 600)
		first, err := enc.Encode(context.Background(), src, "jpeg", "products/a.jpg")
		require.NoError(t, err)
		second, err := enc.Encode(context.Background(), src, "jpeg", "products/a.jpg")
		require.NoError(t, err)

		paths := func(r *imaging.Result) []string {
			out := make([]string, 0, len(r.Variants))
			for _, v := range r.Variants {
				out = append(out, v.Path)
			}
			return out
		}
		assert.Equal(t, paths(first), paths(second))

		entries, err := os.ReadDir(filepath.Join(dir, "products"))
		require.NoError(t, err)
		// original is not written by the encoder: 4 labels x 2 formats
		assert.Len(t, entries, 8)
	})

	t.Run("failed format does not stop the others", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)
		enc, err := imaging.NewEncoder(imaging.DefaultConfig(), storage,
			imaging.WithCodec(imaging.FormatWebP, failingCodec))
		require.NoError(t, err)

		res, err := enc.Encode(context.Background(), jpegImage(t, 300, 300), "jpeg", "p/a.jpg")
		require.NoError(t, err)

		assert.Len(t, res.Variants, 2)
		require.Len(t, res.Failures, 2)
		for _, f := range res.Failures {
			assert.Equal(t, imaging.FormatWebP, f.Format)
		}
		assert.ErrorIs(t, res.Err(), imaging.ErrPartialVariantFailure)
		assert.Contains(t, res.Err().Error(), "encoder exploded")

		_, ok := res.Find("thumb", imaging.FormatJPEG)
		assert.True(t, ok)
	})

	t.Run("codec panic is recorded as failure", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)
		enc, err := imaging.NewEncoder(imaging.DefaultConfig(), storage,
			imaging.WithCodec(imaging.FormatWebP, func(io.Writer, image.Image, int) error { panic("boom") }))
		require.NoError(t, err)

		res, err := enc.Encode(context.Background(), jpegImage(t, 100, 100), "jpeg", "p/a.jpg")
		require.NoError(t, err)
		require.Len(t, res.Failures, 1)
		assert.Contains(t, res.Failures[0].Error(), "boom")
		assert.Equal(t, "thumb", res.Failures[0].Label)
	})

	t.Run("storage failure for one variant", func(t *testing.T) {
		t.Parallel()
		local, _ := newStorage(t)
		storage := &failingStorage{Storage: local, match: "-card-"}
		enc, err := imaging.NewEncoder(imaging.DefaultConfig(), storage,
			imaging.WithCodec(imaging.FormatWebP, fakeCodec("webp")))
		require.NoError(t, err)

		res, err := enc.Encode(context.Background(), jpegImage(t, 300, 200), "jpeg", "p/a.jpg")
		require.NoError(t, err)

		assert.Len(t, res.Variants, 2)
		require.Len(t, res.Failures, 2)
		assert.ErrorIs(t, res.Failures[0], file.ErrFailedToWriteFile)
		assert.ErrorIs(t, res.Err(), file.ErrFailedToWriteFile)
		assert.True(t, local.Exists(context.Background(), "p/a-thumb-80w.jpg"))
	})

	t.Run("avif produced when supported", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)
		cfg := imaging.DefaultConfig()
		cfg.AVIF = true
		enc, err := imaging.NewEncoder(cfg, storage,
			imaging.WithCodec(imaging.FormatWebP, fakeCodec("webp")),
			imaging.WithCodec(imaging.FormatAVIF, fakeCodec("avif")))
		require.NoError(t, err)
		require.True(t, enc.AVIFSupported())

		res, err := enc.Encode(context.Background(), jpegImage(t, 100, 50), "jpeg", "p/a.jpg")
		require.NoError(t, err)
		v, ok := res.Find("thumb", imaging.FormatAVIF)
		require.True(t, ok)
		assert.Equal(t, "p/a-thumb-80w.avif", v.Path)
	})

	t.Run("avif failure after probe is partial failure", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)
		cfg := imaging.DefaultConfig()
		cfg.AVIF = true
		enc, err := imaging.NewEncoder(cfg, storage,
			imaging.WithAVIFProbe(func() error { return nil }),
			imaging.WithCodec(imaging.FormatWebP, fakeCodec("webp")),
			imaging.WithCodec(imaging.FormatAVIF, failingCodec))
		require.NoError(t, err)

		res, err := enc.Encode(context.Background(), jpegImage(t, 100, 50), "jpeg", "p/a.jpg")
		require.NoError(t, err)
		assert.ErrorIs(t, res.Err(), imaging.ErrPartialVariantFailure)
		assert.Len(t, res.Variants, 2)
	})

	t.Run("transparent source is flattened on white for jpeg", func(t *testing.T) {
		t.Parallel()
		storage, dir := newStorage(t)
		enc, err := imaging.NewEncoder(imaging.DefaultConfig(), storage,
			imaging.WithCodec(imaging.FormatWebP, fakeCodec("webp")))
		require.NoError(t, err)

		_, err = enc.Encode(context.Background(), pngImage(t, 80, 80, color.NRGBA{}), "png", "p/logo.png")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "p", "logo-thumb-80w.jpg"))
		require.NoError(t, err)
		img, err := jpeg.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		r, g, b, _ := img.At(40, 40).RGBA()
		assert.Greater(t, r>>8, uint32(240))
		assert.Greater(t, g>>8, uint32(240))
		assert.Greater(t, b>>8, uint32(240))
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)
		enc, err := imaging.NewEncoder(imaging.DefaultConfig(), storage)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = enc.Encode(ctx, jpegImage(t, 100, 100), "jpeg", "p/a.jpg")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("original path required", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)
		enc, err := imaging.NewEncoder(imaging.DefaultConfig(), storage)
		require.NoError(t, err)

		_, err = enc.Encode(context.Background(), jpegImage(t, 100, 100), "jpeg", "")
		assert.ErrorIs(t, err, file.ErrInvalidPath)
	})
}

func TestEncoder_Rejects(t *testing.T) {
	t.Parallel()

	local, _ := newStorage(t)
	storage := &failingStorage{Storage: local}
	cfg := imaging.DefaultConfig()
	cfg.MaxBytes = 64 << 10
	cfg.MaxPixels = 1_000_000
	enc, err := imaging.NewEncoder(cfg, storage)
	require.NoError(t, err)

	tests := []struct {
		name   string
		src    []byte
		format string
	}{
		{"empty", nil, "jpeg"},
		{"garbage", []byte("definitely not an image"), "jpeg"},
		{"truncated", jpegImage(t, 50, 50)[:40], "jpeg"},
		{"too many bytes", bytes.Repeat([]byte{0xff}, 64<<10+1), "jpeg"},
		{"too many pixels", pngImage(t, 1001, 1000, color.Black), "png"},
		{"unknown declared format", jpegImage(t, 10, 10), "image/tiff"},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), "image/svg+xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := enc.Encode(context.Background(), tt.src, tt.format, "p/a.jpg")
			assert.ErrorIs(t, err, imaging.ErrUnsupportedImage)
		})
	}

	assert.Empty(t, storage.writes, "rejected input must not write anything")
}

func TestEncoder_Inspect(t *testing.T) {
	t.Parallel()

	storage, _ := newStorage(t)
	enc, err := imaging.NewEncoder(imaging.DefaultConfig(), storage)
	require.NoError(t, err)

	info, err := enc.Inspect(pngImage(t, 30, 20, color.Black), "")
	require.NoError(t, err)
	assert.Equal(t, imaging.Info{Format: "png", Width: 30, Height: 20}, info)

	info, err = enc.Inspect(jpegImage(t, 12, 7), "JPG")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", info.Format)
}
