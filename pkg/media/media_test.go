package media_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/assetkit/pkg/file"
	"github.com/dmitrymomot/assetkit/pkg/imaging"
	"github.com/dmitrymomot/assetkit/pkg/media"
	"github.com/dmitrymomot/assetkit/pkg/mediastore"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func fakeWebP(w io.Writer, _ image.Image, _ int) error {
	_, err := w.Write([]byte("RIFF\x00\x00\x00\x00WEBPVP8 "))
	return err
}

// faultyRepo injects errors into selected repository calls.
type faultyRepo struct {
	media.Repository
	createErr error
	refErr    error
	deleteErr error
	refCalls  int
}

func (r *faultyRepo) Create(ctx context.Context, m *media.Media) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.Repository.Create(ctx, m)
}

func (r *faultyRepo) ReferencesPath(ctx context.Context, path string, excluding uuid.UUID) (bool, error) {
	r.refCalls++
	if r.refErr != nil {
		return false, r.refErr
	}
	return r.Repository.ReferencesPath(ctx, path, excluding)
}

func (r *faultyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.Repository.Delete(ctx, id)
}

// faultyStorage injects errors into writes and deletes.
type faultyStorage struct {
	file.Storage
	writeErr  error
	deleteErr error
}

func (s *faultyStorage) Write(ctx context.Context, path string, data []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.Storage.Write(ctx, path, data)
}

func (s *faultyStorage) Delete(ctx context.Context, path string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Storage.Delete(ctx, path)
}

type fixture struct {
	dir     string
	store   *mediastore.SQLite
	repo    *faultyRepo
	storage *faultyStorage
	enc     *imaging.Encoder
	mgr     *media.Manager
}

func newFixture(t *testing.T, encOpts []imaging.Option, mgrOpts ...media.ManagerOption) *fixture {
	t.Helper()

	dir := t.TempDir()
	local, err := file.NewLocalStorage(dir, "https://cdn.example.com/media")
	require.NoError(t, err)

	store, err := mediastore.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		dir:     dir,
		store:   store,
		repo:    &faultyRepo{Repository: store},
		storage: &faultyStorage{Storage: local},
	}

	opts := append([]imaging.Option{imaging.WithCodec(imaging.FormatWebP, fakeWebP)}, encOpts...)
	f.enc, err = imaging.NewEncoder(imaging.DefaultConfig(), f.storage, opts...)
	require.NoError(t, err)

	mgrOpts = append([]media.ManagerOption{media.WithClock(func() time.Time { return fixedNow })}, mgrOpts...)
	f.mgr = media.NewManager(f.repo, f.storage, f.enc, mgrOpts...)
	return f
}

// files lists stored files relative to the storage root.
func (f *fixture) files(t *testing.T) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

var errBoom = errors.New("boom")
