package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/assetkit/pkg/file"
	"github.com/dmitrymomot/assetkit/pkg/imaging"
	"github.com/dmitrymomot/assetkit/pkg/logger"
	"github.com/dmitrymomot/assetkit/pkg/slug"
)

const maxSlugLength = 48

// Encoder produces variants for a stored original. Satisfied by *imaging.Encoder.
type Encoder interface {
	Inspect(src []byte, sourceFormat string) (imaging.Info, error)
	Encode(ctx context.Context, src []byte, sourceFormat, originalPath string) (*imaging.Result, error)
	Paths(originalPath string) []string
	DefaultPath(originalPath string) string
}

// Manager orchestrates ingest and reference-safe deletion of media.
type Manager struct {
	repo    Repository
	storage file.Storage
	enc     Encoder
	ledger  *Ledger
	log     *slog.Logger
	disk    string
	now     func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = logger.OrDiscard(l)
	}
}

// WithDisk sets the disk identifier stored on new rows. Default is "local".
func WithDisk(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.disk = name
		}
	}
}

// WithClock overrides the time source used for paths and timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager wires the repository, the storage backend and the encoder.
// The ledger reads through repo.
func NewManager(repo Repository, storage file.Storage, enc Encoder, opts ...ManagerOption) *Manager {
	m := &Manager{
		repo:    repo,
		storage: storage,
		enc:     enc,
		ledger:  NewLedger(repo),
		log:     logger.Discard(),
		disk:    "local",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ingest validates the upload, stores the original under a fresh path, encodes
// the variants and persists one row. Nothing is written for rejected input.
// Variant failures are logged and do not fail the ingest.
func (m *Manager) Ingest(ctx context.Context, in Upload) (*Media, error) {
	scope := slug.Make(in.Scope, slug.Separator("_"))
	if scope == "" {
		return nil, fmt.Errorf("%w: scope is required", ErrInvalidUpload)
	}

	mimeType := file.DetectMIMEType(in.Data)
	if !file.IsImageMIME(mimeType) {
		return nil, fmt.Errorf("%w: content type %s", ErrUnsupportedImage, mimeType)
	}
	if _, err := m.enc.Inspect(in.Data, mimeType); err != nil {
		return nil, err
	}

	now := m.now().UTC()
	id := uuid.New()
	originalPath := buildPath(scope, id, in.Filename, file.ExtensionForMIME(mimeType), now)

	if err := m.storage.Write(ctx, originalPath, in.Data); err != nil {
		return nil, errors.Join(ErrStorageWriteFailed, err)
	}

	res, err := m.enc.Encode(ctx, in.Data, mimeType, originalPath)
	if err != nil {
		m.discardIngest(ctx, originalPath, res)
		return nil, err
	}
	if verr := res.Err(); verr != nil {
		m.log.WarnContext(ctx, "media stored with partial variants",
			logger.MediaID(id),
			logger.MediaPath(originalPath),
			logger.Error(verr),
		)
	}

	md := &Media{
		ID:        id,
		Disk:      m.disk,
		Type:      TypeImage,
		Path:      originalPath,
		MIME:      mimeType,
		Size:      int64(len(in.Data)),
		Scope:     scope,
		OwnerID:   in.OwnerID,
		Position:  in.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	defaultPath := m.enc.DefaultPath(originalPath)
	for _, v := range res.Variants {
		if v.Path == defaultPath {
			md.ThumbPath = &defaultPath
			break
		}
	}

	if err := m.repo.Create(ctx, md); err != nil {
		m.discardIngest(ctx, originalPath, res)
		return nil, errors.Join(ErrPersistFailed, err)
	}

	m.log.InfoContext(ctx, "media ingested",
		logger.MediaID(id),
		logger.MediaPath(originalPath),
		logger.Scope(scope),
		slog.Int("variants", len(res.Variants)),
	)

	return md, nil
}

// DeleteIfUnreferenced removes the files of md that no other row references and
// then removes the row. Storage failures are logged and swallowed; only the
// repository error is returned. A file still referenced elsewhere is kept.
//
// Variant files are not recorded on rows, so while md.Path is still referenced
// every other file of md is kept as well.
func (m *Manager) DeleteIfUnreferenced(ctx context.Context, md *Media) error {
	if md == nil {
		return ErrMediaNotFound
	}

	originalInUse := m.isReferenced(ctx, md, md.Path)
	for _, p := range m.candidates(md) {
		if !m.storage.Exists(ctx, p) {
			continue
		}

		referenced := originalInUse
		if !referenced && p != md.Path {
			referenced = m.isReferenced(ctx, md, p)
		}
		if referenced {
			m.log.DebugContext(ctx, "file still referenced",
				logger.MediaID(md.ID),
				logger.MediaPath(p),
			)
			continue
		}

		if err := m.storage.Delete(ctx, p); err != nil && !errors.Is(err, file.ErrFileNotFound) {
			m.log.WarnContext(ctx, "failed to delete media file",
				logger.MediaID(md.ID),
				logger.MediaPath(p),
				logger.Error(errors.Join(ErrStorageDeleteFailed, err)),
			)
		}
	}

	if err := m.repo.Delete(ctx, md.ID); err != nil {
		return err
	}

	m.log.InfoContext(ctx, "media deleted", logger.MediaID(md.ID), logger.MediaPath(md.Path))
	return nil
}

// isReferenced asks the ledger about path. A failed lookup counts as referenced.
func (m *Manager) isReferenced(ctx context.Context, md *Media, path string) bool {
	referenced, err := m.ledger.IsReferenced(ctx, path, md.ID)
	if err != nil {
		m.log.WarnContext(ctx, "reference check failed, keeping file",
			logger.MediaID(md.ID),
			logger.MediaPath(path),
			logger.Error(err),
		)
		return true
	}
	return referenced
}

// Delete loads the row by id and calls DeleteIfUnreferenced.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	md, err := m.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	return m.DeleteIfUnreferenced(ctx, md)
}

// Get returns the row with the given id.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Media, error) {
	return m.repo.Get(ctx, id)
}

// List returns the rows of one owner ordered by position. An empty ownerID
// lists the rows stored without an owner.
func (m *Manager) List(ctx context.Context, scope, ownerID string) ([]*Media, error) {
	return m.repo.ListByOwner(ctx, slug.Make(scope, slug.Separator("_")), strings.TrimSpace(ownerID))
}

// Attach creates a new row for another owner that shares the files of id.
func (m *Manager) Attach(ctx context.Context, id uuid.UUID, scope string, ownerID *string) (*Media, error) {
	src, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	scope = slug.Make(scope, slug.Separator("_"))
	if scope == "" {
		return nil, fmt.Errorf("%w: scope is required", ErrInvalidUpload)
	}

	now := m.now().UTC()
	clone := *src
	clone.ID = uuid.New()
	clone.Scope = scope
	clone.OwnerID = ownerID
	clone.Position = 0
	clone.CreatedAt = now
	clone.UpdatedAt = now
	if src.ThumbPath != nil {
		thumb := *src.ThumbPath
		clone.ThumbPath = &thumb
	}

	if err := m.repo.Create(ctx, &clone); err != nil {
		return nil, errors.Join(ErrPersistFailed, err)
	}
	return &clone, nil
}

// SetPosition changes the ordering of a row within its owner.
func (m *Manager) SetPosition(ctx context.Context, id uuid.UUID, position int) (*Media, error) {
	md, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	md.Position = position
	md.UpdatedAt = m.now().UTC()
	if err := m.repo.Update(ctx, md); err != nil {
		return nil, err
	}
	return md, nil
}

// URL returns the public URL of a stored path.
func (m *Manager) URL(path string) string {
	return m.storage.URL(path)
}

// candidates lists the distinct files a row may own: the original, the
// thumbnail and every variant name derivable from the original.
func (m *Manager) candidates(md *Media) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, p := range md.Paths() {
		add(p)
	}
	if md.Path != "" {
		for _, p := range m.enc.Paths(md.Path) {
			add(p)
		}
	}
	return out
}

// discardIngest removes the original and every variant written by a failed
// ingest. The paths are new and unique to the upload, so nothing else can
// reference them. res may be nil.
func (m *Manager) discardIngest(ctx context.Context, originalPath string, res *imaging.Result) {
	m.discard(ctx, originalPath)
	if res == nil {
		return
	}
	for _, v := range res.Variants {
		m.discard(ctx, v.Path)
	}
}

// discard removes a file written during a failed ingest.
func (m *Manager) discard(ctx context.Context, path string) {
	if err := m.storage.Delete(context.WithoutCancel(ctx), path); err != nil && !errors.Is(err, file.ErrFileNotFound) {
		m.log.WarnContext(ctx, "failed to clean up media file",
			logger.MediaPath(path),
			logger.Error(errors.Join(ErrStorageDeleteFailed, err)),
		)
	}
}

// buildPath returns <scope>/<yyyy>/<mm>/<uuid>[-<slug>]<ext>.
func buildPath(scope string, id uuid.UUID, filename, ext string, now time.Time) string {
	var stem string
	if strings.TrimSpace(filename) != "" {
		name := file.SanitizeFilename(filename)
		stem = slug.Make(strings.TrimSuffix(name, fileExt(name)), slug.MaxLength(maxSlugLength))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s/%04d/%02d/%s", scope, now.Year(), int(now.Month()), id)
	if stem != "" {
		b.WriteByte('-')
		b.WriteString(stem)
	}
	b.WriteString(ext)
	return b.String()
}

func fileExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}
