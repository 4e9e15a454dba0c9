package mediastore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/assetkit/pkg/media"
	"github.com/dmitrymomot/assetkit/pkg/pg"
)

// DB is the subset of *pgxpool.Pool used by Postgres. pgx.Tx satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is a media.Repository backed by PostgreSQL.
type Postgres struct {
	db DB
}

var _ media.Repository = (*Postgres)(nil)

// NewPostgres returns a repository using db.
func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

const pgColumns = `id, disk, type, path, thumb_path, mime, size, scope, owner_id, position, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, m *media.Media) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO media (`+pgColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.Disk, m.Type, m.Path, m.ThumbPath, m.MIME, m.Size, m.Scope, m.OwnerID, m.Position, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", media.ErrMediaExists, m.ID)
		}
		return fmt.Errorf("create media: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, id uuid.UUID) (*media.Media, error) {
	row := s.db.QueryRow(ctx, `SELECT `+pgColumns+` FROM media WHERE id = $1`, id)
	m, err := scanPgMedia(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", media.ErrMediaNotFound, id)
		}
		return nil, fmt.Errorf("get media: %w", err)
	}
	return m, nil
}

func (s *Postgres) Update(ctx context.Context, m *media.Media) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE media SET path = $2, thumb_path = $3, scope = $4, owner_id = $5, position = $6, updated_at = $7 WHERE id = $1`,
		m.ID, m.Path, m.ThumbPath, m.Scope, m.OwnerID, m.Position, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", media.ErrMediaNotFound, m.ID)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", media.ErrMediaNotFound, id)
	}
	return nil
}

func (s *Postgres) ListByOwner(ctx context.Context, scope, ownerID string) ([]*media.Media, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+pgColumns+` FROM media WHERE scope = $1 AND owner_id IS NOT DISTINCT FROM $2 ORDER BY position, created_at`,
		scope, ownerArg(ownerID),
	)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var out []*media.Media
	for rows.Next() {
		m, err := scanPgMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("list media: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return out, nil
}

// ReferencesPath runs a fresh EXISTS query; it is never cached.
func (s *Postgres) ReferencesPath(ctx context.Context, path string, excluding uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM media WHERE (path = $1 OR thumb_path = $1) AND id <> $2)`,
		path, excluding,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check media references: %w", err)
	}
	return exists, nil
}

func scanPgMedia(row pgx.Row) (*media.Media, error) {
	var m media.Media
	err := row.Scan(&m.ID, &m.Disk, &m.Type, &m.Path, &m.ThumbPath, &m.MIME, &m.Size,
		&m.Scope, &m.OwnerID, &m.Position, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
