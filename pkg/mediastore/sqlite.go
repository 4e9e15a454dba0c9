package mediastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/assetkit/pkg/media"
)

const (
	busyTimeoutMS   = 5000
	maxOpenConns    = 1
	connMaxLifetime = 5 * time.Minute
)

// SQLite is a media.Repository stored in a single SQLite file.
type SQLite struct {
	db *sql.DB
}

var _ media.Repository = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at path and applies the embedded
// migrations. ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := configureDB(ctx, db, path == ":memory:"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the connection; used by the readiness probe.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func configureDB(ctx context.Context, db *sql.DB, memory bool) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	if !memory {
		pragmas = append([]string{"PRAGMA journal_mode = WAL;"}, pragmas...)
	}
	for _, stmt := range pragmas {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("configure sqlite: %w", err)
		}
	}

	// A single connection serializes writers and keeps ":memory:" on one database.
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	if !memory {
		db.SetConnMaxLifetime(connMaxLifetime)
	}
	return nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, SQLiteMigrations())
	if err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", errors.New("sqlite path is required")
	}
	if path == ":memory:" {
		return path, nil
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), nil
}

const sqliteColumns = `id, disk, type, path, thumb_path, mime, size, scope, owner_id, position, created_at, updated_at`

func (s *SQLite) Create(ctx context.Context, m *media.Media) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO media (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.Disk, m.Type, m.Path, nullString(m.ThumbPath), m.MIME, m.Size,
		m.Scope, nullString(m.OwnerID), m.Position, formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", media.ErrMediaExists, m.ID)
		}
		return fmt.Errorf("create media: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id uuid.UUID) (*media.Media, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM media WHERE id = ?`, id.String())
	m, err := scanSQLiteMedia(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", media.ErrMediaNotFound, id)
		}
		return nil, fmt.Errorf("get media: %w", err)
	}
	return m, nil
}

func (s *SQLite) Update(ctx context.Context, m *media.Media) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE media SET path = ?, thumb_path = ?, scope = ?, owner_id = ?, position = ?, updated_at = ? WHERE id = ?`,
		m.Path, nullString(m.ThumbPath), m.Scope, nullString(m.OwnerID), m.Position, formatTime(m.UpdatedAt), m.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update media: %w", err)
	}
	return affectedOne(res, m.ID)
}

func (s *SQLite) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return affectedOne(res, id)
}

func (s *SQLite) ListByOwner(ctx context.Context, scope, ownerID string) ([]*media.Media, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM media WHERE scope = ? AND owner_id IS ? ORDER BY position, created_at`,
		scope, ownerArg(ownerID),
	)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*media.Media
	for rows.Next() {
		m, err := scanSQLiteMedia(rows)
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
func (s *SQLite) ReferencesPath(ctx context.Context, path string, excluding uuid.UUID) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM media WHERE (path = ?1 OR thumb_path = ?1) AND id <> ?2)`,
		path, excluding.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check media references: %w", err)
	}
	return exists == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteMedia(row rowScanner) (*media.Media, error) {
	var (
		m                    media.Media
		id                   string
		thumbPath, ownerID   sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &m.Disk, &m.Type, &m.Path, &thumbPath, &m.MIME, &m.Size,
		&m.Scope, &ownerID, &m.Position, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if m.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse media id %q: %w", id, err)
	}
	if thumbPath.Valid {
		m.ThumbPath = &thumbPath.String
	}
	if ownerID.Valid {
		m.OwnerID = &ownerID.String
	}
	if m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if m.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &m, nil
}

func affectedOne(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", media.ErrMediaNotFound, id)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// ownerArg maps an empty owner to NULL for the list queries.
func ownerArg(owner string) any {
	if owner == "" {
		return nil
	}
	return owner
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
