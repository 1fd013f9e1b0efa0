package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/shortener"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqlSchema = `
CREATE TABLE IF NOT EXISTS links (
	id           TEXT    PRIMARY KEY,
	original_url TEXT    NOT NULL,
	short_code   TEXT    NOT NULL UNIQUE,
	click_count  INTEGER NOT NULL DEFAULT 0 CHECK (click_count >= 0),
	created_at   INTEGER NOT NULL,
	expires_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at);
CREATE INDEX IF NOT EXISTS idx_links_expires_at ON links(expires_at);
`

// SQLStore implements shortener.Repository on SQLite (modernc) or libSQL/Turso.
// Timestamps are stored as Unix microseconds.
type SQLStore struct {
	db *sql.DB
}

// IsSQLDSN reports whether dsn addresses a SQLite or libSQL database.
func IsSQLDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") ||
		strings.HasPrefix(dsn, "libsql://") ||
		strings.HasPrefix(dsn, "wss://") ||
		strings.HasSuffix(dsn, ".db") ||
		dsn == ":memory:"
}

// SQLDriver returns the database/sql driver for dsn: "libsql" for remote
// Turso databases, "sqlite" for local files.
func SQLDriver(dsn string) string {
	if strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "wss://") {
		return "libsql"
	}

	return "sqlite"
}

// OpenSQLStore opens the database at dsn and creates the schema.
func OpenSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	driverName := SQLDriver(dsn)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if driverName == "sqlite" {
		// One writer keeps SQLite from returning SQLITE_BUSY under load.
		db.SetMaxOpenConns(1)

		for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()

				return nil, err
			}
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	if _, err := db.ExecContext(ctx, sqlSchema); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) TryCreate(ctx context.Context, link *shortener.Link) error {
	query := `
		INSERT INTO links (id, original_url, short_code, click_count, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		link.ID.String(),
		link.OriginalURL,
		string(link.Code),
		link.ClickCount,
		link.CreatedAt.UnixMicro(),
		link.ExpiresAt.UnixMicro(),
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return shortener.ErrConflict
		}

		return err
	}

	return nil
}

func (s *SQLStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = ?`

	link, err := scanSQLLink(s.db.QueryRowContext(ctx, query, string(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return link, nil
}

func (s *SQLStore) IncrementClicks(ctx context.Context, id shortener.LinkID) (int64, error) {
	query := `UPDATE links SET click_count = click_count + 1 WHERE id = ? RETURNING click_count`

	var count int64

	if err := s.db.QueryRowContext(ctx, query, id.String()).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, shortener.ErrNotFound
		}

		return 0, err
	}

	return count, nil
}

func (s *SQLStore) Delete(ctx context.Context, id shortener.LinkID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (s *SQLStore) List(ctx context.Context, filter shortener.ListFilter) ([]*shortener.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links`
	args := []any{}

	if filter.Search != "" {
		query += ` WHERE original_url LIKE ? ESCAPE '\' OR short_code LIKE ? ESCAPE '\'`
		pattern := "%" + escapeLike(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}

	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []*shortener.Link{}

	for rows.Next() {
		link, err := scanSQLLink(rows)
		if err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	return links, rows.Err()
}

func (s *SQLStore) Stats(ctx context.Context) (shortener.Stats, error) {
	var stats shortener.Stats

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(click_count), 0) FROM links`).
		Scan(&stats.TotalLinks, &stats.TotalClicks)
	if err != nil {
		return shortener.Stats{}, err
	}

	return stats, nil
}

func (s *SQLStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM links WHERE expires_at <= ?`, now.UnixMicro())
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLStore) Shutdown() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLLink(row rowScanner) (*shortener.Link, error) {
	var (
		link                 shortener.Link
		id, code             string
		createdAt, expiresAt int64
	)

	if err := row.Scan(&id, &link.OriginalURL, &code, &link.ClickCount, &createdAt, &expiresAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	link.ID = parsed
	link.Code = shortener.Code(code)
	link.CreatedAt = time.UnixMicro(createdAt).UTC()
	link.ExpiresAt = time.UnixMicro(expiresAt).UTC()

	return &link, nil
}

// isSQLiteUnique detects unique violations from modernc's typed error and
// falls back to the message for libSQL, which only reports text.
func isSQLiteUnique(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Compile-time check.
var _ shortener.Repository = (*SQLStore)(nil)
