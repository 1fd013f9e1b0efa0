package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
)

const uniqueViolation = "23505"

const linkColumns = `id, original_url, short_code, click_count, created_at, expires_at`

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// TryCreate relies on the unique constraint on short_code: a conflicting
// insert affects no rows and is reported as shortener.ErrConflict.
func (p *PostgresStore) TryCreate(ctx context.Context, link *shortener.Link) error {
	query := `
		INSERT INTO links (id, original_url, short_code, click_count, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (short_code) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		link.ID,
		link.OriginalURL,
		string(link.Code),
		link.ClickCount,
		link.CreatedAt,
		link.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shortener.ErrConflict
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrConflict
	}

	return nil
}

func (p *PostgresStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`

	link, err := scanLink(p.pool.QueryRow(ctx, query, string(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return link, nil
}

func (p *PostgresStore) IncrementClicks(ctx context.Context, id shortener.LinkID) (int64, error) {
	query := `UPDATE links SET click_count = click_count + 1 WHERE id = $1 RETURNING click_count`

	var count int64

	if err := p.pool.QueryRow(ctx, query, id).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shortener.ErrNotFound
		}

		return 0, err
	}

	return count, nil
}

func (p *PostgresStore) Delete(ctx context.Context, id shortener.LinkID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) List(ctx context.Context, filter shortener.ListFilter) ([]*shortener.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links`
	args := []any{}

	if filter.Search != "" {
		query += ` WHERE original_url ILIKE $1 OR short_code ILIKE $1`
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	query += ` ORDER BY created_at DESC`

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []*shortener.Link{}

	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	return links, rows.Err()
}

func (p *PostgresStore) Stats(ctx context.Context) (shortener.Stats, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(click_count), 0)::BIGINT FROM links`

	var stats shortener.Stats

	err := p.pool.QueryRow(ctx, query).Scan(&stats.TotalLinks, &stats.TotalClicks)
	if err != nil {
		return shortener.Stats{}, fmt.Errorf("link stats: %w", err)
	}

	return stats, nil
}

func (p *PostgresStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM links WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func scanLink(row pgx.Row) (*shortener.Link, error) {
	var (
		link shortener.Link
		code string
	)

	err := row.Scan(
		&link.ID,
		&link.OriginalURL,
		&code,
		&link.ClickCount,
		&link.CreatedAt,
		&link.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	link.Code = shortener.Code(code)

	return &link, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
