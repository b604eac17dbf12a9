package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

// QuoteStore implements domain.QuoteStore using PostgreSQL.
type QuoteStore struct {
	pool *pgxpool.Pool
}

// NewQuoteStore creates a new QuoteStore backed by the given connection pool.
func NewQuoteStore(pool *pgxpool.Pool) *QuoteStore {
	return &QuoteStore{pool: pool}
}

const quoteSelectCols = `dex_name, token0, token1, token0_symbol, token1_symbol,
	price, liquidity, observed_at`

func scanQuoteRows(rows pgx.Rows) ([]domain.PriceQuote, error) {
	var quotes []domain.PriceQuote
	for rows.Next() {
		var q domain.PriceQuote
		if err := rows.Scan(
			&q.DexName, &q.Pair.Token0, &q.Pair.Token1,
			&q.Pair.Token0Symbol, &q.Pair.Token1Symbol,
			&q.Price, &q.Liquidity, &q.Timestamp,
		); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// Insert stores a single quote observation.
func (s *QuoteStore) Insert(ctx context.Context, quote domain.PriceQuote) error {
	const query = `
		INSERT INTO price_quotes (
			dex_name, token0, token1, token0_symbol, token1_symbol,
			price, liquidity, observed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		quote.DexName, quote.Pair.Token0, quote.Pair.Token1,
		quote.Pair.Token0Symbol, quote.Pair.Token1Symbol,
		quote.Price, quote.Liquidity, quote.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert quote: %w", err)
	}
	return nil
}

// ListRange returns quotes observed within [start, end], newest first. When
// dexName is non-empty only that venue's quotes are returned.
func (s *QuoteStore) ListRange(ctx context.Context, start, end time.Time, dexName string) ([]domain.PriceQuote, error) {
	query := `SELECT ` + quoteSelectCols + `
		FROM price_quotes WHERE observed_at >= $1 AND observed_at <= $2`
	args := []any{start, end}

	if dexName != "" {
		query += " AND dex_name = $3"
		args = append(args, dexName)
	}
	query += " ORDER BY observed_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list quotes in range: %w", err)
	}
	defer rows.Close()

	quotes, err := scanQuoteRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan quotes in range: %w", err)
	}
	return quotes, nil
}

// ListBefore returns all quotes observed strictly before the cutoff, oldest
// first (for archiving).
func (s *QuoteStore) ListBefore(ctx context.Context, before time.Time) ([]domain.PriceQuote, error) {
	query := `SELECT ` + quoteSelectCols + `
		FROM price_quotes WHERE observed_at < $1 ORDER BY observed_at ASC`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list quotes before: %w", err)
	}
	defer rows.Close()
	return scanQuoteRows(rows)
}

// DeleteBefore removes quotes observed strictly before the cutoff and returns
// the number of rows deleted.
func (s *QuoteStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM price_quotes WHERE observed_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete quotes before: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ domain.QuoteStore = (*QuoteStore)(nil)
