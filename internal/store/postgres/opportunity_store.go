package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a new OpportunityStore backed by the given
// connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const opportunitySelectCols = `id, token0, token1, token0_symbol, token1_symbol,
	buy_dex, sell_dex, buy_price, sell_price,
	price_difference, price_difference_percentage,
	estimated_profit, trade_amount, gas_cost, net_profit, detected_at`

func scanOpportunityRows(rows pgx.Rows) ([]domain.ArbitrageOpportunity, error) {
	var opps []domain.ArbitrageOpportunity
	for rows.Next() {
		var o domain.ArbitrageOpportunity
		if err := rows.Scan(
			&o.ID, &o.Pair.Token0, &o.Pair.Token1,
			&o.Pair.Token0Symbol, &o.Pair.Token1Symbol,
			&o.BuyDex, &o.SellDex, &o.BuyPrice, &o.SellPrice,
			&o.PriceDifference, &o.PriceDifferencePercentage,
			&o.EstimatedProfit, &o.TradeAmount, &o.GasCost, &o.NetProfit,
			&o.Timestamp,
		); err != nil {
			return nil, err
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

// Insert stores a new opportunity.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.ArbitrageOpportunity) error {
	const query = `
		INSERT INTO arbitrage_opportunities (
			id, token0, token1, token0_symbol, token1_symbol,
			buy_dex, sell_dex, buy_price, sell_price,
			price_difference, price_difference_percentage,
			estimated_profit, trade_amount, gas_cost, net_profit, detected_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11,
			$12, $13, $14, $15, $16
		)`

	_, err := s.pool.Exec(ctx, query,
		opp.ID, opp.Pair.Token0, opp.Pair.Token1,
		opp.Pair.Token0Symbol, opp.Pair.Token1Symbol,
		opp.BuyDex, opp.SellDex, opp.BuyPrice, opp.SellPrice,
		opp.PriceDifference, opp.PriceDifferencePercentage,
		opp.EstimatedProfit, opp.TradeAmount, opp.GasCost, opp.NetProfit,
		opp.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// ListRecent returns the most recent opportunities ordered by detection time
// descending. A non-positive limit returns all rows.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.ArbitrageOpportunity, error) {
	query := `SELECT ` + opportunitySelectCols + ` FROM arbitrage_opportunities ORDER BY detected_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	opps, err := scanOpportunityRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent opportunities: %w", err)
	}
	return opps, nil
}

// ListByPair returns opportunities for the given token pair, matching the
// pair's addresses in either orientation.
func (s *OpportunityStore) ListByPair(ctx context.Context, pair domain.TokenPair) ([]domain.ArbitrageOpportunity, error) {
	const query = `SELECT ` + opportunitySelectCols + `
		FROM arbitrage_opportunities
		WHERE (token0 = $1 AND token1 = $2) OR (token0 = $2 AND token1 = $1)
		ORDER BY detected_at DESC`

	rows, err := s.pool.Query(ctx, query, pair.Token0, pair.Token1)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities by pair: %w", err)
	}
	defer rows.Close()

	opps, err := scanOpportunityRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan opportunities by pair: %w", err)
	}
	return opps, nil
}

// ListBefore returns all opportunities detected strictly before the cutoff,
// oldest first (for archiving).
func (s *OpportunityStore) ListBefore(ctx context.Context, before time.Time) ([]domain.ArbitrageOpportunity, error) {
	const query = `SELECT ` + opportunitySelectCols + `
		FROM arbitrage_opportunities WHERE detected_at < $1 ORDER BY detected_at ASC`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities before: %w", err)
	}
	defer rows.Close()
	return scanOpportunityRows(rows)
}

// Stats aggregates opportunities detected over the trailing number of days.
func (s *OpportunityStore) Stats(ctx context.Context, days int) (domain.OpportunityStats, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)

	var stats domain.OpportunityStats
	var total, avg, best *decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), SUM(net_profit), AVG(net_profit), MAX(net_profit)
		FROM arbitrage_opportunities
		WHERE detected_at >= $1`, since,
	).Scan(&stats.TotalOpportunities, &total, &avg, &best)
	if err != nil {
		return domain.OpportunityStats{}, fmt.Errorf("postgres: opportunity stats: %w", err)
	}
	if total != nil {
		stats.TotalProfit = *total
	}
	if avg != nil {
		stats.AverageProfit = *avg
	}
	if best != nil {
		stats.BestOpportunityProfit = *best
	}

	var buyDex, sellDex string
	err = s.pool.QueryRow(ctx, `
		SELECT buy_dex, sell_dex
		FROM arbitrage_opportunities
		WHERE detected_at >= $1
		GROUP BY buy_dex, sell_dex
		ORDER BY COUNT(*) DESC
		LIMIT 1`, since,
	).Scan(&buyDex, &sellDex)
	switch err {
	case nil:
		stats.MostActiveDexPair = &domain.DexPairKey{BuyDex: buyDex, SellDex: sellDex}
	case pgx.ErrNoRows:
		// No opportunities in window; leave nil.
	default:
		return domain.OpportunityStats{}, fmt.Errorf("postgres: most active dex pair: %w", err)
	}

	return stats, nil
}

// DeleteBefore removes opportunities detected strictly before the cutoff and
// returns the number of rows deleted.
func (s *OpportunityStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM arbitrage_opportunities WHERE detected_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete opportunities before: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ domain.OpportunityStore = (*OpportunityStore)(nil)
