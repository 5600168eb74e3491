package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/pkg/metrics"
)

// SourcePostgres is the metrics label of the price table
const SourcePostgres = "postgres"

// DB is the subset of *pgxpool.Pool used by the repository
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PriceRepository implements contracts.PriceRepository on market.daily_prices
// SSOT: the price table is read and written here only
type PriceRepository struct {
	db DB
}

var _ contracts.PriceRepository = (*PriceRepository)(nil)

// NewPriceRepository creates a repository over a pool
func NewPriceRepository(db DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetRange returns the bars of symbol within [from, to], oldest first
func (r *PriceRepository) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceBar, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM market.daily_prices
		WHERE symbol = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.db.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("query prices %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []contracts.PriceBar
	for rows.Next() {
		var b contracts.PriceBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan price %s: %w", symbol, err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// SaveBatch upserts bars of symbol in one round trip
func (r *PriceRepository) SaveBatch(ctx context.Context, symbol string, bars []contracts.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO market.daily_prices
			(symbol, trade_date, open_price, high_price, low_price, close_price, volume, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume,
			updated_at = now()
	`

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(query, symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range bars {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert prices %s: %w", symbol, err)
		}
	}
	return nil
}

// DeleteSymbol removes every bar of symbol
func (r *PriceRepository) DeleteSymbol(ctx context.Context, symbol string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM market.daily_prices WHERE symbol = $1`, symbol)
	return err
}

// PostgresFetcher serves HistoryFetcher from the price table. Bars are
// stored under the resolved ticker, so candidates are tried like Yahoo.
type PostgresFetcher struct {
	repo     contracts.PriceRepository
	resolver contracts.BenchmarkResolver
	now      func() time.Time
}

var _ contracts.HistoryFetcher = (*PostgresFetcher)(nil)

// NewPostgresFetcher creates a fetcher over repo
func NewPostgresFetcher(repo contracts.PriceRepository) *PostgresFetcher {
	return &PostgresFetcher{repo: repo, resolver: Resolver{}, now: time.Now}
}

// FetchHistory returns the stored bars of the first candidate with data
func (f *PostgresFetcher) FetchHistory(ctx context.Context, symbol, period string) (*contracts.PriceSeries, error) {
	to := f.now().UTC()
	from, err := PeriodStart(to, period)
	if err != nil {
		return nil, err
	}

	for _, ticker := range Candidates(f.resolver, symbol) {
		bars, err := f.repo.GetRange(ctx, ticker, from, to)
		if err != nil {
			metrics.HistoryFetches.WithLabelValues(SourcePostgres, metrics.OutcomeError).Inc()
			return nil, fmt.Errorf("%w: %v", contracts.ErrInternal, err)
		}
		series := &contracts.PriceSeries{Symbol: symbol, Resolved: ticker, Bars: bars}
		series.Normalize()
		if series.Len() > 0 {
			metrics.HistoryFetches.WithLabelValues(SourcePostgres, metrics.OutcomeOK).Inc()
			return series, nil
		}
	}

	metrics.HistoryFetches.WithLabelValues(SourcePostgres, metrics.OutcomeError).Inc()
	return nil, fmt.Errorf("%w: no historical data found for symbol '%s'", contracts.ErrNotFound, symbol)
}
