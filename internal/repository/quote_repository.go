package repository

import (
	"context"

	"index-pulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createQuotesTable = `
CREATE TABLE IF NOT EXISTS index_quotes (
    symbol      TEXT        NOT NULL,
    captured_at TIMESTAMPTZ NOT NULL,
    price       NUMERIC     NOT NULL,
    open        NUMERIC     NOT NULL,
    high        NUMERIC     NOT NULL,
    low         NUMERIC     NOT NULL,
    volume      NUMERIC     NOT NULL,
    change_pct  NUMERIC     NOT NULL,
    source      TEXT        NOT NULL,
    estimated_ohlc   BOOLEAN NOT NULL DEFAULT FALSE,
    estimated_volume BOOLEAN NOT NULL DEFAULT FALSE,
    change_unresolved BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (symbol, captured_at)
);

CREATE INDEX IF NOT EXISTS idx_index_quotes_symbol_time
    ON index_quotes (symbol, captured_at DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// QuoteRepository archives every fetched quote. The live engine never reads
// it back; history is rebuilt from upstream data after a restart.
type QuoteRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewQuoteRepository(pool PgxPool, tracer trace.Tracer) *QuoteRepository {
	return &QuoteRepository{pool: pool, tracer: tracer}
}

func (r *QuoteRepository) RunMigrations(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "quote-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createQuotesTable)
	return err
}

func (r *QuoteRepository) SaveQuote(ctx context.Context, q domain.Quote) error {
	ctx, span := r.tracer.Start(ctx, "quote-repo.save-quote")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO index_quotes (symbol, captured_at, price, open, high, low, volume, change_pct, source, estimated_ohlc, estimated_volume, change_unresolved)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (symbol, captured_at) DO NOTHING`,
		q.Symbol, q.CapturedAt, q.Price, q.Open, q.High, q.Low, q.Volume, q.ChangePct, q.Source,
		q.EstimatedOHLC, q.EstimatedVolume, q.ChangeUnresolved,
	)
	return err
}

// RecentQuotes returns up to limit archived quotes, newest first.
func (r *QuoteRepository) RecentQuotes(ctx context.Context, symbol string, limit int) ([]domain.Quote, error) {
	ctx, span := r.tracer.Start(ctx, "quote-repo.recent-quotes")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT symbol, captured_at, price, open, high, low, volume, change_pct, source, estimated_ohlc, estimated_volume, change_unresolved
		 FROM index_quotes
		 WHERE symbol = $1
		 ORDER BY captured_at DESC
		 LIMIT $2`,
		symbol, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		q := domain.Quote{Status: domain.QuoteValid}
		if err := rows.Scan(&q.Symbol, &q.CapturedAt, &q.Price, &q.Open, &q.High, &q.Low, &q.Volume, &q.ChangePct, &q.Source, &q.EstimatedOHLC, &q.EstimatedVolume, &q.ChangeUnresolved); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
