package repository

import (
	"context"

	"index-pulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const createScansTable = `
CREATE TABLE IF NOT EXISTS preopen_scans (
    scan_id     UUID        PRIMARY KEY,
    scanned_at  TIMESTAMPTZ NOT NULL,
    net_impact  NUMERIC     NOT NULL,
    sentiment   TEXT        NOT NULL,
    gap         TEXT        NOT NULL,
    probability NUMERIC     NOT NULL
);

CREATE TABLE IF NOT EXISTS preopen_movers (
    scan_id     UUID    NOT NULL REFERENCES preopen_scans (scan_id) ON DELETE CASCADE,
    symbol      TEXT    NOT NULL,
    price       NUMERIC NOT NULL,
    change_pct  NUMERIC NOT NULL,
    sector      TEXT    NOT NULL,
    influence   NUMERIC NOT NULL,
    PRIMARY KEY (scan_id, symbol)
);
`

// ScanRepository archives pre-open scans with their movers.
type ScanRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewScanRepository(pool PgxPool, tracer trace.Tracer) *ScanRepository {
	return &ScanRepository{pool: pool, tracer: tracer}
}

func (r *ScanRepository) RunMigrations(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "scan-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createScansTable)
	return err
}

func (r *ScanRepository) SaveScan(ctx context.Context, a domain.ImpactAnalysis) error {
	ctx, span := r.tracer.Start(ctx, "scan-repo.save-scan")
	defer span.End()

	batch := &pgx.Batch{}
	batch.Queue(
		`INSERT INTO preopen_scans (scan_id, scanned_at, net_impact, sentiment, gap, probability)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (scan_id) DO NOTHING`,
		a.ScanID, a.ScannedAt, a.NetImpact, a.Sentiment, a.Gap, a.Probability,
	)
	movers := append(append([]domain.Mover(nil), a.Gainers...), a.Losers...)
	for _, m := range movers {
		batch.Queue(
			`INSERT INTO preopen_movers (scan_id, symbol, price, change_pct, sector, influence)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (scan_id, symbol) DO NOTHING`,
			a.ScanID, m.Symbol, m.Price, m.ChangePct, m.Sector, m.Influence,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
