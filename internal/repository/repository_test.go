package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"index-pulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type fakePool struct {
	execSQL  []string
	execArgs [][]any
	batch    *pgx.Batch
	queryErr error
}

func (f *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakePool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batch = b
	return &fakeBatchResults{}
}

func (f *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, f.queryErr
}

type fakeBatchResults struct {
	execs int
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	b.execs++
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (b *fakeBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not used") }
func (b *fakeBatchResults) QueryRow() pgx.Row        { return nil }
func (b *fakeBatchResults) Close() error             { return nil }

func TestQuoteRepositoryMigrationsAndSave(t *testing.T) {
	pool := &fakePool{}
	repo := NewQuoteRepository(pool, testTracer)

	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(pool.execSQL[0], "CREATE TABLE IF NOT EXISTS index_quotes") {
		t.Fatalf("unexpected migration sql: %s", pool.execSQL[0])
	}

	q := domain.Quote{Symbol: "NIFTY 50", Price: 22100, Source: "nse", EstimatedVolume: true, CapturedAt: time.Now()}
	if err := repo.SaveQuote(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args := pool.execArgs[1]
	if args[0] != "NIFTY 50" || args[2] != 22100.0 || args[9] != false || args[10] != true || args[11] != false {
		t.Fatalf("unexpected insert args: %v", args)
	}
}

func TestQuoteRepositoryRecentQuotesError(t *testing.T) {
	pool := &fakePool{queryErr: errors.New("down")}
	if _, err := NewQuoteRepository(pool, testTracer).RecentQuotes(context.Background(), "NIFTY 50", 5); err == nil {
		t.Fatal("expected query error")
	}
}

func TestScanRepositoryQueuesScanAndMovers(t *testing.T) {
	pool := &fakePool{}
	repo := NewScanRepository(pool, testTracer)

	analysis := domain.ImpactAnalysis{
		ScanID:    "6f1c1f8e-0000-4000-8000-000000000001",
		ScannedAt: time.Now(),
		Gainers:   []domain.Mover{{Symbol: "HDFCBANK", ChangePct: 2.5}},
		Losers:    []domain.Mover{{Symbol: "INFY", ChangePct: -3}, {Symbol: "TCS", ChangePct: -2.1}},
	}
	if err := repo.SaveScan(context.Background(), analysis); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.batch.Len() != 4 {
		t.Fatalf("expected scan row plus 3 movers, got %d", pool.batch.Len())
	}
}
