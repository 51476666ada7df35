package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"index-pulse/internal/domain"
	"index-pulse/internal/history"
	"index-pulse/internal/market"
	"index-pulse/internal/preopen"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var (
	testTracer = trace.NewNoopTracerProvider().Tracer("test")
	testLog    = zerolog.Nop()
	ist        = time.FixedZone("IST", 5*3600+1800)
)

type stubSource struct {
	name  string
	quote *domain.Quote
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	q := *s.quote
	q.Symbol = symbol
	return &q, nil
}

type stubSnapshots struct {
	entries []domain.PreOpenEntry
	err     error
}

func (s *stubSnapshots) FetchSnapshot(ctx context.Context) ([]domain.PreOpenEntry, error) {
	return s.entries, s.err
}

type fakeQuoteArchive struct {
	mu    sync.Mutex
	saved []domain.Quote
}

func (f *fakeQuoteArchive) SaveQuote(ctx context.Context, q domain.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, q)
	return nil
}

func (f *fakeQuoteArchive) RecentQuotes(ctx context.Context, symbol string, limit int) ([]domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.saved) {
		limit = len(f.saved)
	}
	return append([]domain.Quote(nil), f.saved[:limit]...), nil
}

type fakeScanArchive struct{ saved []domain.ImpactAnalysis }

func (f *fakeScanArchive) SaveScan(ctx context.Context, a domain.ImpactAnalysis) error {
	f.saved = append(f.saved, a)
	return nil
}

type fakeRedis struct {
	data   map[string][]byte
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func testHours() market.Hours {
	days, _ := market.ParseDays([]string{"Mon", "Tue", "Wed", "Thu", "Fri"})
	return market.Hours{
		Location:     ist,
		Open:         9*60 + 15,
		Close:        15*60 + 30,
		PreOpenStart: 9 * 60,
		PreOpenEnd:   9*60 + 15,
		Days:         days,
	}
}

func newTestBuffer(t *testing.T) *history.Buffer {
	t.Helper()
	buf, err := history.New(history.DefaultCapacity)
	if err != nil {
		t.Fatalf("history.New: %v", err)
	}
	return buf
}

func newTestFetcher(t *testing.T, buf *history.Buffer, sources ...QuoteSource) *QuoteFetcher {
	t.Helper()
	return NewQuoteFetcher(testTracer, testLog, sources, buf, nil, FetcherOptions{
		Symbol:   "NIFTY 50",
		Timeout:  time.Second,
		TTL:      time.Minute,
		Location: ist,
	})
}

func newTestService(t *testing.T, sources []QuoteSource, snaps SnapshotSource) (*MarketService, *market.State) {
	t.Helper()
	buf := newTestBuffer(t)
	state := market.NewState(buf, testHours())
	svc := NewMarketService(testTracer, testLog, MarketServiceDeps{
		State:     state,
		Fetcher:   newTestFetcher(t, buf, sources...),
		Analyzer:  preopen.NewAnalyzer(preopen.InfluenceTable{"RELIANCE": {Sector: "Energy", Influence: 10}}, 2.0),
		Snapshots: snaps,
		Symbol:    "NIFTY 50",
	})
	return svc, state
}
