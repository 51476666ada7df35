package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"index-pulse/internal/domain"
	"index-pulse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type fakeMarket struct {
	view      domain.MarketView
	freshErr  error
	preopen   domain.PreOpenView
	scanErr   error
	scans     int
	status    domain.ServiceStatus
	quotes    []domain.Quote
	quotesErr error
	lastLimit int
}

func (f *fakeMarket) MarketView(ctx context.Context) domain.MarketView { return f.view }

func (f *fakeMarket) FreshMarketView(ctx context.Context) (domain.MarketView, error) {
	return f.view, f.freshErr
}

func (f *fakeMarket) PreOpenView(ctx context.Context) domain.PreOpenView { return f.preopen }

func (f *fakeMarket) TriggerPreOpenScan(ctx context.Context) (domain.PreOpenView, error) {
	f.scans++
	return f.preopen, f.scanErr
}

func (f *fakeMarket) Status(ctx context.Context) domain.ServiceStatus { return f.status }

func (f *fakeMarket) ArchivedQuotes(ctx context.Context, limit int) ([]domain.Quote, error) {
	f.lastLimit = limit
	return f.quotes, f.quotesErr
}

func newTestRouter(m MarketAPI, hub *Hub, apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(testTracer, m, hub, apiKey, prometheus.NewRegistry()).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	m := &fakeMarket{status: domain.ServiceStatus{MarketStatus: domain.MarketOpen, CacheSize: 1, HistorySize: 42}}
	w := do(newTestRouter(m, nil, ""), "GET", "/health", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" || body["market_status"] != "open" || body["price_history_size"] != float64(42) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestReady(t *testing.T) {
	m := &fakeMarket{}
	r := newTestRouter(m, nil, "")

	if w := do(r, "GET", "/ready", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before first quote, got %d", w.Code)
	}
	m.view.Quote = &domain.Quote{Price: 22000}
	if w := do(r, "GET", "/ready", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetMarket(t *testing.T) {
	m := &fakeMarket{view: domain.MarketView{
		Quote:      &domain.Quote{Symbol: "NIFTY 50", Price: 22000, EstimatedOHLC: true},
		Indicators: domain.InsufficientIndicators(5),
		Status:     domain.MarketOpen,
	}}
	w := do(newTestRouter(m, nil, ""), "GET", "/api/market", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var view domain.MarketView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Quote == nil || !view.Quote.EstimatedOHLC || view.Indicators.Status != domain.IndicatorsInsufficient {
		t.Fatalf("unexpected view: %s", w.Body.String())
	}
	if view.Sentiment != nil {
		t.Fatal("sentiment must be absent while indicators are insufficient")
	}
}

func TestGetFreshMarketError(t *testing.T) {
	m := &fakeMarket{freshErr: domain.ErrNoDataAvailable}
	w := do(newTestRouter(m, nil, ""), "GET", "/api/market/fresh", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "cached") {
		t.Fatalf("expected cached view in body: %s", w.Body.String())
	}
}

func TestTriggerScanRequiresKey(t *testing.T) {
	m := &fakeMarket{}
	r := newTestRouter(m, nil, "secret")

	if w := do(r, "POST", "/api/preopen/scan", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := do(r, "POST", "/api/preopen/scan", map[string]string{"X-API-Key": "wrong"}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if w := do(r, "POST", "/api/preopen/scan", map[string]string{"X-API-Key": "secret"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if m.scans != 1 {
		t.Fatalf("expected one scan, got %d", m.scans)
	}
}

func TestTriggerScanNoData(t *testing.T) {
	m := &fakeMarket{scanErr: domain.ErrNoDataAvailable}
	w := do(newTestRouter(m, nil, ""), "POST", "/api/preopen/scan", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), string(domain.KindNoDataAvailable)) {
		t.Fatalf("expected failure kind in body: %s", w.Body.String())
	}
}

func TestGetPreOpenAndStatus(t *testing.T) {
	m := &fakeMarket{
		preopen: domain.PreOpenView{Gainers: []domain.Mover{{Symbol: "RELIANCE", ChangePct: 3}}},
		status:  domain.ServiceStatus{HistoryCapacity: 100},
	}
	r := newTestRouter(m, nil, "")

	w := do(r, "GET", "/api/preopen", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "RELIANCE") {
		t.Fatalf("unexpected preopen response %d: %s", w.Code, w.Body.String())
	}
	w = do(r, "GET", "/api/status", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"price_history_capacity":100`) {
		t.Fatalf("unexpected status response %d: %s", w.Code, w.Body.String())
	}
}

func TestGetArchivedQuotes(t *testing.T) {
	m := &fakeMarket{quotes: []domain.Quote{{Price: 1}}}
	r := newTestRouter(m, nil, "")

	w := do(r, "GET", "/api/archive/quotes?limit=5000", nil)
	if w.Code != http.StatusOK || m.lastLimit != 100 {
		t.Fatalf("expected clamped default limit, got %d (code %d)", m.lastLimit, w.Code)
	}
	do(r, "GET", "/api/archive/quotes?limit=7", nil)
	if m.lastLimit != 7 {
		t.Fatalf("expected limit 7, got %d", m.lastLimit)
	}

	m.quotesErr = service.ErrArchiveDisabled
	if w := do(r, "GET", "/api/archive/quotes", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when archive disabled, got %d", w.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	w := do(newTestRouter(&fakeMarket{}, nil, ""), "GET", "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestStreamPushesViews(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	m := &fakeMarket{view: domain.MarketView{Status: domain.MarketClosed}}
	srv := httptest.NewServer(newTestRouter(m, hub, ""))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first StreamMessage
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial frame: %v", err)
	}
	if first.Type != "market" {
		t.Fatalf("expected initial market frame, got %s", first.Type)
	}

	deadline := time.Now().Add(time.Second)
	for hub.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	_ = hub.PublishPreOpen(context.Background(), domain.PreOpenView{})

	var next StreamMessage
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read published frame: %v", err)
	}
	if next.Type != "preopen" {
		t.Fatalf("expected preopen frame, got %s", next.Type)
	}
}
