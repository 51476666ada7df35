package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"index-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func testClient(fn roundTripFunc) *JSONClient {
	c := NewJSONClient(testTracer, time.Second)
	c.client = &http.Client{Transport: fn}
	c.limiter = NewRateLimiter(100, time.Millisecond)
	return c
}

type fakeGetter struct {
	body    string
	err     error
	lastURL string
}

func (f *fakeGetter) GetJSON(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	f.lastURL = url
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func TestJSONClientSendsHeaders(t *testing.T) {
	c := testClient(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Referer") != "https://example" {
			t.Fatalf("missing custom header: %v", req.Header)
		}
		if req.Header.Get("Accept") != "application/json" {
			t.Fatalf("missing accept header: %v", req.Header)
		}
		return jsonResponse(http.StatusOK, `{"ok":true}`), nil
	})

	body, err := c.GetJSON(context.Background(), "http://upstream/x", map[string]string{"Referer": "https://example"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestJSONClientClassifiesFailures(t *testing.T) {
	cases := []struct {
		name string
		fn   roundTripFunc
		want error
	}{
		{"network", func(*http.Request) (*http.Response, error) { return nil, errors.New("dial tcp: refused") }, domain.ErrProviderUnavailable},
		{"status", func(*http.Request) (*http.Response, error) { return jsonResponse(http.StatusForbidden, "denied"), nil }, domain.ErrProviderUnavailable},
		{"malformed", func(*http.Request) (*http.Response, error) { return jsonResponse(http.StatusOK, "<html>"), nil }, domain.ErrMalformedResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := testClient(tc.fn).GetJSON(context.Background(), "http://upstream/x", nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

const allIndicesBody = `{"data":[
  {"index":"NIFTY BANK","last":48000.1},
  {"index":"NIFTY 50","indexSymbol":"NIFTY 50","last":"22,145.60","variation":"110.25","percentChange":0.5,
   "open":22050.0,"high":22160.5,"low":22010.0,"previousClose":22035.35}
]}`

func TestNSEIndexSourceParsesQuote(t *testing.T) {
	getter := &fakeGetter{body: allIndicesBody}
	src := NewNSEIndexSource(testTracer, getter, "http://nse/")
	fixed := time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return fixed }

	q, err := src.FetchQuote(context.Background(), "NIFTY 50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if getter.lastURL != "http://nse/api/allIndices" {
		t.Fatalf("unexpected url %s", getter.lastURL)
	}
	if q.Price != 22145.60 || q.Change != 110.25 || q.High != 22160.5 || q.PrevClose != 22035.35 {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.Source != SourceNSE || !q.CapturedAt.Equal(fixed) {
		t.Fatalf("unexpected metadata: %+v", q)
	}
}

func TestNSEIndexSourceMissingIndex(t *testing.T) {
	src := NewNSEIndexSource(testTracer, &fakeGetter{body: `{"data":[]}`}, "")
	_, err := src.FetchQuote(context.Background(), "NIFTY 50")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}

func TestNSEIndexSourceResolvesChange(t *testing.T) {
	cases := []struct {
		name           string
		row            string
		wantChange     float64
		wantPct        float64
		wantUnresolved bool
	}{
		{"upstream values", `"variation":-12.5,"percentChange":"-0.06","previousClose":22035.35`, -12.5, -0.06, false},
		{"derived from previous close", `"previousClose":22035.35`, 110.25, 0.5, false},
		{"change derived only", `"variation":"-","previousClose":22035.35,"percentChange":0.5`, 110.25, 0.5, false},
		{"unresolved", `"open":22050.0`, 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := `{"data":[{"index":"NIFTY 50","last":22145.60,` + tc.row + `}]}`
			q, err := NewNSEIndexSource(testTracer, &fakeGetter{body: body}, "").FetchQuote(context.Background(), "NIFTY 50")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Change != tc.wantChange || q.ChangePct != tc.wantPct || q.ChangeUnresolved != tc.wantUnresolved {
				t.Fatalf("change=%v pct=%v unresolved=%v", q.Change, q.ChangePct, q.ChangeUnresolved)
			}
		})
	}
}

func TestYahooChartSourceParsesQuote(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"regularMarketPrice":22100.5,"chartPreviousClose":22000,
	  "regularMarketDayHigh":22150,"regularMarketDayLow":21980,"regularMarketVolume":0},
	  "indicators":{"quote":[{"open":[null,22010.25,22020]}]}}],"error":null}}`
	getter := &fakeGetter{body: body}
	src := NewYahooChartSource(testTracer, getter, "http://yahoo")

	q, err := src.FetchQuote(context.Background(), "NIFTY 50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(getter.lastURL, "/v8/finance/chart/%5ENSEI") {
		t.Fatalf("unexpected url %s", getter.lastURL)
	}
	if q.Open != 22010.25 || q.High != 22150 || q.Low != 21980 {
		t.Fatalf("unexpected ohlc: %+v", q)
	}
	if q.Change != 100.5 || q.ChangePct != 0.46 {
		t.Fatalf("unexpected change: %v %v", q.Change, q.ChangePct)
	}
}

func TestYahooChartSourceRejectsMissingPrice(t *testing.T) {
	src := NewYahooChartSource(testTracer, &fakeGetter{body: `{"chart":{"result":[{"meta":{}}]}}`}, "")
	if _, err := src.FetchQuote(context.Background(), "NIFTY 50"); !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}

func TestYahooChartSourceUnresolvedChange(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"regularMarketPrice":22100.5}}]}}`
	q, err := NewYahooChartSource(testTracer, &fakeGetter{body: body}, "").FetchQuote(context.Background(), "NIFTY 50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.ChangeUnresolved || q.Change != 0 || q.ChangePct != 0 {
		t.Fatalf("expected unresolved change, got %+v", q)
	}
}

func TestNSEPreOpenSourceParsesSnapshot(t *testing.T) {
	body := `{"data":[
	  {"metadata":{"symbol":"HDFCBANK","lastPrice":1705.5,"pChange":2.4,"previousClose":1665.5}},
	  {"metadata":{"symbol":"INFY","lastPrice":"1,502.10","pChange":"-3.10"}},
	  {"metadata":{}}
	]}`
	getter := &fakeGetter{body: body}
	src := NewNSEPreOpenSource(testTracer, getter, "http://nse", "")

	entries, err := src.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if getter.lastURL != "http://nse/api/market-data-pre-open?key=NIFTY" {
		t.Fatalf("unexpected url %s", getter.lastURL)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	if entries[1].Price != 1502.10 || entries[1].ChangePct != -3.10 {
		t.Fatalf("unexpected comma-formatted parse: %+v", entries[1])
	}
}

func TestNSEPreOpenSourcePropagatesTransportError(t *testing.T) {
	src := NewNSEPreOpenSource(testTracer, &fakeGetter{err: domain.ErrProviderUnavailable}, "", "")
	if _, err := src.FetchSnapshot(context.Background()); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got %v", err)
	}
}
