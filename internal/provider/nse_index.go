package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"index-pulse/internal/domain"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultNSEBaseURL = "https://www.nseindia.com"
	SourceNSE         = "nse"
)

var nseHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         "https://www.nseindia.com/market-data/live-equity-market",
}

// NSEIndexSource reads index quotes from the NSE allIndices feed.
type NSEIndexSource struct {
	getter  JSONGetter
	baseURL string
	tracer  trace.Tracer
	now     func() time.Time
}

func NewNSEIndexSource(tracer trace.Tracer, getter JSONGetter, baseURL string) *NSEIndexSource {
	if baseURL == "" {
		baseURL = DefaultNSEBaseURL
	}
	return &NSEIndexSource{
		getter:  getter,
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		now:     time.Now,
	}
}

func (s *NSEIndexSource) Name() string { return SourceNSE }

func (s *NSEIndexSource) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "nse.fetch-quote")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	body, err := s.getter.GetJSON(ctx, s.baseURL+"/api/allIndices", nseHeaders)
	if err != nil {
		return nil, fmt.Errorf("nse all indices: %w", err)
	}

	var row gjson.Result
	for _, r := range gjson.GetBytes(body, "data").Array() {
		if strings.EqualFold(r.Get("index").String(), symbol) || strings.EqualFold(r.Get("indexSymbol").String(), symbol) {
			row = r
			break
		}
	}
	if !row.Exists() {
		return nil, fmt.Errorf("%w: nse: index %q not in response", domain.ErrMalformedResponse, symbol)
	}

	price, ok := number(row.Get("last"))
	if !ok || price <= 0 {
		return nil, fmt.Errorf("%w: nse: missing last price", domain.ErrMalformedResponse)
	}

	q := &domain.Quote{
		Symbol:     symbol,
		Price:      price,
		Source:     SourceNSE,
		CapturedAt: s.now(),
		Status:     domain.QuoteValid,
	}
	q.Open, _ = number(row.Get("open"))
	q.High, _ = number(row.Get("high"))
	q.Low, _ = number(row.Get("low"))
	q.PrevClose, _ = number(row.Get("previousClose"))
	change, changeOK := number(row.Get("variation"))
	pct, pctOK := number(row.Get("percentChange"))
	resolveChange(q, change, changeOK, pct, pctOK)
	return q, nil
}
