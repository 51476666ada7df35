package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"index-pulse/internal/domain"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"
	SourceYahoo         = "yahoo"
)

// yahooTickers maps logical index names to Yahoo chart tickers.
var yahooTickers = map[string]string{
	"NIFTY 50":   "^NSEI",
	"NIFTY BANK": "^NSEBANK",
	"SENSEX":     "^BSESN",
}

// YahooChartSource reads the latest bar of the Yahoo v8 chart endpoint.
type YahooChartSource struct {
	getter  JSONGetter
	baseURL string
	tracer  trace.Tracer
	now     func() time.Time
}

func NewYahooChartSource(tracer trace.Tracer, getter JSONGetter, baseURL string) *YahooChartSource {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooChartSource{
		getter:  getter,
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		now:     time.Now,
	}
}

func (s *YahooChartSource) Name() string { return SourceYahoo }

func (s *YahooChartSource) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "yahoo.fetch-quote")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	ticker, ok := yahooTickers[strings.ToUpper(symbol)]
	if !ok {
		ticker = symbol
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1m&range=1d", s.baseURL, url.PathEscape(ticker))

	body, err := s.getter.GetJSON(ctx, endpoint, map[string]string{"User-Agent": nseHeaders["User-Agent"]})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart: %w", err)
	}

	if e := gjson.GetBytes(body, "chart.error.description"); e.Exists() && e.String() != "" {
		return nil, fmt.Errorf("%w: yahoo: %s", domain.ErrMalformedResponse, e.String())
	}
	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("%w: yahoo: empty chart result", domain.ErrMalformedResponse)
	}
	meta := result.Get("meta")

	price, ok := number(meta.Get("regularMarketPrice"))
	if !ok || price <= 0 {
		return nil, fmt.Errorf("%w: yahoo: missing regularMarketPrice", domain.ErrMalformedResponse)
	}

	q := &domain.Quote{
		Symbol:     symbol,
		Price:      price,
		Source:     SourceYahoo,
		CapturedAt: s.now(),
		Status:     domain.QuoteValid,
	}
	if prev, ok := number(meta.Get("chartPreviousClose")); ok && prev > 0 {
		q.PrevClose = prev
	} else if prev, ok := number(meta.Get("previousClose")); ok {
		q.PrevClose = prev
	}
	resolveChange(q, 0, false, 0, false)
	q.High, _ = number(meta.Get("regularMarketDayHigh"))
	q.Low, _ = number(meta.Get("regularMarketDayLow"))
	q.Volume, _ = number(meta.Get("regularMarketVolume"))
	for _, o := range result.Get("indicators.quote.0.open").Array() {
		if v, ok := number(o); ok && v > 0 {
			q.Open = v
			break
		}
	}
	return q, nil
}
