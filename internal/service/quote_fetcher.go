package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"index-pulse/internal/cache"
	"index-pulse/internal/domain"
	"index-pulse/internal/history"
	"index-pulse/internal/provider"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// QuoteSource is one upstream strategy in the fallback list.
type QuoteSource interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error)
}

// Synthesized-OHLC multipliers, applied only when an upstream gives a price
// without open/high/low.
const (
	estOpenFactor = 1.001
	estHighFactor = 1.002
	estLowFactor  = 0.998
)

// volumeBucket is a fixed time-of-day volume estimate in exchange local time.
type volumeBucket struct {
	from, to int
	volume   float64
}

var volumeBuckets = []volumeBucket{
	{9*60 + 15, 10*60 + 30, 250000},
	{10*60 + 30, 13*60 + 30, 150000},
	{13*60 + 30, 15*60 + 30, 300000},
}

const offHoursVolume = 100000

// QuoteFetcher walks its sources in priority order and returns the first
// valid quote. Successful results are cached for ttl and appended to the
// history buffer, which nothing else writes to.
type QuoteFetcher struct {
	tracer   trace.Tracer
	log      zerolog.Logger
	sources  []QuoteSource
	symbol   string
	timeout  time.Duration
	ttl      time.Duration
	cache    *cache.TTLCache[domain.Quote]
	history  *history.Buffer
	metrics  Metrics
	location *time.Location
	now      func() time.Time
}

type FetcherOptions struct {
	Symbol   string
	Timeout  time.Duration
	TTL      time.Duration
	Location *time.Location
}

func NewQuoteFetcher(
	tracer trace.Tracer,
	log zerolog.Logger,
	sources []QuoteSource,
	buf *history.Buffer,
	metrics Metrics,
	opts FetcherOptions,
) *QuoteFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = provider.DefaultTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &QuoteFetcher{
		tracer:   tracer,
		log:      log.With().Str("component", "quote-fetcher").Logger(),
		sources:  sources,
		symbol:   opts.Symbol,
		timeout:  opts.Timeout,
		ttl:      opts.TTL,
		cache:    cache.NewTTLCache[domain.Quote](),
		history:  buf,
		metrics:  metrics,
		location: opts.Location,
		now:      time.Now,
	}
}

// Fetch returns the cached quote when it is younger than the TTL (fresh is
// false), otherwise fetches, appends and caches a new one. When every
// source fails the error wraps domain.ErrNoDataAvailable.
func (f *QuoteFetcher) Fetch(ctx context.Context) (q domain.Quote, fresh bool, err error) {
	ctx, span := f.tracer.Start(ctx, "quote-fetcher.fetch")
	defer span.End()

	if cached, ok := f.cache.Get(f.symbol); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached, false, nil
	}

	q, err = f.fetchFromSources(ctx)
	if err != nil {
		return domain.Quote{}, false, err
	}
	f.history.Append(q)
	f.cache.Set(f.symbol, q, f.ttl)
	f.metrics.RecordQuote(q.Symbol, q.Price, f.history.Len())
	return q, true, nil
}

// FetchFresh bypasses the cache and leaves the history untouched.
func (f *QuoteFetcher) FetchFresh(ctx context.Context) (domain.Quote, error) {
	ctx, span := f.tracer.Start(ctx, "quote-fetcher.fetch-fresh")
	defer span.End()
	return f.fetchFromSources(ctx)
}

// CacheSize reports how many symbols currently hold a cached quote.
func (f *QuoteFetcher) CacheSize() int {
	return f.cache.Len()
}

func (f *QuoteFetcher) fetchFromSources(ctx context.Context) (domain.Quote, error) {
	var errs []error
	for _, src := range f.sources {
		q, err := f.trySource(ctx, src)
		if err != nil {
			f.metrics.RecordFetch(src.Name(), false)
			f.metrics.RecordFailure(string(domain.KindOf(err)))
			f.log.Warn().Err(err).Str("source", src.Name()).Msg("quote source failed, trying next")
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		f.metrics.RecordFetch(src.Name(), true)
		f.log.Debug().Str("source", src.Name()).Float64("price", q.Price).Bool("estimated_ohlc", q.EstimatedOHLC).Bool("estimated_volume", q.EstimatedVolume).Msg("quote fetched")
		return q, nil
	}
	return domain.Quote{}, fmt.Errorf("%w: %s: %w", domain.ErrNoDataAvailable, f.symbol, errors.Join(errs...))
}

func (f *QuoteFetcher) trySource(ctx context.Context, src QuoteSource) (domain.Quote, error) {
	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	raw, err := src.FetchQuote(callCtx, f.symbol)
	if err != nil {
		return domain.Quote{}, err
	}
	if raw == nil || raw.Price <= 0 {
		return domain.Quote{}, fmt.Errorf("%w: non-positive price", domain.ErrMalformedResponse)
	}

	q := *raw
	if q.CapturedAt.IsZero() {
		q.CapturedAt = f.now()
	}
	if q.Source == "" {
		q.Source = src.Name()
	}
	f.fillMissing(&q)
	if err := q.Validate(); err != nil {
		return domain.Quote{}, err
	}
	q.Status = domain.QuoteValid
	return q, nil
}

// fillMissing synthesizes absent OHLC and volume, flagging each part separately.
func (f *QuoteFetcher) fillMissing(q *domain.Quote) {
	if !q.HasOHLC() {
		q.Open = q.Price * estOpenFactor
		q.High = math.Max(q.Price, q.Open) * estHighFactor
		q.Low = math.Min(q.Price, q.Open) * estLowFactor
		q.EstimatedOHLC = true
	}
	if q.Volume <= 0 {
		q.Volume = EstimatedVolume(q.CapturedAt.In(f.location))
		q.EstimatedVolume = true
	}
}

// EstimatedVolume looks up the fixed volume bucket for a local time of day.
func EstimatedVolume(local time.Time) float64 {
	m := local.Hour()*60 + local.Minute()
	for _, b := range volumeBuckets {
		if m >= b.from && m < b.to {
			return b.volume
		}
	}
	return offHoursVolume
}
