package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"index-pulse/internal/domain"
	"index-pulse/internal/market"
	"index-pulse/internal/preopen"
	"index-pulse/internal/provider"
	"index-pulse/internal/sentiment"
	"index-pulse/internal/ta"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrArchiveDisabled is returned by archive reads when no database is configured.
var ErrArchiveDisabled = errors.New("quote archive disabled")

type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) ([]domain.PreOpenEntry, error)
}

type QuoteArchive interface {
	SaveQuote(ctx context.Context, q domain.Quote) error
	RecentQuotes(ctx context.Context, symbol string, limit int) ([]domain.Quote, error)
}

type ScanArchive interface {
	SaveScan(ctx context.Context, a domain.ImpactAnalysis) error
}

// ViewPublisher receives every newly computed view. Publish errors are
// logged and never fail the computation.
type ViewPublisher interface {
	PublishMarket(ctx context.Context, v domain.MarketView) error
	PublishPreOpen(ctx context.Context, v domain.PreOpenView) error
}

// MarketService owns the write paths into market.State and builds the read
// views served by the HTTP API, the bot, MCP and the SSH dashboard.
type MarketService struct {
	tracer     trace.Tracer
	log        zerolog.Logger
	state      *market.State
	fetcher    *QuoteFetcher
	scorer     *sentiment.Scorer
	analyzer   *preopen.Analyzer
	snapshots  SnapshotSource
	quotes     QuoteArchive
	scans      ScanArchive
	publishers []ViewPublisher
	metrics    Metrics
	fresh      *provider.RateLimiter
	symbol     string
	now        func() time.Time
}

type MarketServiceDeps struct {
	State     *market.State
	Fetcher   *QuoteFetcher
	Analyzer  *preopen.Analyzer
	Snapshots SnapshotSource
	Quotes    QuoteArchive
	Scans     ScanArchive
	Metrics   Metrics
	Symbol    string
}

func NewMarketService(tracer trace.Tracer, log zerolog.Logger, deps MarketServiceDeps) *MarketService {
	m := deps.Metrics
	if m == nil {
		m = NopMetrics{}
	}
	return &MarketService{
		tracer:    tracer,
		log:       log.With().Str("component", "market-service").Logger(),
		state:     deps.State,
		fetcher:   deps.Fetcher,
		scorer:    sentiment.NewScorer(),
		analyzer:  deps.Analyzer,
		snapshots: deps.Snapshots,
		quotes:    deps.Quotes,
		scans:     deps.Scans,
		metrics:   m,
		fresh:     provider.NewRateLimiter(1, 15*time.Second),
		symbol:    deps.Symbol,
		now:       time.Now,
	}
}

// AddPublisher registers a view sink. Call before the schedulers start.
func (s *MarketService) AddPublisher(p ViewPublisher) {
	s.publishers = append(s.publishers, p)
}

func (s *MarketService) State() *market.State { return s.state }

// RefreshQuote runs one fetch. fresh is false when the cached quote was reused.
func (s *MarketService) RefreshQuote(ctx context.Context) (fresh bool, err error) {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-quote")
	defer span.End()
	defer s.metrics.ObserveDuration("fetch", s.now())

	q, fresh, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.state.RecordFailure()
		s.metrics.RecordFailure(string(domain.KindOf(err)))
		return false, err
	}
	span.SetAttributes(attribute.Bool("fresh", fresh), attribute.Float64("price", q.Price))
	if !fresh {
		return false, nil
	}

	s.state.SetQuote(q)
	if s.quotes != nil {
		if err := s.quotes.SaveQuote(ctx, q); err != nil {
			s.log.Warn().Err(err).Msg("archive quote failed")
		}
	}
	return true, nil
}

// Recompute derives indicators, sentiment and the entry/exit plan from the
// current history and swaps them into state as one value. A panic inside
// the calculation is returned as domain.ErrAnalysis.
func (s *MarketService) Recompute(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, "market-service.recompute")
	defer span.End()
	defer s.metrics.ObserveDuration("recompute", s.now())

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrAnalysis, r)
			s.metrics.RecordFailure(string(domain.KindAnalysisError))
		}
	}()

	analysis := s.analyze(s.state.History.Snapshot())
	s.state.SetAnalysis(analysis)
	span.SetAttributes(attribute.String("indicator_status", string(analysis.Indicators.Status)))

	if !analysis.Indicators.Ready() {
		return fmt.Errorf("%w: have %d points, need %d",
			domain.ErrInsufficientHistory, analysis.Indicators.Points, domain.MinIndicatorPoints)
	}
	s.publishMarket(ctx, s.MarketView(ctx))
	return nil
}

func (s *MarketService) analyze(history []domain.Quote) market.Analysis {
	ind := ta.Compute(history)
	a := market.Analysis{Indicators: ind}
	if !ind.Ready() || len(history) == 0 {
		return a
	}
	last := history[len(history)-1]
	a.Sentiment = s.scorer.Score(last, ind)
	a.Plan = sentiment.PlanEntryExit(last, ind)
	return a
}

// MarketView assembles the latest quote and analysis without touching upstreams.
func (s *MarketService) MarketView(ctx context.Context) domain.MarketView {
	_, span := s.tracer.Start(ctx, "market-service.market-view")
	defer span.End()

	a := s.state.Analysis()
	return domain.MarketView{
		Quote:      s.state.Quote(),
		Indicators: a.Indicators,
		Sentiment:  a.Sentiment,
		Plan:       a.Plan,
		Status:     s.state.Hours.Status(s.now()),
	}
}

// FreshMarketView performs a one-off fetch and analyses it against a copy of
// the history. The shared history and cache are left as they are. Calls
// faster than the fresh-fetch allowance fall back to MarketView.
func (s *MarketService) FreshMarketView(ctx context.Context) (domain.MarketView, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.fresh-market-view")
	defer span.End()

	if !s.fresh.Allow() {
		span.SetAttributes(attribute.Bool("throttled", true))
		return s.MarketView(ctx), nil
	}
	q, err := s.fetcher.FetchFresh(ctx)
	if err != nil {
		s.metrics.RecordFailure(string(domain.KindOf(err)))
		return s.MarketView(ctx), err
	}
	history := append(s.state.History.Snapshot(), q)
	if capacity := s.state.History.Cap(); len(history) > capacity {
		history = history[len(history)-capacity:]
	}
	a := s.analyze(history)
	return domain.MarketView{
		Quote:      &q,
		Indicators: a.Indicators,
		Sentiment:  a.Sentiment,
		Plan:       a.Plan,
		Status:     s.state.Hours.Status(s.now()),
	}, nil
}

// ScanPreOpen fetches the pre-open snapshot, filters movers, runs the impact
// analysis and publishes the result.
func (s *MarketService) ScanPreOpen(ctx context.Context) (domain.PreOpenView, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.scan-preopen")
	defer span.End()
	defer s.metrics.ObserveDuration("scan", s.now())

	snapshot, err := s.snapshots.FetchSnapshot(ctx)
	if err != nil {
		s.metrics.RecordFailure(string(domain.KindOf(err)))
		return domain.PreOpenView{}, err
	}

	gainers, losers := s.analyzer.Filter(snapshot)
	impact := s.analyzer.AnalyzeImpact(gainers, losers)
	view := domain.PreOpenView{Gainers: gainers, Losers: losers, Analysis: &impact}
	s.state.SetPreOpen(view)
	s.metrics.RecordScan(impact.NetImpact)
	span.SetAttributes(
		attribute.Int("gainers", len(gainers)),
		attribute.Int("losers", len(losers)),
		attribute.Float64("net_impact", impact.NetImpact),
	)

	if s.scans != nil {
		if err := s.scans.SaveScan(ctx, impact); err != nil {
			s.log.Warn().Err(err).Str("scan_id", impact.ScanID).Msg("archive scan failed")
		}
	}
	for _, p := range s.publishers {
		if err := p.PublishPreOpen(ctx, view); err != nil {
			s.log.Warn().Err(err).Msg("publish pre-open view failed")
		}
	}
	s.log.Info().
		Int("gainers", len(gainers)).
		Int("losers", len(losers)).
		Float64("net_impact", impact.NetImpact).
		Str("gap", impact.Gap).
		Msg("pre-open scan complete")
	return view, nil
}

func (s *MarketService) PreOpenView(ctx context.Context) domain.PreOpenView {
	_, span := s.tracer.Start(ctx, "market-service.preopen-view")
	defer span.End()
	return s.state.PreOpen()
}

// TriggerPreOpenScan runs a scan on demand, outside the scheduled window.
func (s *MarketService) TriggerPreOpenScan(ctx context.Context) (domain.PreOpenView, error) {
	return s.ScanPreOpen(ctx)
}

func (s *MarketService) Status(ctx context.Context) domain.ServiceStatus {
	_, span := s.tracer.Start(ctx, "market-service.status")
	defer span.End()

	return domain.ServiceStatus{
		MarketStatus:    s.state.Hours.Status(s.now()),
		HistorySize:     s.state.History.Len(),
		HistoryCapacity: s.state.History.Cap(),
		CacheSize:       s.fetcher.CacheSize(),
		LastFetchAt:     s.state.LastFetch(),
		LastScanAt:      s.state.LastScan(),
		Fetches:         s.state.Fetches(),
		Failures:        s.state.Failures(),
	}
}

// ArchivedQuotes reads persisted quotes, newest first.
func (s *MarketService) ArchivedQuotes(ctx context.Context, limit int) ([]domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.archived-quotes")
	defer span.End()

	if s.quotes == nil {
		return nil, ErrArchiveDisabled
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.quotes.RecentQuotes(ctx, s.symbol, limit)
}

func (s *MarketService) publishMarket(ctx context.Context, v domain.MarketView) {
	for _, p := range s.publishers {
		if err := p.PublishMarket(ctx, v); err != nil {
			s.log.Warn().Err(err).Msg("publish market view failed")
		}
	}
}
