package job

import (
	"context"
	"errors"
	"time"

	"index-pulse/internal/domain"
	"index-pulse/internal/market"

	"github.com/cenkalti/backoff/v5"
	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

type QuoteRefresher interface {
	RefreshQuote(ctx context.Context) (bool, error)
	Recompute(ctx context.Context) error
}

const (
	backoffInitial = 5 * time.Second
	backoffMax     = 5 * time.Minute
)

// QuotePoller is the quote stream: fetch, recompute every Nth success, sleep.
// A single goroutine drives it, so fetches never overlap.
type QuotePoller struct {
	tracer         trace.Tracer
	log            zerolog.Logger
	svc            QuoteRefresher
	state          *market.State
	marketInterval time.Duration
	closedInterval time.Duration
	recomputeEvery int64
	successes      atomic.Int64
	backoff        *backoff.ExponentialBackOff
	now            func() time.Time
}

type PollerOptions struct {
	MarketInterval time.Duration
	ClosedInterval time.Duration
	RecomputeEvery int
}

func NewQuotePoller(tracer trace.Tracer, log zerolog.Logger, svc QuoteRefresher, state *market.State, opts PollerOptions) *QuotePoller {
	if opts.MarketInterval <= 0 {
		opts.MarketInterval = time.Minute
	}
	if opts.ClosedInterval <= 0 {
		opts.ClosedInterval = 5 * time.Minute
	}
	if opts.RecomputeEvery <= 0 {
		opts.RecomputeEvery = 3
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = backoffInitial
	b.MaxInterval = backoffMax

	return &QuotePoller{
		tracer:         tracer,
		log:            log.With().Str("component", "quote-poller").Logger(),
		svc:            svc,
		state:          state,
		marketInterval: opts.MarketInterval,
		closedInterval: opts.ClosedInterval,
		recomputeEvery: int64(opts.RecomputeEvery),
		backoff:        b,
		now:            time.Now,
	}
}

// Start runs the loop until ctx is cancelled. Errors never end it.
func (p *QuotePoller) Start(ctx context.Context) error {
	p.log.Info().
		Dur("market_interval", p.marketInterval).
		Dur("closed_interval", p.closedInterval).
		Int64("recompute_every", p.recomputeEvery).
		Msg("quote poller starting")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("quote poller stopped")
			return nil
		case <-timer.C:
			timer.Reset(p.tick(ctx))
		}
	}
}

// tick runs one cycle and returns how long to sleep before the next.
func (p *QuotePoller) tick(ctx context.Context) time.Duration {
	ctx, span := p.tracer.Start(ctx, "quote-poller.tick")
	defer span.End()

	if _, err := p.svc.RefreshQuote(ctx); err != nil {
		wait := p.backoff.NextBackOff()
		p.log.Warn().Err(err).Str("kind", string(domain.KindOf(err))).Dur("retry_in", wait).Msg("quote fetch failed")
		return wait
	}
	p.backoff.Reset()

	if n := p.successes.Inc(); n%p.recomputeEvery == 0 {
		p.recompute(ctx)
	}
	return p.interval()
}

// recompute is the analysis boundary: failures and panics skip the cycle.
func (p *QuotePoller) recompute(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Interface("panic", r).
				Str("last_quote", spew.Sdump(p.state.Quote())).
				Msg("analysis panicked, cycle skipped")
		}
	}()

	err := p.svc.Recompute(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInsufficientHistory):
		p.log.Debug().Err(err).Msg("indicators waiting for history")
	case errors.Is(err, domain.ErrAnalysis):
		p.log.Error().Err(err).Str("last_quote", spew.Sdump(p.state.Quote())).Msg("analysis failed, cycle skipped")
	default:
		p.log.Error().Err(err).Msg("recompute failed")
	}
}

func (p *QuotePoller) interval() time.Duration {
	if p.state.Hours.InSession(p.now()) {
		return p.marketInterval
	}
	return p.closedInterval
}
