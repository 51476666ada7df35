package job

import (
	"context"
	"time"

	"index-pulse/internal/domain"
	"index-pulse/internal/market"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

type PreOpenScanner interface {
	ScanPreOpen(ctx context.Context) (domain.PreOpenView, error)
}

// PreOpenJob ticks every sub-interval and scans only inside the daily
// pre-open window. lastRun keeps a late tick from rescanning too soon.
type PreOpenJob struct {
	tracer  trace.Tracer
	log     zerolog.Logger
	scanner PreOpenScanner
	hours   market.Hours
	every   time.Duration
	lastRun atomic.Int64
	now     func() time.Time
}

func NewPreOpenJob(tracer trace.Tracer, log zerolog.Logger, scanner PreOpenScanner, hours market.Hours, every time.Duration) *PreOpenJob {
	if every <= 0 {
		every = 5 * time.Minute
	}
	return &PreOpenJob{
		tracer:  tracer,
		log:     log.With().Str("component", "preopen-job").Logger(),
		scanner: scanner,
		hours:   hours,
		every:   every,
		now:     time.Now,
	}
}

// Start schedules the job and blocks until ctx is cancelled.
func (j *PreOpenJob) Start(ctx context.Context) error {
	s := gocron.NewScheduler(j.hours.Location)
	if _, err := s.Every(j.every).SingletonMode().Do(func() { j.runScheduled(ctx) }); err != nil {
		return err
	}
	s.StartAsync()
	j.log.Info().Dur("every", j.every).Msg("pre-open job scheduled")

	<-ctx.Done()
	s.Stop()
	j.log.Info().Msg("pre-open job stopped")
	return nil
}

func (j *PreOpenJob) runScheduled(ctx context.Context) {
	now := j.now()
	if !j.hours.InPreOpen(now) {
		return
	}
	if ns := j.lastRun.Load(); ns != 0 && now.Sub(time.Unix(0, ns)) < j.every-j.every/10 {
		j.log.Debug().Time("last_run", time.Unix(0, ns)).Msg("pre-open scan ran recently, skipping")
		return
	}
	j.scan(ctx, now)
}

// scan records the attempt before running it, so a failed scan also waits
// for the next tick instead of retrying immediately.
func (j *PreOpenJob) scan(ctx context.Context, now time.Time) {
	ctx, span := j.tracer.Start(ctx, "preopen-job.scan")
	defer span.End()

	j.lastRun.Store(now.UnixNano())
	if _, err := j.scanner.ScanPreOpen(ctx); err != nil {
		j.log.Warn().Err(err).Str("kind", string(domain.KindOf(err))).Msg("pre-open scan failed")
	}
}
