package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"index-pulse/internal/config"
	"index-pulse/internal/domain"
	"index-pulse/internal/job"
	"index-pulse/internal/service"
	"index-pulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestRunBootstrapAndShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps(t)
	defer restore()

	var jobs int
	startJobsFunc = func(_ context.Context, _ zerolog.Logger, runners ...job.Runner) { jobs = len(runners) }

	served := make(chan http.Handler, 1)
	startHTTPServerFunc = func(srv *http.Server) error {
		served <- srv.Handler
		return http.ErrServerClosed
	}

	done := make(chan error, 1)
	go func() { done <- run() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not exit")
	}
	if jobs != 3 {
		t.Fatalf("expected poller, pre-open job and bot to start, got %d runners", jobs)
	}
	select {
	case h := <-served:
		if h == nil {
			t.Fatal("http server started without a handler")
		}
	case <-time.After(time.Second):
		t.Fatal("http server was never started")
	}
}

func TestRunFailsOnConfigError(t *testing.T) {
	restore := stubServerDeps(t)
	defer restore()
	loadConfigFunc = func() (*config.Config, error) { return nil, errors.New("bad env") }

	err := run()
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestRunReportsListenFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps(t)
	defer restore()

	release := make(chan struct{})
	defer close(release)
	waitForSignalFunc = func(<-chan os.Signal) { <-release }
	startHTTPServerFunc = func(*http.Server) error { return errors.New("address in use") }

	err := run()
	if err == nil || !strings.Contains(err.Error(), "address in use") {
		t.Fatalf("expected listen error, got %v", err)
	}
}

func TestLoadInfluenceTable(t *testing.T) {
	table, err := loadInfluenceTable("")
	if err != nil {
		t.Fatalf("default table: %v", err)
	}
	if len(table) == 0 {
		t.Fatal("default table is empty")
	}

	if _, err := loadInfluenceTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func testConfig() *config.Config {
	return &config.Config{
		HTTPPort:           8080,
		IndexSymbol:        "NIFTY 50",
		PreOpenKey:         "NIFTY",
		NSEBaseURL:         "http://nse.invalid",
		YahooBaseURL:       "http://yahoo.invalid",
		ProviderTimeout:    time.Second,
		QuoteCacheTTL:      time.Minute,
		HistoryCapacity:    100,
		PollIntervalMarket: time.Minute,
		PollIntervalClosed: 5 * time.Minute,
		RecomputeEvery:     3,
		MarketOpen:         "09:15",
		MarketClose:        "15:30",
		MarketDays:         []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
		MarketTimezone:     "Asia/Kolkata",
		PreOpenStart:       "09:00",
		PreOpenEnd:         "09:15",
		PreOpenEvery:       5 * time.Minute,
		MoverThreshold:     2,
		LogLevel:           "error",
		LogFormat:          "json",
	}
}

func stubServerDeps(t *testing.T) func() {
	t.Helper()
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origSources := newQuoteSources
	origStartJobs := startJobsFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() (*config.Config, error) { return testConfig(), nil }
	initPostgresFunc = func(context.Context, string, zerolog.Logger) (*pgxpool.Pool, error) { return nil, nil }
	initRedisFunc = func(context.Context, string, zerolog.Logger) (*redis.Client, error) {
		return nil, errors.New("connection refused")
	}
	initTracerFunc = func(context.Context, tracing.Options) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newQuoteSources = func(trace.Tracer, *config.Config) ([]service.QuoteSource, service.SnapshotSource) {
		return []service.QuoteSource{stubSource{}}, stubSnapshots{}
	}
	startJobsFunc = func(context.Context, zerolog.Logger, ...job.Runner) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(chan<- os.Signal, ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newQuoteSources = origSources
		startJobsFunc = origStartJobs
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}

type stubSource struct{}

func (stubSource) Name() string { return "stub" }

func (stubSource) FetchQuote(context.Context, string) (*domain.Quote, error) {
	return &domain.Quote{Symbol: "NIFTY 50", Price: 22000, Status: domain.QuoteValid}, nil
}

type stubSnapshots struct{}

func (stubSnapshots) FetchSnapshot(context.Context) ([]domain.PreOpenEntry, error) {
	return nil, nil
}
