package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"index-pulse/internal/bot"
	"index-pulse/internal/cache"
	"index-pulse/internal/config"
	"index-pulse/internal/db"
	"index-pulse/internal/handler"
	"index-pulse/internal/history"
	"index-pulse/internal/job"
	"index-pulse/internal/market"
	"index-pulse/internal/mcpserver"
	"index-pulse/internal/metrics"
	"index-pulse/internal/preopen"
	"index-pulse/internal/provider"
	"index-pulse/internal/repository"
	"index-pulse/internal/service"
	"index-pulse/pkg/logger"
	"index-pulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "index-pulse/docs"
)

var version = "dev"

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	newLoggerFunc    = logger.New
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newQuoteSources  = func(tracer trace.Tracer, cfg *config.Config) ([]service.QuoteSource, service.SnapshotSource) {
		client := provider.NewJSONClient(tracer, cfg.ProviderTimeout)
		return []service.QuoteSource{
				provider.NewNSEIndexSource(tracer, client, cfg.NSEBaseURL),
				provider.NewYahooChartSource(tracer, client, cfg.YahooBaseURL),
			},
			provider.NewNSEPreOpenSource(tracer, client, cfg.NSEBaseURL, cfg.PreOpenKey)
	}
	startJobsFunc = func(ctx context.Context, log zerolog.Logger, runners ...job.Runner) {
		go func() {
			if err := job.RunAll(ctx, runners...); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("background jobs stopped")
			}
		}()
	}
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           index-pulse API
// @version         1.0
// @description     NIFTY 50 quotes, technical indicators, sentiment and pre-open gap prediction.

// @host      localhost:8080
// @BasePath  /
func main() {
	if err := run(); err != nil {
		zlog.Fatal().Err(err).Msg("index-pulse server failed")
	}
}

func run() error {
	_ = loadEnvFunc()

	cfg, err := loadConfigFunc()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := newLoggerFunc(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	hours, err := cfg.Hours()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:  cfg.TracingEnabled,
		Endpoint: cfg.OTLPEndpoint,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	// Postgres and Redis are optional; the service runs from memory without them.
	pool, err := initPostgresFunc(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Warn().Err(err).Msg("postgres unavailable, archive disabled")
		pool = nil
	}
	if pool != nil {
		defer pool.Close()
	}
	rdb, err := initRedisFunc(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, view mirror disabled")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	buf, err := history.New(cfg.HistoryCapacity)
	if err != nil {
		return fmt.Errorf("price history: %w", err)
	}
	state := market.NewState(buf, hours)

	sources, snapshots := newQuoteSources(tracer, cfg)
	fetcher := service.NewQuoteFetcher(tracer, log, sources, buf, recorder, service.FetcherOptions{
		Symbol:   cfg.IndexSymbol,
		Timeout:  cfg.ProviderTimeout,
		TTL:      cfg.QuoteCacheTTL,
		Location: hours.Location,
	})

	table, err := loadInfluenceTable(cfg.InfluenceTablePath)
	if err != nil {
		return err
	}

	deps := service.MarketServiceDeps{
		State:     state,
		Fetcher:   fetcher,
		Analyzer:  preopen.NewAnalyzer(table, cfg.MoverThreshold),
		Snapshots: snapshots,
		Metrics:   recorder,
		Symbol:    cfg.IndexSymbol,
	}
	if pool != nil {
		quotes := repository.NewQuoteRepository(pool, tracer)
		scans := repository.NewScanRepository(pool, tracer)
		if err := quotes.RunMigrations(ctx); err != nil {
			return fmt.Errorf("quote migrations: %w", err)
		}
		if err := scans.RunMigrations(ctx); err != nil {
			return fmt.Errorf("scan migrations: %w", err)
		}
		deps.Quotes = quotes
		deps.Scans = scans
	}
	marketSvc := service.NewMarketService(tracer, log, deps)

	hub := handler.NewHub(log)
	marketSvc.AddPublisher(hub)
	if rdb != nil {
		marketSvc.AddPublisher(service.NewViewMirror(rdb))
	}

	poller := job.NewQuotePoller(tracer, log, marketSvc, state, job.PollerOptions{
		MarketInterval: cfg.PollIntervalMarket,
		ClosedInterval: cfg.PollIntervalClosed,
		RecomputeEvery: cfg.RecomputeEvery,
	})
	preOpen := job.NewPreOpenJob(tracer, log, marketSvc, hours, cfg.PreOpenEvery)
	telegram := bot.New(log, marketSvc, bot.Options{
		Token:         cfg.TelegramBotToken,
		WebhookURL:    cfg.TelegramWebhookURL,
		WebhookListen: cfg.TelegramWebhookListen,
		Location:      hours.Location,
	})
	startJobsFunc(ctx, log, poller, preOpen, telegram)

	h := handler.New(tracer, marketSvc, hub, cfg.APIKey, reg)

	r := newRouterFunc()
	r.Use(gin.Recovery(), handler.RequestLogger(log), otelgin.Middleware(tracing.ServiceName))
	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.Any("/mcp", gin.WrapH(mcpserver.Handler(mcpserver.New(tracer, marketSvc, version))))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	stopped := make(chan struct{})
	go func() {
		waitForSignalFunc(quit)
		close(stopped)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-stopped:
	}
	log.Info().Msg("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exiting")
	return nil
}

func loadInfluenceTable(path string) (preopen.InfluenceTable, error) {
	if path == "" {
		return preopen.DefaultInfluenceTable()
	}
	table, err := preopen.LoadInfluenceTable(path)
	if err != nil {
		return nil, fmt.Errorf("influence table: %w", err)
	}
	return table, nil
}
