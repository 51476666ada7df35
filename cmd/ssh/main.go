package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"index-pulse/internal/cache"
	"index-pulse/internal/config"
	"index-pulse/internal/service"
	"index-pulse/internal/tui"
	"index-pulse/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	gossh "golang.org/x/crypto/ssh"
)

const dashboardRefresh = 15 * time.Second

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	newLoggerFunc     = logger.New
	initRedisFunc     = cache.InitRedis
	newWishServerFunc = wish.NewServer
	startSSHFunc      = func(srv *ssh.Server) error { return srv.ListenAndServe() }
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	if err := run(); err != nil {
		zlog.Fatal().Err(err).Msg("index-pulse ssh dashboard failed")
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

	// The dashboard has no scheduler of its own; it reads what the server mirrors.
	rdb, err := initRedisFunc(ctx, cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}
	if rdb == nil {
		return errors.New("REDIS_URL is required for the ssh dashboard")
	}
	defer rdb.Close()
	views := service.NewViewMirror(rdb)

	if len(cfg.SSHAllowedFingerprints) == 0 {
		log.Warn().Msg("SSH_ALLOWED_FINGERPRINTS empty, every key will be rejected")
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)
	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(allowlistAuth(cfg.SSHAllowedFingerprints, log)),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				model := tui.NewModel(views, s.User(), hours.Location, dashboardRefresh)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)
				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		return fmt.Errorf("create ssh server: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("ssh dashboard listening")
		if err := startSSHFunc(srv); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
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
		return fmt.Errorf("ssh listen: %w", err)
	case <-stopped:
	}
	log.Info().Msg("shutting down ssh dashboard")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("ssh server shutdown error")
	}

	log.Info().Msg("ssh dashboard exited")
	return nil
}

// allowlistAuth accepts keys whose SHA256 fingerprint is listed. The
// "SHA256:" prefix is optional in the configured values.
func allowlistAuth(fingerprints []string, log zerolog.Logger) ssh.PublicKeyHandler {
	allowed := make(map[string]struct{}, len(fingerprints))
	for _, fp := range fingerprints {
		fp = strings.TrimSpace(fp)
		if fp == "" {
			continue
		}
		if !strings.HasPrefix(fp, "SHA256:") {
			fp = "SHA256:" + fp
		}
		allowed[fp] = struct{}{}
	}
	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		fingerprint := gossh.FingerprintSHA256(key)
		if _, ok := allowed[fingerprint]; !ok {
			log.Warn().Str("user", ctx.User()).Str("fingerprint", fingerprint).Msg("ssh auth denied")
			return false
		}
		log.Info().Str("user", ctx.User()).Str("fingerprint", fingerprint).Msg("ssh auth accepted")
		return true
	}
}
