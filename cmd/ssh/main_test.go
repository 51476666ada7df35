package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"index-pulse/internal/config"

	"github.com/charmbracelet/ssh"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gossh "golang.org/x/crypto/ssh"
)

func TestRunBootstrapAndShutdown(t *testing.T) {
	restore := stubSSHDeps(t)
	defer restore()

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
}

func TestRunRequiresRedis(t *testing.T) {
	restore := stubSSHDeps(t)
	defer restore()
	initRedisFunc = func(context.Context, string, zerolog.Logger) (*redis.Client, error) { return nil, nil }

	err := run()
	if err == nil || !strings.Contains(err.Error(), "REDIS_URL") {
		t.Fatalf("expected redis requirement error, got %v", err)
	}
}

type fakeSSHContext struct {
	ssh.Context
}

func (fakeSSHContext) User() string { return "analyst" }

func TestAllowlistAuth(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("wrap key: %v", err)
	}
	fp := gossh.FingerprintSHA256(key)

	other, _, _ := ed25519.GenerateKey(rand.Reader)
	otherKey, _ := gossh.NewPublicKey(other)

	cases := []struct {
		name    string
		allowed []string
		key     gossh.PublicKey
		want    bool
	}{
		{"exact fingerprint", []string{fp}, key, true},
		{"prefix optional", []string{strings.TrimPrefix(fp, "SHA256:")}, key, true},
		{"unknown key", []string{fp}, otherKey, false},
		{"empty allowlist", nil, key, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := allowlistAuth(tc.allowed, zerolog.Nop())
			if got := auth(fakeSSHContext{}, tc.key); got != tc.want {
				t.Fatalf("auth = %v, want %v", got, tc.want)
			}
		})
	}
}

func stubSSHDeps(t *testing.T) func() {
	t.Helper()
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitRedis := initRedisFunc
	origStartSSH := startSSHFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc

	keyPath := filepath.Join(t.TempDir(), "host_ed25519")
	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() (*config.Config, error) {
		return &config.Config{
			RedisURL:       "localhost:6379",
			SSHPort:        2222,
			SSHHostKeyPath: keyPath,
			MarketOpen:     "09:15",
			MarketClose:    "15:30",
			MarketDays:     []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			MarketTimezone: "Asia/Kolkata",
			PreOpenStart:   "09:00",
			PreOpenEnd:     "09:15",
			LogLevel:       "error",
			LogFormat:      "json",
		}, nil
	}
	initRedisFunc = func(context.Context, string, zerolog.Logger) (*redis.Client, error) {
		return redis.NewClient(&redis.Options{Addr: "localhost:0"}), nil
	}
	startSSHFunc = func(*ssh.Server) error { return ssh.ErrServerClosed }
	setupSignalNotify = func(chan<- os.Signal, ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initRedisFunc = origInitRedis
		startSSHFunc = origStartSSH
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
	}
}
