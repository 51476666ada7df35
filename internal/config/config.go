package config

import (
	"fmt"
	"time"

	"index-pulse/internal/market"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramBotToken      string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramWebhookURL    string `envconfig:"TELEGRAM_WEBHOOK_URL" validate:"omitempty,url"`
	TelegramWebhookListen string `envconfig:"TELEGRAM_WEBHOOK_LISTEN" default:":8443"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisURL    string `envconfig:"REDIS_URL"`

	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080" validate:"min=1,max=65535"`
	APIKey   string `envconfig:"API_KEY"`

	IndexSymbol  string `envconfig:"INDEX_SYMBOL" default:"NIFTY 50" validate:"required"`
	PreOpenKey   string `envconfig:"PREOPEN_KEY" default:"NIFTY" validate:"required"`
	NSEBaseURL   string `envconfig:"NSE_BASE_URL" default:"https://www.nseindia.com" validate:"required,url"`
	YahooBaseURL string `envconfig:"YAHOO_BASE_URL" default:"https://query1.finance.yahoo.com" validate:"required,url"`

	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"15s" validate:"min=10s,max=20s"`
	QuoteCacheTTL   time.Duration `envconfig:"QUOTE_CACHE_TTL" default:"60s" validate:"min=1s"`
	HistoryCapacity int           `envconfig:"HISTORY_CAPACITY" default:"100" validate:"min=20"`

	PollIntervalMarket time.Duration `envconfig:"POLL_INTERVAL_MARKET" default:"60s" validate:"min=1s"`
	PollIntervalClosed time.Duration `envconfig:"POLL_INTERVAL_CLOSED" default:"5m" validate:"min=1s"`
	RecomputeEvery     int           `envconfig:"RECOMPUTE_EVERY" default:"3" validate:"min=1"`

	MarketOpen     string   `envconfig:"MARKET_OPEN" default:"09:15"`
	MarketClose    string   `envconfig:"MARKET_CLOSE" default:"15:30"`
	MarketDays     []string `envconfig:"MARKET_DAYS" default:"Mon,Tue,Wed,Thu,Fri"`
	MarketTimezone string   `envconfig:"MARKET_TIMEZONE" default:"Asia/Kolkata"`

	PreOpenStart string        `envconfig:"PREOPEN_START" default:"09:00"`
	PreOpenEnd   string        `envconfig:"PREOPEN_END" default:"09:15"`
	PreOpenEvery time.Duration `envconfig:"PREOPEN_EVERY" default:"5m" validate:"min=1m"`

	MoverThreshold     float64 `envconfig:"MOVER_THRESHOLD" default:"2.0" validate:"gt=0"`
	InfluenceTablePath string  `envconfig:"INFLUENCE_TABLE_PATH"`

	SSHPort                int      `envconfig:"SSH_PORT" default:"2222" validate:"min=1,max=65535"`
	SSHHostKeyPath         string   `envconfig:"SSH_HOST_KEY_PATH" default:".ssh/index_pulse_ed25519"`
	SSHAllowedFingerprints []string `envconfig:"SSH_ALLOWED_FINGERPRINTS"`

	TracingEnabled bool   `envconfig:"TRACING_ENABLED" default:"false"`
	OTLPEndpoint   string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`
}

var validate = validator.New()

// Load reads the environment. Only an unusable endpoint base or an invalid
// value is fatal; optional integrations are disabled by leaving them empty.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if _, err := cfg.Hours(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Hours builds the trading calendar from the configured clock strings.
func (c *Config) Hours() (market.Hours, error) {
	h := market.Hours{Location: market.LoadLocation(c.MarketTimezone)}
	var err error
	if h.Open, err = market.ParseClock(c.MarketOpen); err != nil {
		return h, fmt.Errorf("MARKET_OPEN: %w", err)
	}
	if h.Close, err = market.ParseClock(c.MarketClose); err != nil {
		return h, fmt.Errorf("MARKET_CLOSE: %w", err)
	}
	if h.PreOpenStart, err = market.ParseClock(c.PreOpenStart); err != nil {
		return h, fmt.Errorf("PREOPEN_START: %w", err)
	}
	if h.PreOpenEnd, err = market.ParseClock(c.PreOpenEnd); err != nil {
		return h, fmt.Errorf("PREOPEN_END: %w", err)
	}
	if h.Close <= h.Open || h.PreOpenEnd <= h.PreOpenStart {
		return h, fmt.Errorf("market windows must end after they start")
	}
	if h.Days, err = market.ParseDays(c.MarketDays); err != nil {
		return h, fmt.Errorf("MARKET_DAYS: %w", err)
	}
	return h, nil
}
