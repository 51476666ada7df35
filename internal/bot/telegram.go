package bot

import (
	"context"
	"fmt"
	"time"

	"index-pulse/internal/domain"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"
)

// MarketReader is what the bot needs from the market service.
type MarketReader interface {
	MarketView(ctx context.Context) domain.MarketView
	PreOpenView(ctx context.Context) domain.PreOpenView
	TriggerPreOpenScan(ctx context.Context) (domain.PreOpenView, error)
	Status(ctx context.Context) domain.ServiceStatus
}

type Options struct {
	Token         string
	WebhookURL    string
	WebhookListen string
	Location      *time.Location
}

type Bot struct {
	log    zerolog.Logger
	market MarketReader
	opts   Options
}

func New(log zerolog.Logger, market MarketReader, opts Options) *Bot {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Bot{
		log:    log.With().Str("component", "telegram").Logger(),
		market: market,
		opts:   opts,
	}
}

func (b *Bot) settings() tele.Settings {
	pref := tele.Settings{
		Token:     b.opts.Token,
		ParseMode: tele.ModeHTML,
		OnError: func(err error, c tele.Context) {
			b.log.Warn().Err(err).Msg("telegram handler error")
		},
	}
	if b.opts.WebhookURL != "" {
		pref.Poller = &tele.Webhook{
			Listen:   b.opts.WebhookListen,
			Endpoint: &tele.WebhookEndpoint{PublicURL: b.opts.WebhookURL},
		}
	} else {
		pref.Poller = &tele.LongPoller{Timeout: 10 * time.Second}
	}
	return pref
}

// Start runs the bot until ctx is cancelled. Without a token, or when
// Telegram rejects it, it returns nil so the schedulers keep running.
func (b *Bot) Start(ctx context.Context) error {
	if b.opts.Token == "" {
		b.log.Info().Msg("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	tb, err := tele.NewBot(b.settings())
	if err != nil {
		b.log.Error().Err(err).Msg("failed to create Telegram bot, continuing without it")
		return nil
	}
	b.register(tb)

	go func() {
		<-ctx.Done()
		tb.Stop()
	}()
	b.log.Info().Bool("webhook", b.opts.WebhookURL != "").Msg("Telegram bot started")
	tb.Start()
	return nil
}

type handlerRegistrar interface {
	Handle(endpoint interface{}, h tele.HandlerFunc, m ...tele.MiddlewareFunc)
}

func (b *Bot) register(r handlerRegistrar) {
	r.Handle("/start", func(c tele.Context) error {
		return c.Send(welcomeMsg)
	})
	market := func(c tele.Context) error {
		return c.Send(FormatMarket(b.market.MarketView(context.Background()), b.opts.Location))
	}
	r.Handle("/market", market)
	r.Handle("/nifty", market)
	r.Handle("/technical", func(c tele.Context) error {
		return c.Send(FormatTechnical(b.market.MarketView(context.Background())))
	})
	r.Handle("/signals", func(c tele.Context) error {
		return c.Send(FormatSignals(b.market.MarketView(context.Background())))
	})
	r.Handle("/entry", func(c tele.Context) error {
		return c.Send(FormatEntryExit(b.market.MarketView(context.Background())))
	})
	r.Handle("/preopen", func(c tele.Context) error {
		return c.Send(FormatPreOpen(b.market.PreOpenView(context.Background()), b.opts.Location))
	})
	r.Handle("/scan", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		view, err := b.market.TriggerPreOpenScan(ctx)
		if err != nil {
			return c.Send(fmt.Sprintf("❌ Pre-open scan failed (%s). Please try again later.", domain.KindOf(err)))
		}
		return c.Send(FormatPreOpen(view, b.opts.Location))
	})
	r.Handle("/status", func(c tele.Context) error {
		return c.Send(FormatStatus(b.market.Status(context.Background()), b.opts.Location))
	})
}
