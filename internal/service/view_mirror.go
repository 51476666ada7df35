package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"index-pulse/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	marketViewKey  = "view:market"
	preOpenViewKey = "view:preopen"

	marketViewTTL  = 10 * time.Minute
	preOpenViewTTL = 24 * time.Hour
)

// ErrViewUnavailable means no process has published the view yet or it expired.
var ErrViewUnavailable = errors.New("view not published")

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// ViewMirror copies the latest views into Redis so processes without their
// own scheduler (the SSH dashboard) can read them.
type ViewMirror struct {
	redis RedisClient
}

func NewViewMirror(client RedisClient) *ViewMirror {
	return &ViewMirror{redis: client}
}

func (m *ViewMirror) PublishMarket(ctx context.Context, v domain.MarketView) error {
	return m.set(ctx, marketViewKey, v, marketViewTTL)
}

func (m *ViewMirror) PublishPreOpen(ctx context.Context, v domain.PreOpenView) error {
	return m.set(ctx, preOpenViewKey, v, preOpenViewTTL)
}

func (m *ViewMirror) LatestMarketView(ctx context.Context) (domain.MarketView, error) {
	var v domain.MarketView
	err := m.get(ctx, marketViewKey, &v)
	return v, err
}

func (m *ViewMirror) LatestPreOpenView(ctx context.Context) (domain.PreOpenView, error) {
	var v domain.PreOpenView
	err := m.get(ctx, preOpenViewKey, &v)
	return v, err
}

func (m *ViewMirror) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.redis.Set(ctx, key, data, ttl).Err()
}

func (m *ViewMirror) get(ctx context.Context, key string, dst any) error {
	data, err := m.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrViewUnavailable
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
