package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"index-pulse/internal/domain"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// NSEPreOpenSource reads the pre-open auction snapshot for an index's constituents.
type NSEPreOpenSource struct {
	getter  JSONGetter
	baseURL string
	key     string
	tracer  trace.Tracer
}

// NewNSEPreOpenSource fetches the snapshot for key, e.g. "NIFTY".
func NewNSEPreOpenSource(tracer trace.Tracer, getter JSONGetter, baseURL, key string) *NSEPreOpenSource {
	if baseURL == "" {
		baseURL = DefaultNSEBaseURL
	}
	if key == "" {
		key = "NIFTY"
	}
	return &NSEPreOpenSource{
		getter:  getter,
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		tracer:  tracer,
	}
}

func (s *NSEPreOpenSource) FetchSnapshot(ctx context.Context) ([]domain.PreOpenEntry, error) {
	ctx, span := s.tracer.Start(ctx, "nse.fetch-preopen")
	defer span.End()
	span.SetAttributes(attribute.String("key", s.key))

	endpoint := fmt.Sprintf("%s/api/market-data-pre-open?key=%s", s.baseURL, url.QueryEscape(s.key))
	body, err := s.getter.GetJSON(ctx, endpoint, nseHeaders)
	if err != nil {
		return nil, fmt.Errorf("nse pre-open: %w", err)
	}

	rows := gjson.GetBytes(body, "data")
	if !rows.IsArray() {
		return nil, fmt.Errorf("%w: nse pre-open: missing data array", domain.ErrMalformedResponse)
	}

	entries := make([]domain.PreOpenEntry, 0, len(rows.Array()))
	for _, r := range rows.Array() {
		meta := r.Get("metadata")
		symbol := meta.Get("symbol").String()
		if symbol == "" {
			continue
		}
		e := domain.PreOpenEntry{Symbol: symbol}
		e.Price, _ = number(meta.Get("lastPrice"))
		e.ChangePct, _ = number(meta.Get("pChange"))
		e.PrevClose, _ = number(meta.Get("previousClose"))
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: nse pre-open: empty snapshot", domain.ErrNoDataAvailable)
	}
	return entries, nil
}
