package handler

import (
	"context"
	"net/http"

	"index-pulse/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

// MarketAPI is the read and trigger surface of the market service.
type MarketAPI interface {
	MarketView(ctx context.Context) domain.MarketView
	FreshMarketView(ctx context.Context) (domain.MarketView, error)
	PreOpenView(ctx context.Context) domain.PreOpenView
	TriggerPreOpenScan(ctx context.Context) (domain.PreOpenView, error)
	Status(ctx context.Context) domain.ServiceStatus
	ArchivedQuotes(ctx context.Context, limit int) ([]domain.Quote, error)
}

type Handler struct {
	tracer   trace.Tracer
	market   MarketAPI
	hub      *Hub
	apiKey   string
	gatherer prometheus.Gatherer
}

func New(tracer trace.Tracer, market MarketAPI, hub *Hub, apiKey string, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		tracer:   tracer,
		market:   market,
		hub:      hub,
		apiKey:   apiKey,
		gatherer: gatherer,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)

	api := r.Group("/api")
	api.GET("/market", h.GetMarket)
	api.GET("/market/fresh", h.GetFreshMarket)
	api.GET("/preopen", h.GetPreOpen)
	api.POST("/preopen/scan", APIKeyAuth(h.apiKey), h.TriggerScan)
	api.GET("/status", h.GetStatus)
	api.GET("/archive/quotes", h.GetArchivedQuotes)

	if h.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
	if h.hub != nil {
		r.GET("/ws", h.Stream)
	}
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error(), "kind": domain.KindOf(err)})
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNoDataAvailable, domain.KindProviderUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
