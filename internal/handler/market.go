package handler

import (
	"errors"
	"net/http"
	"strconv"

	"index-pulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetMarket godoc
// @Summary      Latest market view
// @Description  Returns the cached quote, indicators, sentiment and entry/exit plan. Never calls upstream.
// @Tags         market
// @Produce      json
// @Success      200  {object}  domain.MarketView
// @Router       /api/market [get]
func (h *Handler) GetMarket(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market")
	defer span.End()

	c.JSON(http.StatusOK, h.market.MarketView(ctx))
}

// GetFreshMarket godoc
// @Summary      Fresh market view
// @Description  Performs a one-off upstream fetch and analyses it against the cached history
// @Tags         market
// @Produce      json
// @Success      200  {object}  domain.MarketView
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/market/fresh [get]
func (h *Handler) GetFreshMarket(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-fresh-market")
	defer span.End()

	view, err := h.market.FreshMarketView(ctx)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "cached": view})
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetPreOpen godoc
// @Summary      Latest pre-open scan
// @Description  Returns the latest gainers, losers and gap prediction
// @Tags         preopen
// @Produce      json
// @Success      200  {object}  domain.PreOpenView
// @Router       /api/preopen [get]
func (h *Handler) GetPreOpen(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-preopen")
	defer span.End()

	c.JSON(http.StatusOK, h.market.PreOpenView(ctx))
}

// TriggerScan godoc
// @Summary      Run a pre-open scan now
// @Description  Forces an immediate pre-open scan outside the scheduled window
// @Tags         preopen
// @Produce      json
// @Param        X-API-Key  header  string  false  "API key when API_KEY is set"
// @Success      200  {object}  domain.PreOpenView
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/preopen/scan [post]
func (h *Handler) TriggerScan(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-scan")
	defer span.End()

	view, err := h.market.TriggerPreOpenScan(ctx)
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetStatus godoc
// @Summary      Service status
// @Description  Market status, history size, cache entries and last fetch times
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.ServiceStatus
// @Router       /api/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-status")
	defer span.End()

	c.JSON(http.StatusOK, h.market.Status(ctx))
}

// GetArchivedQuotes godoc
// @Summary      Archived quotes
// @Description  Returns persisted quotes newest first. Requires DATABASE_URL.
// @Tags         market
// @Produce      json
// @Param        limit  query  int  false  "Number of quotes (default 100, max 500)"  default(100)
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/archive/quotes [get]
func (h *Handler) GetArchivedQuotes(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-archived-quotes")
	defer span.End()

	limit := 100
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	span.SetAttributes(attribute.Int("limit", limit))

	quotes, err := h.market.ArchivedQuotes(ctx, limit)
	if errors.Is(err, service.ErrArchiveDisabled) {
		errorJSON(c, http.StatusServiceUnavailable, err)
		return
	}
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quotes, "count": len(quotes)})
}
