package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Returns liveness plus market status, cache entries and history size
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	st := h.market.Status(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"market_status":      st.MarketStatus,
		"cache_size":         st.CacheSize,
		"price_history_size": st.HistorySize,
	})
}

// Ready godoc
// @Summary      Readiness check
// @Description  Returns 200 once the first quote has been fetched
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /ready [get]
func (h *Handler) Ready(c *gin.Context) {
	if h.market.MarketView(c.Request.Context()).Quote == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "waiting for first quote"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
