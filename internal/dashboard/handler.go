package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	aggregator *Aggregator
	logger     *zap.Logger
}

func NewHandler(aggregator *Aggregator, logger *zap.Logger) *Handler {
	return &Handler{aggregator: aggregator, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	d := router.Group("/dashboard")
	{
		d.GET("/summary", h.getSummary)
		d.GET("/cache", h.getCacheStats)
		d.DELETE("/cache", h.clearCache)
	}
}

func (h *Handler) getSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.aggregator.Summary(c.Request.Context()))
}

func (h *Handler) getCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.aggregator.cache.Stats())
}

func (h *Handler) clearCache(c *gin.Context) {
	h.aggregator.Invalidate()
	h.logger.Info("Dashboard cache cleared")
	c.Status(http.StatusNoContent)
}
