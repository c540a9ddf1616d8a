package assistant

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ai := rg.Group("/assistant")
	{
		ai.GET("/status", h.Status)
		ai.POST("/wiki/draft", h.DraftWiki)
	}
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.service.Enabled()})
}

func (h *Handler) DraftWiki(c *gin.Context) {
	var req WikiBrief
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := h.service.DraftWikiPage(c.Request.Context(), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// RespondError maps assistant failures to HTTP statuses.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	var providerErr *ProviderError
	switch {
	case errors.Is(err, ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &providerErr), errors.Is(err, ErrMalformedOutput):
		logger.Error("Assistant request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
