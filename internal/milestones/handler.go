package milestones

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/assistant"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	m := router.Group("/milestones")
	{
		m.POST("", h.create)
		m.GET("", h.list)
		m.GET("/progress", h.progress)
		m.GET("/:id", h.get)
		m.PUT("/:id", h.update)
		m.DELETE("/:id", h.delete)
		m.POST("/:id/status", h.setStatus)
		m.POST("/:id/describe", h.describe)
	}
}

func (h *Handler) create(c *gin.Context) {
	var req CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create milestone", err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) list(c *gin.Context) {
	var status *Status
	if s := c.Query("status"); s != "" {
		st := Status(s)
		status = &st
	}

	items, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		h.respondError(c, "Failed to list milestones", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": items, "count": len(items)})
}

func (h *Handler) progress(c *gin.Context) {
	p, err := h.service.Progress(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to compute progress", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone ID"})
		return
	}

	m, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get milestone", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone ID"})
		return
	}

	var req UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, "Failed to update milestone", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete milestone", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone ID"})
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.service.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, "Failed to change milestone status", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) describe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone ID"})
		return
	}

	m, err := h.service.GenerateDescription(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to describe milestone", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	var providerErr *assistant.ProviderError
	switch {
	case errors.Is(err, ErrMilestoneNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidMilestone):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, assistant.ErrDisabled), errors.Is(err, assistant.ErrMalformedOutput), errors.As(err, &providerErr):
		assistant.RespondError(c, h.logger, err)
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
