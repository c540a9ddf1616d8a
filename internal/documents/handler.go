package documents

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/assistant"
	"founder-portal/ops-portal/ops-portal-backend/internal/middleware"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	{
		docs.POST("/upload", h.Upload)
		docs.GET("", h.List)
		docs.GET("/:id", h.Download)
		docs.GET("/:id/metadata", h.GetMetadata)
		docs.DELETE("/:id", h.Delete)
		docs.POST("/:id/ask", h.Ask)
	}
}

func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	doc, err := h.service.Upload(c.Request.Context(), UploadRequest{
		Name:        file.Filename,
		Description: c.PostForm("description"),
		Category:    Category(c.PostForm("category")),
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Content:     f,
		UploadedBy:  c.GetString(middleware.SubjectKey),
	})
	if err != nil {
		h.respondError(c, "Failed to upload document", err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) List(c *gin.Context) {
	var category *Category
	if v := c.Query("category"); v != "" {
		cat := Category(v)
		category = &cat
	}

	docs, err := h.service.List(c.Request.Context(), category)
	if err != nil {
		h.respondError(c, "Failed to list documents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	doc, body, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to download document", err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, doc.Size, doc.ContentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", doc.Name),
	})
}

func (h *Handler) GetMetadata(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get document", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete document", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Ask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.service.Ask(c.Request.Context(), id, req.Question)
	if err != nil {
		h.respondError(c, "Failed to answer question", err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	var providerErr *assistant.ProviderError
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotText):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, assistant.ErrDisabled), errors.Is(err, assistant.ErrMalformedOutput), errors.As(err, &providerErr):
		assistant.RespondError(c, h.logger, err)
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
