package finance

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
	f := router.Group("/finance")
	{
		f.POST("/records", h.createRecord)
		f.GET("/records", h.listRecords)
		f.DELETE("/records/:id", h.deleteRecord)
		f.GET("/summary", h.getSummary)
		f.POST("/commentary", h.commentary)
	}
}

func (h *Handler) createRecord(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.CreateRecord(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create record", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) listRecords(c *gin.Context) {
	var f Filter
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		if v := c.Query(p.key); v != "" {
			t, err := time.Parse(dateLayout, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": p.key + " must be YYYY-MM-DD"})
				return
			}
			*p.dst = &t
		}
	}
	if k := c.Query("kind"); k != "" {
		kind := Kind(k)
		f.Kind = &kind
	}
	f.Category = c.Query("category")

	records, err := h.service.ListRecords(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, "Failed to list records", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (h *Handler) deleteRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record ID"})
		return
	}

	if err := h.service.DeleteRecord(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete record", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getSummary handles GET /api/v1/finance/summary?from=&to=&cash_on_hand=
func (h *Handler) getSummary(c *gin.Context) {
	req, ok := bindSummary(c)
	if !ok {
		return
	}

	summary, err := h.service.Summarize(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "Failed to summarize finances", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) commentary(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, commentary, err := h.service.Commentary(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRecord) {
			h.respondError(c, "Failed to summarize finances", err)
			return
		}
		assistant.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary, "commentary": commentary})
}

func bindSummary(c *gin.Context) (SummaryRequest, bool) {
	req := SummaryRequest{From: c.Query("from"), To: c.Query("to")}
	if v := c.Query("cash_on_hand"); v != "" {
		cash, err := decimal.NewFromString(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cash_on_hand must be a number"})
			return req, false
		}
		req.CashOnHand = &cash
	}
	return req, true
}

func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
