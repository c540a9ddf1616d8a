package team

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/captable"
	"founder-portal/ops-portal/ops-portal-backend/internal/reports/export"
)

// Handler serves the roster and cap table endpoints
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
	t := router.Group("/team")
	{
		t.POST("/members", h.createMember)
		t.GET("/members", h.listMembers)
		t.GET("/members/:id", h.getMember)
		t.PUT("/members/:id", h.updateMember)
		t.DELETE("/members/:id", h.deleteMember)

		t.GET("/cap-table", h.getCapTable)
		t.GET("/cap-table/export", h.exportCapTable)
		t.GET("/cap-table/snapshots", h.listSnapshots)
		t.POST("/cap-table/snapshots", h.createSnapshot)
	}
}

func (h *Handler) createMember(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.service.CreateMember(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create member", err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *Handler) listMembers(c *gin.Context) {
	members, err := h.service.ListMembers(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to list members", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "count": len(members)})
}

func (h *Handler) getMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member ID"})
		return
	}

	member, err := h.service.GetMember(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get member", err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handler) updateMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member ID"})
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.service.UpdateMember(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, "Failed to update member", err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handler) deleteMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member ID"})
		return
	}

	if err := h.service.DeleteMember(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete member", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getCapTable(c *gin.Context) {
	view, err := h.service.CapTable(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to derive cap table", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// exportCapTable handles GET /api/v1/team/cap-table/export?format=csv|xlsx|pdf
func (h *Handler) exportCapTable(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.CapTableReport(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to build cap table report", err)
		return
	}

	filename := "cap-table-" + report.GeneratedAt.Format("2006-01-02") + format.Extension()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", format.ContentType())
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, format, report); err != nil {
		h.logger.Error("Failed to write cap table export", zap.String("format", string(format)), zap.Error(err))
	}
}

func (h *Handler) listSnapshots(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	snapshots, err := h.service.ListSnapshots(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, "Failed to list snapshots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}

func (h *Handler) createSnapshot(c *gin.Context) {
	snapshot, err := h.service.TakeSnapshot(c.Request.Context(), "manual")
	if err != nil {
		h.respondError(c, "Failed to take snapshot", err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	var validationErr *captable.ValidationError
	switch {
	case errors.Is(err, ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "details": validationErr})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
