package fundraising

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

// Handler serves the pipeline and simulation endpoints
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
	f := router.Group("/fundraising")
	{
		f.POST("/investors", h.createInvestor)
		f.GET("/investors", h.listInvestors)
		f.GET("/investors/:id", h.getInvestor)
		f.PUT("/investors/:id", h.updateInvestor)
		f.DELETE("/investors/:id", h.deleteInvestor)
		f.POST("/investors/:id/stage", h.moveStage)
		f.GET("/pipeline", h.getPipeline)

		f.POST("/simulations", h.simulate)
		f.GET("/simulations", h.listSimulations)
		f.GET("/simulations/:id", h.getSimulation)
		f.GET("/simulations/:id/export", h.exportSimulation)
	}
}

func (h *Handler) createInvestor(c *gin.Context) {
	var req CreateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.service.CreateInvestor(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create investor", err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) listInvestors(c *gin.Context) {
	var stage *Stage
	if s := c.Query("stage"); s != "" {
		st := Stage(s)
		stage = &st
	}

	investors, err := h.service.ListInvestors(c.Request.Context(), stage)
	if err != nil {
		h.respondError(c, "Failed to list investors", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"investors": investors, "count": len(investors)})
}

func (h *Handler) getInvestor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	inv, err := h.service.GetInvestor(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get investor", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"investor": inv, "next_stages": NextStages(inv.Stage)})
}

func (h *Handler) updateInvestor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.service.UpdateInvestor(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, "Failed to update investor", err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) deleteInvestor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteInvestor(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete investor", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) moveStage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.service.MoveStage(c.Request.Context(), id, req.Stage)
	if err != nil {
		h.respondError(c, "Failed to move investor", err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) getPipeline(c *gin.Context) {
	summary, err := h.service.Pipeline(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to summarize pipeline", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// simulate handles POST /api/v1/fundraising/simulations
func (h *Handler) simulate(c *gin.Context) {
	var req SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.SimulateRound(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to simulate round", err)
		return
	}

	status := http.StatusOK
	if resp.ID != nil {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

func (h *Handler) listSimulations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	sims, err := h.service.ListSimulations(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, "Failed to list simulations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"simulations": sims})
}

func (h *Handler) getSimulation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	sim, err := h.service.GetSimulation(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get simulation", err)
		return
	}
	c.JSON(http.StatusOK, sim)
}

func (h *Handler) exportSimulation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.SimulationReport(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to build simulation report", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "simulation-"+id.String()+format.Extension()))
	c.Header("Content-Type", format.ContentType())
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, format, report); err != nil {
		h.logger.Error("Failed to write simulation export", zap.String("simulation_id", id.String()), zap.Error(err))
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	var inputErr *captable.InvalidInputError
	var validationErr *captable.ValidationError
	switch {
	case errors.Is(err, ErrInvestorNotFound), errors.Is(err, ErrSimulationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidStage):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidInvestor):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &inputErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "details": inputErr})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "details": validationErr})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
