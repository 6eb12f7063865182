package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/civitas-app/civitas-api/internal/models"
	"github.com/civitas-app/civitas-api/internal/service"
	"github.com/civitas-app/civitas-api/internal/workflow"
	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
	"github.com/civitas-app/civitas-api/pkg/response"
)

// ReportHandler exposes report lifecycle endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Submit godoc
// @Summary Submit a new report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body service.SubmitReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Submit(c *gin.Context) {
	var req service.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.reports.Submit(c.Request.Context(), authFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// List godoc
// @Summary List reports
// @Tags Reports
// @Produce json
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Param responsibleRole query string false "Filter by responsible role"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	req := service.ListRequest{
		Status:          c.Query("status"),
		Category:        c.Query("category"),
		ResponsibleRole: c.Query("responsibleRole"),
		ReporterID:      c.Query("reporterId"),
		AssigneeID:      c.Query("assigneeId"),
		Page:            page,
		PageSize:        pageSize,
	}
	reports, pagination, err := h.reports.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, pagination)
}

// Mine godoc
// @Summary List the caller's own reports
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/mine [get]
func (h *ReportHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	reports, pagination, err := h.reports.List(c.Request.Context(), service.ListRequest{
		ReporterID: claims.UserID,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, pagination)
}

// Get godoc
// @Summary Get report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Transition godoc
// @Summary Move a report to a new status
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body service.TransitionRequest true "Transition payload"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/transition [post]
func (h *ReportHandler) Transition(c *gin.Context) {
	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.reports.Transition(c.Request.Context(), authFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// AllowedTransitions godoc
// @Summary List statuses reachable from the report's current status
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/transitions [get]
func (h *ReportHandler) AllowedTransitions(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	targets := workflow.AllowedTargets(report.Status)
	response.JSON(c, http.StatusOK, gin.H{
		"status":  report.Status,
		"targets": targets,
	}, nil)
}

// Categories godoc
// @Summary List report categories in canonical order
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/categories [get]
func (h *ReportHandler) Categories(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.AllCategories(), nil)
}
