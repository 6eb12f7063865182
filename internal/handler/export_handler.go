package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civitas-app/civitas-api/internal/service"
	"github.com/civitas-app/civitas-api/pkg/response"
)

// ExportHandler renders report listings as downloadable documents.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export godoc
// @Summary Export filtered reports as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Success 200
// @Router /admin/reports/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	req := service.ListRequest{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}
	result, err := h.exports.Export(c.Request.Context(), req, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
