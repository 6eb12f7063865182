package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civitas-app/civitas-api/internal/models"
	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
	"github.com/civitas-app/civitas-api/pkg/export"
)

var exportHeaders = []string{"ID", "Title", "Category", "Status", "Responsible Role", "Address", "Created At"}

// ExportService renders report listings into CSV or PDF documents for
// municipal administrators.
type ExportService struct {
	reports reportRepository
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	maxRows int
	logger  *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(reports reportRepository, maxRows int, logger *zap.Logger) *ExportService {
	if maxRows <= 0 {
		maxRows = 5000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		reports: reports,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		maxRows: maxRows,
		logger:  logger,
	}
}

// ExportResult carries the rendered document.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export renders reports matching the filter in the requested format.
func (s *ExportService) Export(ctx context.Context, req ListRequest, format string) (*ExportResult, error) {
	format = strings.ToLower(format)
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	filter := models.ReportFilter{
		ReporterID: req.ReporterID,
		AssigneeID: req.AssigneeID,
		Page:       1,
		PageSize:   s.maxRows,
	}
	if req.Status != "" {
		status := models.ReportStatus(req.Status)
		filter.Status = &status
	}
	if req.Category != "" {
		category := models.Category(req.Category)
		filter.Category = &category
	}

	reports, _, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reports for export")
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(reports))}
	for _, report := range reports {
		role := ""
		if report.ResponsibleRole != nil {
			role = string(*report.ResponsibleRole)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":               report.ID,
			"Title":            report.Title,
			"Category":         string(report.Category),
			"Status":           string(report.Status),
			"Responsible Role": role,
			"Address":          report.Address,
			"Created At":       report.CreatedAt.Format(time.RFC3339),
		})
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	switch format {
	case "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("reports-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	default:
		data, err := s.pdf.Render(dataset, "Civic Reports")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("reports-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	}
}
