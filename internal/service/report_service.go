package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/civitas-app/civitas-api/internal/models"
	"github.com/civitas-app/civitas-api/internal/workflow"
	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
)

type reportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id string) (*models.Report, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.Report, int, error)
	UpdateStatus(ctx context.Context, update models.ReportStatusUpdate) (int64, error)
	AppendPhoto(ctx context.Context, id, path string) error
}

type responsibleRoleResolver interface {
	ResolveResponsibleRole(ctx context.Context, category models.Category) (*models.RoleName, error)
}

type transitionEmitter interface {
	OnTransition(ctx context.Context, report *models.Report, from, to models.ReportStatus) ([]models.Notification, error)
}

type transitionObserver interface {
	RecordTransition(from, to models.ReportStatus)
}

// ReportService owns the report lifecycle: submission, listing and the
// status transition operation with its authorization and concurrency rules.
type ReportService struct {
	repo      reportRepository
	router    responsibleRoleResolver
	emitter   transitionEmitter
	metrics   transitionObserver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(repo reportRepository, router responsibleRoleResolver, emitter transitionEmitter, metrics transitionObserver, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, router: router, emitter: emitter, metrics: metrics, validator: validate, logger: logger}
}

// SubmitReportRequest describes a citizen submission.
type SubmitReportRequest struct {
	Title       string  `json:"title" validate:"required,max=120"`
	Description string  `json:"description" validate:"required,max=2000"`
	Category    string  `json:"category" validate:"required"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Address     string  `json:"address" validate:"max=255"`
}

// TransitionRequest describes a requested status change.
type TransitionRequest struct {
	TargetStatus string `json:"target_status" validate:"required"`
	Reason       string `json:"reason,omitempty"`
	AssigneeID   string `json:"assignee_id,omitempty"`
	CompanyID    string `json:"company_id,omitempty"`
}

// Submit creates a report in PENDING_APPROVAL. When the category has an
// active role mapping the responsible role is recorded for staff
// pre-filtering; the status itself never auto-advances.
func (s *ReportService) Submit(ctx context.Context, auth *models.AuthContext, req SubmitReportRequest) (*models.Report, error) {
	if auth == nil || auth.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	category := models.Category(req.Category)
	if !category.IsValid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
	}

	report := &models.Report{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		Status:      models.StatusPendingApproval,
		ReporterID:  auth.UserID,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     strings.TrimSpace(req.Address),
	}

	if s.router != nil {
		role, err := s.router.ResolveResponsibleRole(ctx, category)
		if err != nil {
			return nil, err
		}
		// nil role is a valid state: the category awaits configuration
		// and the report falls back to manual triage.
		report.ResponsibleRole = role
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report")
	}
	return report, nil
}

// Transition validates and applies a status change. Validation order:
// reachability, rejection reason, authorization. The write itself is
// guarded by the observed status so concurrent requests on the same
// report are serialized; the loser gets a conflict.
func (s *ReportService) Transition(ctx context.Context, auth *models.AuthContext, reportID string, req TransitionRequest) (*models.Report, error) {
	target := models.ReportStatus(req.TargetStatus)
	if !target.IsValid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown target status")
	}

	report, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch report")
	}

	if !workflow.CanTransition(report.Status, target) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "cannot move report from "+string(report.Status)+" to "+string(target))
	}

	update := models.ReportStatusUpdate{
		ID:         report.ID,
		FromStatus: report.Status,
		ToStatus:   target,
	}

	switch target {
	case models.StatusRejected:
		if !workflow.ValidRejectionReason(req.Reason) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason must be between 10 and 500 characters")
		}
		reason := req.Reason
		update.RejectionReason = &reason
	case models.StatusAssigned:
		if req.AssigneeID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assignee_id required when assigning a report")
		}
		assignee := req.AssigneeID
		update.AssigneeID = &assignee
		if req.CompanyID != "" {
			company := req.CompanyID
			update.CompanyID = &company
		}
	}

	switch workflow.Authorize(auth, target) {
	case workflow.DeniedUnauthenticated:
		return nil, appErrors.ErrUnauthorized
	case workflow.DeniedInsufficientRights:
		return nil, appErrors.Clone(appErrors.ErrInsufficientRights, "none of your positions may perform this transition")
	}

	affected, err := s.repo.UpdateStatus(ctx, update)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report status")
	}
	if affected == 0 {
		// Lost the race or the report vanished; re-read to tell which.
		if _, err := s.repo.FindByID(ctx, reportID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch report")
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, "report was modified concurrently")
	}

	from := report.Status
	report.Status = target
	report.AssigneeID = orKeep(report.AssigneeID, update.AssigneeID)
	report.CompanyID = orKeep(report.CompanyID, update.CompanyID)
	report.RejectionReason = orKeep(report.RejectionReason, update.RejectionReason)

	if s.metrics != nil {
		s.metrics.RecordTransition(from, target)
	}

	if s.emitter != nil {
		if _, err := s.emitter.OnTransition(ctx, report, from, target); err != nil {
			s.logger.Error("notification emission failed",
				zap.String("report_id", report.ID),
				zap.String("from", string(from)),
				zap.String("to", string(target)),
				zap.Error(err))
		}
	}

	return report, nil
}

// Get fetches a single report.
func (s *ReportService) Get(ctx context.Context, id string) (*models.Report, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch report")
	}
	return report, nil
}

// ListRequest describes report listing filters.
type ListRequest struct {
	Status          string
	Category        string
	ResponsibleRole string
	ReporterID      string
	AssigneeID      string
	Page            int
	PageSize        int
}

// List returns reports with pagination.
func (s *ReportService) List(ctx context.Context, req ListRequest) ([]models.Report, *models.Pagination, error) {
	filter := models.ReportFilter{
		ReporterID: req.ReporterID,
		AssigneeID: req.AssigneeID,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if req.Status != "" {
		status := models.ReportStatus(req.Status)
		if !status.IsValid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
		}
		filter.Status = &status
	}
	if req.Category != "" {
		category := models.Category(req.Category)
		if !category.IsValid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown category filter")
		}
		filter.Category = &category
	}
	if req.ResponsibleRole != "" {
		role := models.RoleName(req.ResponsibleRole)
		filter.ResponsibleRole = &role
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return reports, pagination, nil
}

// AttachPhoto records a storage path returned by the photo collaborator.
// The core never touches raw file bytes.
func (s *ReportService) AttachPhoto(ctx context.Context, id, path string) error {
	if path == "" {
		return appErrors.Clone(appErrors.ErrValidation, "photo path required")
	}
	if err := s.repo.AppendPhoto(ctx, id, path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach photo")
	}
	return nil
}

func orKeep(current, updated *string) *string {
	if updated != nil {
		return updated
	}
	return current
}
