package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/civitas-app/civitas-api/internal/models"
)

const reportColumns = `id, title, description, category, status, reporter_id, assignee_id, company_id, responsible_role, rejection_reason, latitude, longitude, address, photos, created_at, updated_at`

// ReportRepository manages persistence for civic reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a new repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now
	if report.Photos == nil {
		report.Photos = pq.StringArray{}
	}
	query := `INSERT INTO reports (id, title, description, category, status, reporter_id, assignee_id, company_id, responsible_role, rejection_reason, latitude, longitude, address, photos, created_at, updated_at)
VALUES (:id, :title, :description, :category, :status, :reporter_id, :assignee_id, :company_id, :responsible_role, :rejection_reason, :latitude, :longitude, :address, :photos, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// FindByID fetches a single report.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.Report, error) {
	query := fmt.Sprintf("SELECT %s FROM reports WHERE id = $1 LIMIT 1", reportColumns)
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &report, nil
}

// List returns reports per provided filter.
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Category != nil {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, *filter.Category)
	}
	if filter.ResponsibleRole != nil {
		where = append(where, fmt.Sprintf("responsible_role = $%d", len(args)+1))
		args = append(args, *filter.ResponsibleRole)
	}
	if filter.ReporterID != "" {
		where = append(where, fmt.Sprintf("reporter_id = $%d", len(args)+1))
		args = append(args, filter.ReporterID)
	}
	if filter.AssigneeID != "" {
		where = append(where, fmt.Sprintf("assignee_id = $%d", len(args)+1))
		args = append(args, filter.AssigneeID)
	}
	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 20
	}
	offset := (page - 1) * size
	query := fmt.Sprintf("SELECT %s FROM reports WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d", reportColumns, whereClause, size, offset)
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM reports WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}
	return reports, total, nil
}

// UpdateStatus applies the transition with an optimistic status check and
// returns the number of rows written. Zero rows means the caller lost a
// race (or the report vanished) and must re-read.
func (r *ReportRepository) UpdateStatus(ctx context.Context, update models.ReportStatusUpdate) (int64, error) {
	query := `UPDATE reports SET status = $1,
assignee_id = COALESCE($2, assignee_id),
company_id = COALESCE($3, company_id),
rejection_reason = COALESCE($4, rejection_reason),
updated_at = $5
WHERE id = $6 AND status = $7`
	res, err := r.db.ExecContext(ctx, query,
		update.ToStatus,
		update.AssigneeID,
		update.CompanyID,
		update.RejectionReason,
		time.Now().UTC(),
		update.ID,
		update.FromStatus,
	)
	if err != nil {
		return 0, fmt.Errorf("update report status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update report status rows: %w", err)
	}
	return affected, nil
}

// AppendPhoto records one more storage path on the report.
func (r *ReportRepository) AppendPhoto(ctx context.Context, id, path string) error {
	query := `UPDATE reports SET photos = array_append(photos, $1), updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, path, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("append report photo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append report photo rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("append report photo: %w", sql.ErrNoRows)
	}
	return nil
}
