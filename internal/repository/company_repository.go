package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/civitas-app/civitas-api/internal/models"
)

// ErrDuplicate marks a unique-constraint violation so the service layer
// can surface it as a conflict rather than an internal error.
var ErrDuplicate = errors.New("duplicate row")

const pqUniqueViolation = "23505"

// CompanyRepository manages external maintenance companies.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository constructs a new repository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create inserts a company. A duplicate name yields ErrDuplicate.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now
	query := `INSERT INTO companies (id, name, email, phone, created_at, updated_at)
VALUES (:id, :name, :email, :phone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("create company: %w", ErrDuplicate)
		}
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// FindByID fetches a single company.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*models.Company, error) {
	var company models.Company
	query := "SELECT id, name, email, phone, created_at, updated_at FROM companies WHERE id = $1 LIMIT 1"
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}
	return &company, nil
}

// List returns all companies ordered by name.
func (r *CompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	query := "SELECT id, name, email, phone, created_at, updated_at FROM companies ORDER BY name"
	if err := r.db.SelectContext(ctx, &companies, query); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// Update modifies a company. A duplicate name yields ErrDuplicate.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = time.Now().UTC()
	query := `UPDATE companies SET name = :name, email = :email, phone = :phone, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("update company: %w", ErrDuplicate)
		}
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}
