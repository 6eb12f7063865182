package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/civitas-app/civitas-api/internal/models"
)

// CategoryRepository manages the category-to-role routing table.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs a new repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindByCategory fetches the active mapping for one category.
// Returns sql.ErrNoRows (wrapped) when the category is unmapped.
func (r *CategoryRepository) FindByCategory(ctx context.Context, category models.Category) (*models.CategoryRoleMapping, error) {
	var mapping models.CategoryRoleMapping
	query := `SELECT m.id, m.category, m.role_id, r.name AS role_name
FROM category_role_mappings m
JOIN roles r ON r.id = m.role_id
WHERE m.category = $1 LIMIT 1`
	if err := r.db.GetContext(ctx, &mapping, query, category); err != nil {
		return nil, fmt.Errorf("find category mapping: %w", err)
	}
	return &mapping, nil
}

// List returns all mappings in the canonical category enumeration order.
// The ordering lives here rather than in SQL because the canonical order
// is the enum declaration order, not alphabetical.
func (r *CategoryRepository) List(ctx context.Context) ([]models.CategoryRoleMapping, error) {
	var mappings []models.CategoryRoleMapping
	query := `SELECT m.id, m.category, m.role_id, r.name AS role_name
FROM category_role_mappings m
JOIN roles r ON r.id = m.role_id`
	if err := r.db.SelectContext(ctx, &mappings, query); err != nil {
		return nil, fmt.Errorf("list category mappings: %w", err)
	}
	sort.SliceStable(mappings, func(i, j int) bool {
		return models.CategoryRank(mappings[i].Category) < models.CategoryRank(mappings[j].Category)
	})
	return mappings, nil
}

// Upsert sets the responsible role for a category, replacing any previous
// mapping so at most one active row exists per category.
func (r *CategoryRepository) Upsert(ctx context.Context, category models.Category, roleID string) error {
	query := `INSERT INTO category_role_mappings (id, category, role_id, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (category) DO UPDATE SET role_id = EXCLUDED.role_id, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), category, roleID, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert category mapping: %w", err)
	}
	return nil
}

// Delete removes the mapping for a category, returning it to manual triage.
func (r *CategoryRepository) Delete(ctx context.Context, category models.Category) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM category_role_mappings WHERE category = $1", category); err != nil {
		return fmt.Errorf("delete category mapping: %w", err)
	}
	return nil
}
