package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/civitas-app/civitas-api/internal/models"
)

// municipalityExclusion filters out the structural roles from staff
// listings. Both the role and the position listing share this predicate so
// the two views can never disagree on what counts as assignable staff.
const municipalityExclusion = "r.name NOT IN ('CITIZEN', 'ADMINISTRATOR')"

// ReferenceRepository serves the read-mostly role/department/position
// reference data.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs a new repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// FindRoleByName fetches a role by its unique name.
func (r *ReferenceRepository) FindRoleByName(ctx context.Context, name models.RoleName) (*models.Role, error) {
	var role models.Role
	query := "SELECT id, name, created_at FROM roles WHERE name = $1 LIMIT 1"
	if err := r.db.GetContext(ctx, &role, query, name); err != nil {
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &role, nil
}

// ListDepartments returns all departments ordered by name.
func (r *ReferenceRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	query := "SELECT id, name, created_at FROM departments ORDER BY name"
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindPosition resolves the (department, role) pair to its position row.
func (r *ReferenceRepository) FindPosition(ctx context.Context, department string, role models.RoleName) (*models.Position, error) {
	var position models.Position
	query := `SELECT dr.id, dr.department_id, dr.role_id, d.name AS department_name, r.name AS role_name
FROM department_roles dr
JOIN departments d ON d.id = dr.department_id
JOIN roles r ON r.id = dr.role_id
WHERE d.name = $1 AND r.name = $2 LIMIT 1`
	if err := r.db.GetContext(ctx, &position, query, department, role); err != nil {
		return nil, fmt.Errorf("find position: %w", err)
	}
	return &position, nil
}

// ListMunicipalityRoles returns the assignable staff roles, excluding the
// structural Citizen and Administrator roles.
func (r *ReferenceRepository) ListMunicipalityRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	query := fmt.Sprintf("SELECT r.id, r.name, r.created_at FROM roles r WHERE %s ORDER BY r.name", municipalityExclusion)
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("list municipality roles: %w", err)
	}
	return roles, nil
}

// ListMunicipalityPositions returns staff positions with the same
// structural-role exclusion, ordered by department name then role name.
func (r *ReferenceRepository) ListMunicipalityPositions(ctx context.Context) ([]models.Position, error) {
	var positions []models.Position
	query := fmt.Sprintf(`SELECT dr.id, dr.department_id, dr.role_id, d.name AS department_name, r.name AS role_name
FROM department_roles dr
JOIN departments d ON d.id = dr.department_id
JOIN roles r ON r.id = dr.role_id
WHERE %s ORDER BY d.name, r.name`, municipalityExclusion)
	if err := r.db.SelectContext(ctx, &positions, query); err != nil {
		return nil, fmt.Errorf("list municipality positions: %w", err)
	}
	return positions, nil
}
