package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/civitas-app/civitas-api/internal/models"
	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
)

type referenceRepository interface {
	FindRoleByName(ctx context.Context, name models.RoleName) (*models.Role, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	FindPosition(ctx context.Context, department string, role models.RoleName) (*models.Position, error)
	ListMunicipalityRoles(ctx context.Context) ([]models.Role, error)
	ListMunicipalityPositions(ctx context.Context) ([]models.Position, error)
}

// ReferenceService resolves and validates the role/department/position
// reference data.
type ReferenceService struct {
	repo   referenceRepository
	logger *zap.Logger
}

// NewReferenceService constructs the service.
func NewReferenceService(repo referenceRepository, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{repo: repo, logger: logger}
}

// FindPosition resolves a (department, role) pair; nil when absent.
func (s *ReferenceService) FindPosition(ctx context.Context, department string, role models.RoleName) (*models.Position, error) {
	position, err := s.repo.FindPosition(ctx, department, role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve position")
	}
	return position, nil
}

// ListMunicipalityRoles returns the assignable staff roles. Citizen and
// Administrator never appear: exposing them as assignable would be a
// privilege-escalation path through the UI.
func (s *ReferenceService) ListMunicipalityRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := s.repo.ListMunicipalityRoles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roles")
	}
	return roles, nil
}

// ListMunicipalityPositions returns staff positions with the same
// structural-role exclusion as ListMunicipalityRoles.
func (s *ReferenceService) ListMunicipalityPositions(ctx context.Context) ([]models.Position, error) {
	positions, err := s.repo.ListMunicipalityPositions(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list positions")
	}
	return positions, nil
}

// ListDepartments returns all departments.
func (s *ReferenceService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// IsValidRole reports whether the name is a seeded role.
func (s *ReferenceService) IsValidRole(name string) bool {
	for _, role := range models.AllRoles() {
		if models.RoleName(name) == role {
			return true
		}
	}
	return false
}
