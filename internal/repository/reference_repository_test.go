package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-app/civitas-api/internal/models"
)

func TestListMunicipalityRolesExcludesStructural(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "created_at"}).
		AddRow("role-1", string(models.RoleExternalMaintainer), now).
		AddRow("role-2", string(models.RolePublicRelations), now).
		AddRow("role-3", string(models.RoleTechnicalAssistant), now).
		AddRow("role-4", string(models.RoleTechnicalManager), now)
	mock.ExpectQuery("SELECT r.id, r.name, r.created_at FROM roles r WHERE r.name NOT IN \\('CITIZEN', 'ADMINISTRATOR'\\) ORDER BY r.name").
		WillReturnRows(rows)

	roles, err := repo.ListMunicipalityRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 4)
	for _, role := range roles {
		assert.False(t, models.IsStructuralRole(role.Name))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMunicipalityPositionsOrdering(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "department_id", "role_id", "department_name", "role_name"}).
		AddRow("p1", "d1", "r1", "Public Works", string(models.RoleTechnicalAssistant)).
		AddRow("p2", "d1", "r2", "Public Works", string(models.RoleTechnicalManager)).
		AddRow("p3", "d2", "r2", "Water Services", string(models.RoleTechnicalManager))
	mock.ExpectQuery("FROM department_roles dr(.|\n)+WHERE r.name NOT IN \\('CITIZEN', 'ADMINISTRATOR'\\) ORDER BY d.name, r.name").
		WillReturnRows(rows)

	positions, err := repo.ListMunicipalityPositions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 3)
	assert.Equal(t, "Public Works", positions[0].DepartmentName)
	assert.Equal(t, models.RoleTechnicalAssistant, positions[0].RoleName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPosition(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "department_id", "role_id", "department_name", "role_name"}).
		AddRow("p1", "d1", "r1", "Public Works", string(models.RoleTechnicalManager))
	mock.ExpectQuery("FROM department_roles dr").
		WithArgs("Public Works", models.RoleTechnicalManager).
		WillReturnRows(rows)

	position, err := repo.FindPosition(context.Background(), "Public Works", models.RoleTechnicalManager)
	require.NoError(t, err)
	assert.Equal(t, "p1", position.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
