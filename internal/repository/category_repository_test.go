package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-app/civitas-api/internal/models"
)

func TestCategoryFindByCategory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "category", "role_id", "role_name"}).
		AddRow("m1", string(models.CategoryLighting), "r1", string(models.RoleTechnicalManager))
	mock.ExpectQuery("FROM category_role_mappings m").
		WithArgs(models.CategoryLighting).
		WillReturnRows(rows)

	mapping, err := repo.FindByCategory(context.Background(), models.CategoryLighting)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnicalManager, mapping.RoleName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryListCanonicalOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	// Returned out of order on purpose; the repository re-sorts by the
	// canonical enumeration order.
	rows := sqlmock.NewRows([]string{"id", "category", "role_id", "role_name"}).
		AddRow("m1", string(models.CategorySewer), "r1", string(models.RoleTechnicalManager)).
		AddRow("m2", string(models.CategoryWaterSupply), "r1", string(models.RoleTechnicalManager)).
		AddRow("m3", string(models.CategoryRoads), "r2", string(models.RoleTechnicalAssistant))
	mock.ExpectQuery("FROM category_role_mappings m").WillReturnRows(rows)

	mappings, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, mappings, 3)
	assert.Equal(t, models.CategoryWaterSupply, mappings[0].Category)
	assert.Equal(t, models.CategoryRoads, mappings[1].Category)
	assert.Equal(t, models.CategorySewer, mappings[2].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectExec("INSERT INTO category_role_mappings").WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), models.CategoryWaste, "role-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
