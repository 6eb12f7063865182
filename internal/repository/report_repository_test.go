package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-app/civitas-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func reportRows(id string, status models.ReportStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "title", "description", "category", "status", "reporter_id", "assignee_id", "company_id", "responsible_role", "rejection_reason", "latitude", "longitude", "address", "photos", "created_at", "updated_at"}).
		AddRow(id, "Broken lamp", "Street lamp flickering", string(models.CategoryLighting), string(status), "citizen-1", nil, nil, nil, nil, 45.07, 7.68, "Via Roma 1", "{}", now, now)
}

func TestReportFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = \\$1 LIMIT 1").
		WithArgs("r1").
		WillReturnRows(reportRows("r1", models.StatusPendingApproval))

	report, err := repo.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, report.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec("INSERT INTO reports").WillReturnResult(sqlmock.NewResult(1, 1))

	report := &models.Report{
		Title:       "Pothole",
		Description: "Deep pothole near the crossing",
		Category:    models.CategoryRoads,
		Status:      models.StatusPendingApproval,
		ReporterID:  "citizen-1",
	}
	err := repo.Create(context.Background(), report)
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportUpdateStatusWins(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec("UPDATE reports SET status =").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.UpdateStatus(context.Background(), models.ReportStatusUpdate{
		ID:         "r1",
		FromStatus: models.StatusPendingApproval,
		ToStatus:   models.StatusAssigned,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportUpdateStatusLosesRace(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	// The guarded status no longer matches, so no row is written.
	mock.ExpectExec("UPDATE reports SET status =").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.UpdateStatus(context.Background(), models.ReportStatusUpdate{
		ID:         "r1",
		FromStatus: models.StatusInProgress,
		ToStatus:   models.StatusResolved,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportListByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+reportColumns+" FROM reports WHERE 1=1 AND status = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.StatusPendingApproval).
		WillReturnRows(reportRows("r1", models.StatusPendingApproval))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reports WHERE 1=1 AND status = $1")).
		WithArgs(models.StatusPendingApproval).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	status := models.StatusPendingApproval
	reports, total, err := repo.List(context.Background(), models.ReportFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
