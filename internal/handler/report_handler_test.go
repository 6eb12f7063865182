package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civitas-app/civitas-api/internal/middleware"
	"github.com/civitas-app/civitas-api/internal/models"
	"github.com/civitas-app/civitas-api/internal/service"
)

type fakeReportRepo struct {
	reports map[string]*models.Report
}

func (f *fakeReportRepo) Create(ctx context.Context, report *models.Report) error {
	if f.reports == nil {
		f.reports = make(map[string]*models.Report)
	}
	if report.ID == "" {
		report.ID = "r1"
	}
	copied := *report
	f.reports[report.ID] = &copied
	return nil
}

func (f *fakeReportRepo) FindByID(ctx context.Context, id string) (*models.Report, error) {
	report, ok := f.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	snapshot := *report
	return &snapshot, nil
}

func (f *fakeReportRepo) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, int, error) {
	var out []models.Report
	for _, r := range f.reports {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (f *fakeReportRepo) UpdateStatus(ctx context.Context, update models.ReportStatusUpdate) (int64, error) {
	report, ok := f.reports[update.ID]
	if !ok || report.Status != update.FromStatus {
		return 0, nil
	}
	report.Status = update.ToStatus
	if update.AssigneeID != nil {
		report.AssigneeID = update.AssigneeID
	}
	if update.RejectionReason != nil {
		report.RejectionReason = update.RejectionReason
	}
	return 1, nil
}

func (f *fakeReportRepo) AppendPhoto(ctx context.Context, id, path string) error {
	report, ok := f.reports[id]
	if !ok {
		return sql.ErrNoRows
	}
	report.Photos = append(report.Photos, path)
	return nil
}

func newReportHandler(repo *fakeReportRepo) *ReportHandler {
	svc := service.NewReportService(repo, nil, nil, nil, nil, zap.NewNop())
	return NewReportHandler(svc)
}

func setClaims(c *gin.Context, userID string, role models.RoleName) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID: userID,
		Positions: []models.PositionClaim{
			{Department: models.DepartmentOrganization, Role: role},
		},
	})
}

func TestReportHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeReportRepo{}
	handler := newReportHandler(repo)

	body := `{"title":"Broken lamp","description":"Dark corner for a week now","category":"LIGHTING"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	setClaims(c, "citizen-1", models.RoleCitizen)

	handler.Submit(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.reports, 1)
	assert.Equal(t, models.StatusPendingApproval, repo.reports["r1"].Status)
}

func TestReportHandlerSubmitWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportHandler(&fakeReportRepo{})

	body := `{"title":"Broken lamp","description":"Dark corner for a week now","category":"LIGHTING"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Submit(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportHandlerTransitionForbiddenForCitizen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeReportRepo{reports: map[string]*models.Report{
		"r1": {ID: "r1", Title: "Lamp", Category: models.CategoryLighting, Status: models.StatusPendingApproval, ReporterID: "citizen-1"},
	}}
	handler := newReportHandler(repo)

	body := `{"target_status":"ASSIGNED","assignee_id":"tech-1"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/reports/r1/transition", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	setClaims(c, "citizen-1", models.RoleCitizen)

	handler.Transition(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, models.StatusPendingApproval, repo.reports["r1"].Status)
}

func TestReportHandlerTransitionSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeReportRepo{reports: map[string]*models.Report{
		"r1": {ID: "r1", Title: "Lamp", Category: models.CategoryLighting, Status: models.StatusPendingApproval, ReporterID: "citizen-1"},
	}}
	handler := newReportHandler(repo)

	body := `{"target_status":"ASSIGNED","assignee_id":"tech-1"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/reports/r1/transition", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	setClaims(c, "pro-1", models.RolePublicRelations)

	handler.Transition(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusAssigned, repo.reports["r1"].Status)
}

func TestReportHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportHandler(&fakeReportRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandlerCategoriesCanonicalOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportHandler(&fakeReportRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/categories", nil)

	handler.Categories(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data)
	assert.Equal(t, string(models.CategoryWaterSupply), envelope.Data[0])
	assert.Equal(t, string(models.CategoryOther), envelope.Data[len(envelope.Data)-1])
}
