package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civitas-app/civitas-api/internal/models"
	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
)

type mockNotificationRepo struct {
	created  []models.Notification
	affected int64
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	n.Read = false
	m.created = append(m.created, *n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int, error) {
	var out []models.Notification
	for _, n := range m.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range m.created {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) (int64, error) {
	return m.affected, nil
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

func assignedReport() *models.Report {
	assignee := "tech-1"
	return &models.Report{
		ID:         "r1",
		Title:      "Broken street lamp",
		Category:   models.CategoryLighting,
		Status:     models.StatusAssigned,
		ReporterID: "citizen-1",
		AssigneeID: &assignee,
	}
}

func TestOnTransitionApprovalNotifiesReporterAndAssignee(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, zap.NewNop())

	events, err := svc.OnTransition(context.Background(), assignedReport(), models.StatusPendingApproval, models.StatusAssigned)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "citizen-1", events[0].UserID)
	assert.Equal(t, "tech-1", events[1].UserID)
	assert.Len(t, repo.created, 2)
	for _, n := range repo.created {
		assert.False(t, n.Read)
	}
}

func TestOnTransitionRejectionYieldsSingleReporterRow(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, zap.NewNop())

	reason := "outside municipal jurisdiction"
	report := assignedReport()
	report.Status = models.StatusRejected
	report.AssigneeID = nil
	report.RejectionReason = &reason

	// Leaving PENDING_APPROVAL and reaching a terminal state both fire,
	// but the reporter gets exactly one row.
	events, err := svc.OnTransition(context.Background(), report, models.StatusPendingApproval, models.StatusRejected)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "citizen-1", events[0].UserID)
	assert.Contains(t, events[0].Content, reason)
}

func TestOnTransitionResolvedNotifiesReporter(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepo{}, zap.NewNop())

	report := assignedReport()
	report.Status = models.StatusResolved
	events, err := svc.OnTransition(context.Background(), report, models.StatusInProgress, models.StatusResolved)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "citizen-1", events[0].UserID)
}

func TestOnTransitionIntermediateStepIsSilent(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepo{}, zap.NewNop())

	report := assignedReport()
	report.Status = models.StatusInProgress
	events, err := svc.OnTransition(context.Background(), report, models.StatusAssigned, models.StatusInProgress)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestOnTransitionSelfAssignmentDedupes(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepo{}, zap.NewNop())

	report := assignedReport()
	report.AssigneeID = &report.ReporterID
	events, err := svc.OnTransition(context.Background(), report, models.StatusPendingApproval, models.StatusAssigned)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, report.ReporterID, events[0].UserID)
}

func TestMarkReadUnknownNotification(t *testing.T) {
	repo := &mockNotificationRepo{affected: 0}
	svc := NewNotificationService(repo, zap.NewNop())

	err := svc.MarkRead(context.Background(), "missing", "citizen-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUnreadCount(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, zap.NewNop())

	report := assignedReport()
	_, err := svc.OnTransition(context.Background(), report, models.StatusPendingApproval, models.StatusAssigned)
	require.NoError(t, err)

	count, err := svc.UnreadCount(context.Background(), "citizen-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
