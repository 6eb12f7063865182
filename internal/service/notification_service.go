package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civitas-app/civitas-api/internal/models"
	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
	"github.com/civitas-app/civitas-api/pkg/jobs"
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) error
}

const jobTypeNotification = "notification.create"

// NotificationService translates successful transitions into persisted
// notification rows and serves the read API. It never talks to delivery
// transports; collaborators poll the rows it writes.
type NotificationService struct {
	repo   notificationRepository
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// StartEmitter builds and starts the background queue that persists
// notification rows with retries. The retries are what make row
// production at-least-once. Callers own the returned queue's Stop.
func (s *NotificationService) StartEmitter(ctx context.Context, cfg jobs.QueueConfig) *jobs.Queue {
	queue := jobs.NewQueue("notifications", s.handleJob, cfg)
	queue.Start(ctx)
	s.queue = queue
	return queue
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(*models.Notification)
	if !ok {
		return fmt.Errorf("unexpected payload for %s job", job.Type)
	}
	return s.repo.Create(ctx, notification)
}

// OnTransition produces the notification rows a transition calls for.
// With the emitter queue running, rows are written asynchronously with
// retries; otherwise they are persisted inline.
func (s *NotificationService) OnTransition(ctx context.Context, report *models.Report, from, to models.ReportStatus) ([]models.Notification, error) {
	events := buildEvents(report, from, to)
	for i := range events {
		if s.queue != nil {
			if err := s.queue.Enqueue(jobs.Job{
				ID:      uuid.NewString(),
				Type:    jobTypeNotification,
				Payload: &events[i],
			}); err != nil {
				return events, fmt.Errorf("enqueue notification: %w", err)
			}
			continue
		}
		if err := s.repo.Create(ctx, &events[i]); err != nil {
			return events, fmt.Errorf("persist notification: %w", err)
		}
	}
	return events, nil
}

// buildEvents applies the emission rules: the reporter is informed on any
// transition out of PENDING_APPROVAL and on reaching a terminal state
// (one row even when both rules fire); the assignee is informed when
// newly assigned.
func buildEvents(report *models.Report, from, to models.ReportStatus) []models.Notification {
	var events []models.Notification
	reportID := report.ID

	if from == models.StatusPendingApproval || to.IsTerminal() {
		events = append(events, models.Notification{
			UserID:   report.ReporterID,
			ReportID: &reportID,
			Content:  reporterMessage(report, to),
		})
	}

	if to == models.StatusAssigned && report.AssigneeID != nil && *report.AssigneeID != report.ReporterID {
		events = append(events, models.Notification{
			UserID:   *report.AssigneeID,
			ReportID: &reportID,
			Content:  fmt.Sprintf("Report %q has been assigned to you", report.Title),
		})
	}

	return events
}

func reporterMessage(report *models.Report, to models.ReportStatus) string {
	switch to {
	case models.StatusAssigned:
		return fmt.Sprintf("Your report %q has been approved and assigned", report.Title)
	case models.StatusRejected:
		reason := ""
		if report.RejectionReason != nil {
			reason = ": " + *report.RejectionReason
		}
		return fmt.Sprintf("Your report %q has been rejected%s", report.Title, reason)
	case models.StatusResolved:
		return fmt.Sprintf("Your report %q has been resolved", report.Title)
	default:
		return fmt.Sprintf("Your report %q is now %s", report.Title, to)
	}
}

// ListForUser returns the user's notifications.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	notifications, total, err := s.repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return notifications, pagination, nil
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}

// MarkRead flips one notification to read for its owner.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	affected, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

// MarkAllRead flips all of the user's unread notifications.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}
