// Package workflow owns the report lifecycle rules: which status moves are
// legal and which roles may perform them. It is pure decision logic with no
// persistence, so the service layer can apply its verdicts atomically.
package workflow

import (
	"github.com/civitas-app/civitas-api/internal/models"
)

// transitions is the finite-state table: current status to the set of
// reachable targets. A status missing here is terminal. Adding a new status
// forces an explicit entry rather than an implicit fallthrough.
var transitions = map[models.ReportStatus][]models.ReportStatus{
	models.StatusPendingApproval: {models.StatusAssigned, models.StatusRejected},
	models.StatusAssigned:        {models.StatusInProgress},
	models.StatusInProgress:      {models.StatusResolved, models.StatusSuspended},
	models.StatusSuspended:       {models.StatusInProgress},
	models.StatusResolved:        {},
	models.StatusRejected:        {},
}

// CanTransition reports whether target is reachable from current.
// Self-transitions are never allowed.
func CanTransition(current, target models.ReportStatus) bool {
	if current == target {
		return false
	}
	for _, allowed := range transitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses reachable from current.
func AllowedTargets(current models.ReportStatus) []models.ReportStatus {
	targets := transitions[current]
	out := make([]models.ReportStatus, len(targets))
	copy(out, targets)
	return out
}

// Rejection reason length bounds, in characters.
const (
	MinRejectionReasonLen = 10
	MaxRejectionReasonLen = 500
)

// ValidRejectionReason reports whether the reason satisfies the length
// bounds required when a report is rejected.
func ValidRejectionReason(reason string) bool {
	n := len([]rune(reason))
	return n >= MinRejectionReasonLen && n <= MaxRejectionReasonLen
}
