package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civitas-app/civitas-api/internal/models"
)

func TestCanTransitionTable(t *testing.T) {
	allowed := map[[2]models.ReportStatus]bool{
		{models.StatusPendingApproval, models.StatusAssigned}: true,
		{models.StatusPendingApproval, models.StatusRejected}: true,
		{models.StatusAssigned, models.StatusInProgress}:      true,
		{models.StatusInProgress, models.StatusResolved}:      true,
		{models.StatusInProgress, models.StatusSuspended}:     true,
		{models.StatusSuspended, models.StatusInProgress}:     true,
	}

	for _, from := range models.AllStatuses() {
		for _, to := range models.AllStatuses() {
			want := allowed[[2]models.ReportStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestSelfTransitionNeverAllowed(t *testing.T) {
	for _, s := range models.AllStatuses() {
		assert.False(t, CanTransition(s, s), "self transition %s", s)
	}
}

func TestTerminalStatesHaveNoTargets(t *testing.T) {
	assert.Empty(t, AllowedTargets(models.StatusResolved))
	assert.Empty(t, AllowedTargets(models.StatusRejected))
}

func TestValidRejectionReason(t *testing.T) {
	assert.False(t, ValidRejectionReason(""))
	assert.False(t, ValidRejectionReason("too short"))
	assert.True(t, ValidRejectionReason("duplicate of report 42"))
	assert.True(t, ValidRejectionReason(strings.Repeat("a", 500)))
	assert.False(t, ValidRejectionReason(strings.Repeat("a", 501)))
}
