package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civitas-app/civitas-api/internal/models"
)

func authWith(roles ...models.RoleName) *models.AuthContext {
	positions := make([]models.PositionClaim, len(roles))
	for i, r := range roles {
		positions[i] = models.PositionClaim{Department: "Roads and Mobility", Role: r}
	}
	return &models.AuthContext{UserID: "u1", Positions: positions}
}

func TestAuthorizePerTargetStatus(t *testing.T) {
	cases := []struct {
		target    models.ReportStatus
		permitted []models.RoleName
	}{
		{models.StatusAssigned, []models.RoleName{models.RolePublicRelations}},
		{models.StatusRejected, []models.RoleName{models.RolePublicRelations}},
		{models.StatusInProgress, []models.RoleName{models.RoleTechnicalManager, models.RoleTechnicalAssistant}},
		{models.StatusSuspended, []models.RoleName{models.RoleTechnicalManager, models.RoleTechnicalAssistant}},
		{models.StatusResolved, []models.RoleName{models.RoleTechnicalManager, models.RoleTechnicalAssistant, models.RoleExternalMaintainer}},
	}

	for _, tc := range cases {
		allowedSet := make(map[models.RoleName]bool)
		for _, r := range tc.permitted {
			allowedSet[r] = true
		}
		for _, role := range models.AllRoles() {
			decision := Authorize(authWith(role), tc.target)
			if allowedSet[role] {
				assert.Equal(t, Allowed, decision, "%s into %s", role, tc.target)
			} else {
				assert.Equal(t, DeniedInsufficientRights, decision, "%s into %s", role, tc.target)
			}
		}
	}
}

func TestAuthorizeAnyHeldPositionSuffices(t *testing.T) {
	auth := authWith(models.RoleCitizen, models.RoleTechnicalAssistant)
	assert.Equal(t, Allowed, Authorize(auth, models.StatusInProgress))
}

func TestAuthorizeNoIdentity(t *testing.T) {
	assert.Equal(t, DeniedUnauthenticated, Authorize(nil, models.StatusAssigned))
	assert.Equal(t, DeniedUnauthenticated, Authorize(&models.AuthContext{}, models.StatusAssigned))
}

func TestAuthorizeNoPositions(t *testing.T) {
	auth := &models.AuthContext{UserID: "u1"}
	assert.Equal(t, DeniedInsufficientRights, Authorize(auth, models.StatusAssigned))
}

func TestPendingApprovalNotDirectlyRequestable(t *testing.T) {
	// No role may drive a report back into the initial state.
	for _, role := range models.AllRoles() {
		assert.Equal(t, DeniedInsufficientRights, Authorize(authWith(role), models.StatusPendingApproval))
	}
}
