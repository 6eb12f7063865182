package workflow

import (
	"github.com/civitas-app/civitas-api/internal/models"
)

// permittedRoles maps each requestable target status to the roles allowed
// to drive a report into it. Department is deliberately part of the input
// (via the positions in AuthContext) but not a discriminator here; it
// scopes which reports staff see, not whether a transition is legal.
var permittedRoles = map[models.ReportStatus][]models.RoleName{
	models.StatusAssigned:   {models.RolePublicRelations},
	models.StatusRejected:   {models.RolePublicRelations},
	models.StatusInProgress: {models.RoleTechnicalManager, models.RoleTechnicalAssistant},
	models.StatusSuspended:  {models.RoleTechnicalManager, models.RoleTechnicalAssistant},
	// External maintainers may close reports directly. Known trust
	// boundary: a non-employee actor holds a state-mutating capability.
	models.StatusResolved: {models.RoleTechnicalManager, models.RoleTechnicalAssistant, models.RoleExternalMaintainer},
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Allowed means at least one held position carries a permitted role.
	Allowed Decision = iota
	// DeniedUnauthenticated means no authenticated identity was supplied.
	DeniedUnauthenticated
	// DeniedInsufficientRights means the identity is authenticated but no
	// held position is in the permitted set for the target status.
	DeniedInsufficientRights
)

// Authorize decides whether the acting user may drive a report into target.
// The two denial kinds stay distinguishable so callers can surface
// Unauthorized and InsufficientRights separately.
func Authorize(auth *models.AuthContext, target models.ReportStatus) Decision {
	if auth == nil || auth.UserID == "" {
		return DeniedUnauthenticated
	}
	for _, role := range permittedRoles[target] {
		if auth.HasRole(role) {
			return Allowed
		}
	}
	return DeniedInsufficientRights
}

// PermittedRoles returns the roles allowed to reach target, for
// administrative inspection.
func PermittedRoles(target models.ReportStatus) []models.RoleName {
	roles := permittedRoles[target]
	out := make([]models.RoleName, len(roles))
	copy(out, roles)
	return out
}
