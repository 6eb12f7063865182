package models

import "time"

// RoleName identifies one of the seeded platform roles.
type RoleName string

const (
	RoleCitizen            RoleName = "CITIZEN"
	RoleAdministrator      RoleName = "ADMINISTRATOR"
	RolePublicRelations    RoleName = "PUBLIC_RELATIONS_OFFICER"
	RoleTechnicalManager   RoleName = "TECHNICAL_MANAGER"
	RoleTechnicalAssistant RoleName = "TECHNICAL_ASSISTANT"
	RoleExternalMaintainer RoleName = "EXTERNAL_MAINTAINER"
)

// DepartmentOrganization is the reserved department holding the
// non-technical roles (Citizen, Administrator).
const DepartmentOrganization = "Organization"

// AllRoles lists every seeded role name.
func AllRoles() []RoleName {
	return []RoleName{
		RoleCitizen,
		RoleAdministrator,
		RolePublicRelations,
		RoleTechnicalManager,
		RoleTechnicalAssistant,
		RoleExternalMaintainer,
	}
}

// IsStructuralRole reports whether the role is excluded from municipality
// staff listings. Citizen and Administrator are structural: they exist in
// the role table but are never assignable staff positions.
func IsStructuralRole(name RoleName) bool {
	return name == RoleCitizen || name == RoleAdministrator
}

// Role is seeded reference data; never deleted while referenced.
type Role struct {
	ID        string    `db:"id" json:"id"`
	Name      RoleName  `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Department groups technical staff; admin-managed, rarely mutated.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Position is a (department, role) pair, unique per pair. It is the unit
// of authorization: a staff account holds one or more positions, a citizen
// exactly one, permanently bound to the Organization department.
type Position struct {
	ID             string   `db:"id" json:"id"`
	DepartmentID   string   `db:"department_id" json:"department_id"`
	RoleID         string   `db:"role_id" json:"role_id"`
	DepartmentName string   `db:"department_name" json:"department_name"`
	RoleName       RoleName `db:"role_name" json:"role_name"`
}
