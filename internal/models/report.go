package models

import (
	"time"

	"github.com/lib/pq"
)

// ReportStatus enumerates the report lifecycle states.
type ReportStatus string

const (
	StatusPendingApproval ReportStatus = "PENDING_APPROVAL"
	StatusAssigned        ReportStatus = "ASSIGNED"
	StatusInProgress      ReportStatus = "IN_PROGRESS"
	StatusSuspended       ReportStatus = "SUSPENDED"
	StatusResolved        ReportStatus = "RESOLVED"
	StatusRejected        ReportStatus = "REJECTED"
)

// AllStatuses lists every lifecycle state.
func AllStatuses() []ReportStatus {
	return []ReportStatus{
		StatusPendingApproval,
		StatusAssigned,
		StatusInProgress,
		StatusSuspended,
		StatusResolved,
		StatusRejected,
	}
}

// IsTerminal reports whether no further transition is permitted.
func (s ReportStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// IsValid reports whether s is a known lifecycle state.
func (s ReportStatus) IsValid() bool {
	switch s {
	case StatusPendingApproval, StatusAssigned, StatusInProgress, StatusSuspended, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Category classifies a report's subject matter. The enumeration is closed
// and its declaration order is the canonical ordering used by listings.
type Category string

const (
	CategoryWaterSupply           Category = "WATER_SUPPLY"
	CategoryLighting              Category = "LIGHTING"
	CategoryRoads                 Category = "ROADS"
	CategoryWaste                 Category = "WASTE"
	CategoryGreenAreas            Category = "GREEN_AREAS"
	CategoryArchitecturalBarriers Category = "ARCHITECTURAL_BARRIERS"
	CategorySewer                 Category = "SEWER"
	CategoryRoadSigns             Category = "ROAD_SIGNS"
	CategoryOther                 Category = "OTHER"
)

// AllCategories returns the categories in canonical order.
func AllCategories() []Category {
	return []Category{
		CategoryWaterSupply,
		CategoryLighting,
		CategoryRoads,
		CategoryWaste,
		CategoryGreenAreas,
		CategoryArchitecturalBarriers,
		CategorySewer,
		CategoryRoadSigns,
		CategoryOther,
	}
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryRank returns the canonical position of c, used for stable
// ordering of mapping listings. Unknown categories sort last.
func CategoryRank(c Category) int {
	for i, known := range AllCategories() {
		if c == known {
			return i
		}
	}
	return len(AllCategories())
}

// Report is the central entity. Status and assignment fields are owned
// exclusively by the transition operation; reports are never physically
// deleted so resolved and rejected ones remain for audit.
type Report struct {
	ID              string         `db:"id" json:"id"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	Category        Category       `db:"category" json:"category"`
	Status          ReportStatus   `db:"status" json:"status"`
	ReporterID      string         `db:"reporter_id" json:"reporter_id"`
	AssigneeID      *string        `db:"assignee_id" json:"assignee_id,omitempty"`
	CompanyID       *string        `db:"company_id" json:"company_id,omitempty"`
	ResponsibleRole *RoleName      `db:"responsible_role" json:"responsible_role,omitempty"`
	RejectionReason *string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	Latitude        float64        `db:"latitude" json:"latitude"`
	Longitude       float64        `db:"longitude" json:"longitude"`
	Address         string         `db:"address" json:"address"`
	Photos          pq.StringArray `db:"photos" json:"photos"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// ReportFilter captures listing criteria for reports.
type ReportFilter struct {
	Status          *ReportStatus
	Category        *Category
	ResponsibleRole *RoleName
	ReporterID      string
	AssigneeID      string
	Page            int
	PageSize        int
}

// ReportStatusUpdate describes an attempted transition write. FromStatus
// is the status the caller observed; the write only lands when the row
// still carries it, which is what serializes concurrent transitions.
type ReportStatusUpdate struct {
	ID              string
	FromStatus      ReportStatus
	ToStatus        ReportStatus
	AssigneeID      *string
	CompanyID       *string
	RejectionReason *string
}

// CategoryRoleMapping routes one category to the role accountable for it.
// At most one active row exists per category.
type CategoryRoleMapping struct {
	ID       string   `db:"id" json:"id"`
	Category Category `db:"category" json:"category"`
	RoleID   string   `db:"role_id" json:"role_id"`
	RoleName RoleName `db:"role_name" json:"role_name"`
}
