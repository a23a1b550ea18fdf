package models

import "time"

// AlterationStatus captures the audit record lifecycle.
type AlterationStatus string

const (
	AlterationStatusPending  AlterationStatus = "PENDING"
	AlterationStatusApproved AlterationStatus = "APPROVED"
	AlterationStatusRejected AlterationStatus = "REJECTED"
)

// Alteration is an append-only audit record of a faculty reassignment or a
// rejection event. It is never updated after creation except for the single
// pending -> rejected flip raised by the notification workflow.
type Alteration struct {
	ID               string           `db:"id" json:"id"`
	DepartmentID     string           `db:"department_id" json:"department_id"`
	TimetableID      string           `db:"timetable_id" json:"timetable_id"`
	SlotAssignmentID string           `db:"slot_assignment_id" json:"slot_assignment_id"`
	OldFacultyID     string           `db:"old_faculty_id" json:"old_faculty_id"`
	NewFacultyID     *string          `db:"new_faculty_id" json:"new_faculty_id,omitempty"`
	Reason           string           `db:"reason" json:"reason"`
	Status           AlterationStatus `db:"status" json:"status"`
	ApprovedBy       *string          `db:"approved_by" json:"approved_by,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}
