package models

import "time"

// NotificationStatus captures the single-shot confirmation state machine.
// PENDING transitions exactly once to ACCEPTED, REJECTED or SUPERSEDED and
// is immutable afterwards.
type NotificationStatus string

const (
	NotificationStatusPending    NotificationStatus = "PENDING"
	NotificationStatusAccepted   NotificationStatus = "ACCEPTED"
	NotificationStatusRejected   NotificationStatus = "REJECTED"
	NotificationStatusSuperseded NotificationStatus = "SUPERSEDED"
)

// SlotNotification is a confirmation request addressed to one faculty member
// about one slot assignment. Subject and class info are denormalised so the
// notification stays readable after the slot changes.
type SlotNotification struct {
	ID               string             `db:"id" json:"id"`
	SlotAssignmentID string             `db:"slot_assignment_id" json:"slot_assignment_id"`
	FacultyID        string             `db:"faculty_id" json:"faculty_id"`
	RequestedBy      string             `db:"requested_by" json:"requested_by"`
	SubjectCode      string             `db:"subject_code" json:"subject_code"`
	SubjectName      string             `db:"subject_name" json:"subject_name"`
	ClassID          string             `db:"class_id" json:"class_id"`
	Status           NotificationStatus `db:"status" json:"status"`
	Read             bool               `db:"is_read" json:"read"`
	RejectionReason  *string            `db:"rejection_reason" json:"rejection_reason,omitempty"`
	RespondedAt      *time.Time         `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updated_at"`
}

// NotificationSummary aggregates a faculty member's notification counts.
type NotificationSummary struct {
	Pending  int `db:"pending" json:"pending"`
	Accepted int `db:"accepted" json:"accepted"`
	Rejected int `db:"rejected" json:"rejected"`
	Unread   int `db:"unread" json:"unread"`
}

// NotificationFilter constrains listing queries.
type NotificationFilter struct {
	FacultyID string
	Status    []NotificationStatus
	Limit     int
	Offset    int
}
