package models

import "time"

// DayOfWeek enumerates the teaching days of the weekly grid.
type DayOfWeek string

const (
	DayMonday    DayOfWeek = "MONDAY"
	DayTuesday   DayOfWeek = "TUESDAY"
	DayWednesday DayOfWeek = "WEDNESDAY"
	DayThursday  DayOfWeek = "THURSDAY"
	DayFriday    DayOfWeek = "FRIDAY"
	DaySaturday  DayOfWeek = "SATURDAY"
)

// ValidDayOfWeek reports whether the value is one of the six teaching days.
func ValidDayOfWeek(day DayOfWeek) bool {
	switch day {
	case DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday:
		return true
	}
	return false
}

// SlotStatus captures the lifecycle of a slot assignment.
type SlotStatus string

const (
	SlotStatusPendingApproval SlotStatus = "PENDING_APPROVAL"
	SlotStatusActive          SlotStatus = "ACTIVE"
	SlotStatusInactive        SlotStatus = "INACTIVE"
)

// SlotAssignment is one weekly {class, subject, faculty} occurrence at a fixed
// day/time/room within a timetable. Subject code and name are denormalised at
// creation time.
type SlotAssignment struct {
	ID          string     `db:"id" json:"id"`
	TimetableID string     `db:"timetable_id" json:"timetable_id"`
	ClassID     string     `db:"class_id" json:"class_id"`
	SubjectCode string     `db:"subject_code" json:"subject_code"`
	SubjectName string     `db:"subject_name" json:"subject_name"`
	FacultyID   string     `db:"faculty_id" json:"faculty_id"`
	DayOfWeek   DayOfWeek  `db:"day_of_week" json:"day_of_week"`
	StartTime   string     `db:"start_time" json:"start_time"`
	EndTime     string     `db:"end_time" json:"end_time"`
	Room        string     `db:"room" json:"room"`
	Status      SlotStatus `db:"status" json:"status"`
	RequestedBy string     `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// SlotConflictKind names the invariant a proposed slot would violate.
type SlotConflictKind string

const (
	ConflictDuplicateAssignment SlotConflictKind = "DUPLICATE_ASSIGNMENT"
	ConflictFacultyTime         SlotConflictKind = "FACULTY_TIME"
	ConflictRoomTime            SlotConflictKind = "ROOM_TIME"
)

// SlotConflict describes the existing assignment that blocks a write.
type SlotConflict struct {
	AssignmentID string           `json:"assignment_id"`
	TimetableID  string           `json:"timetable_id"`
	ClassID      string           `json:"class_id"`
	SubjectCode  string           `json:"subject_code"`
	FacultyID    string           `json:"faculty_id"`
	DayOfWeek    DayOfWeek        `json:"day_of_week"`
	StartTime    string           `json:"start_time"`
	EndTime      string           `json:"end_time"`
	Room         string           `json:"room"`
	Kind         SlotConflictKind `json:"kind"`
}

// SlotConflictError is returned when a proposal collides with an existing slot.
type SlotConflictError struct {
	Kind     SlotConflictKind `json:"kind"`
	Message  string           `json:"message"`
	Conflict SlotConflict     `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *SlotConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
