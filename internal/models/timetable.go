package models

import (
	"fmt"
	"time"
)

// Timetable is a department + academic-year container of weekly slot assignments.
type Timetable struct {
	ID           string    `db:"id" json:"id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	YearLabel    string    `db:"year_label" json:"year_label"`
	SessionStart time.Time `db:"session_start" json:"session_start"`
	SessionEnd   time.Time `db:"session_end" json:"session_end"`
	Published    bool      `db:"published" json:"published"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TimetableFilter describes query params for listing timetables.
type TimetableFilter struct {
	DepartmentID string
	YearLabel    string
	Published    *bool
	Page         int
	PageSize     int
}

// PendingApprovalsError is returned when publication is blocked by unresolved slots.
type PendingApprovalsError struct {
	TimetableID string `json:"timetable_id"`
	Count       int    `json:"count"`
}

// Error implements the error interface.
func (e *PendingApprovalsError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%d slot assignments still pending approval", e.Count)
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
