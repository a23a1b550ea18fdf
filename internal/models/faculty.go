package models

import "time"

// Faculty is the read-side view of a faculty member used for slot targeting
// and incharge resolution. Profile CRUD lives in another service.
type Faculty struct {
	ID                  string    `db:"id" json:"id"`
	DepartmentID        string    `db:"department_id" json:"department_id"`
	FullName            string    `db:"full_name" json:"full_name"`
	Email               string    `db:"email" json:"email"`
	IsTimetableIncharge bool      `db:"is_timetable_incharge" json:"is_timetable_incharge"`
	Active              bool      `db:"active" json:"active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}
