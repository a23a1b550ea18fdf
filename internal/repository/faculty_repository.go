package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
)

// FacultyRepository exposes the read-side of faculty records. Profile CRUD
// is owned by the main administration service.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs the repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// FindByID loads a faculty member by id.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	const query = `SELECT id, department_id, full_name, email, is_timetable_incharge, active, created_at FROM faculty WHERE id = $1`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// ListByDepartment returns active faculty members of a department.
func (r *FacultyRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.Faculty, error) {
	const query = `SELECT id, department_id, full_name, email, is_timetable_incharge, active, created_at FROM faculty WHERE department_id = $1 AND active = TRUE ORDER BY full_name ASC`
	var members []models.Faculty
	if err := r.db.SelectContext(ctx, &members, query, departmentID); err != nil {
		return nil, fmt.Errorf("list faculty by department: %w", err)
	}
	return members, nil
}
