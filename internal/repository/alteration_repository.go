package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
)

const insertAlterationQuery = `INSERT INTO alterations
	(id, department_id, timetable_id, slot_assignment_id, old_faculty_id, new_faculty_id, reason, status, approved_by, created_at, updated_at)
	VALUES (:id, :department_id, :timetable_id, :slot_assignment_id, :old_faculty_id, :new_faculty_id, :reason, :status, :approved_by, :created_at, :updated_at)`

// AlterationRepository persists the append-only reassignment/rejection audit trail.
type AlterationRepository struct {
	db *sqlx.DB
}

// NewAlterationRepository constructs the repository.
func NewAlterationRepository(db *sqlx.DB) *AlterationRepository {
	return &AlterationRepository{db: db}
}

// Create inserts a new alteration record.
func (r *AlterationRepository) Create(ctx context.Context, alteration *models.Alteration) error {
	if alteration.ID == "" {
		alteration.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if alteration.CreatedAt.IsZero() {
		alteration.CreatedAt = now
	}
	alteration.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, insertAlterationQuery, alteration); err != nil {
		return fmt.Errorf("create alteration: %w", err)
	}
	return nil
}

// RejectPendingBySlot flips any still-pending alteration for the slot to
// REJECTED. This is the only post-creation update the audit trail permits.
func (r *AlterationRepository) RejectPendingBySlot(ctx context.Context, slotID string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE alterations SET status = 'REJECTED', updated_at = $1 WHERE slot_assignment_id = $2 AND status = 'PENDING'`,
		time.Now().UTC(), slotID); err != nil {
		return fmt.Errorf("reject pending alterations: %w", err)
	}
	return nil
}

// ListByTimetable returns alterations recorded under a timetable, newest first.
func (r *AlterationRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.Alteration, error) {
	const query = `SELECT id, department_id, timetable_id, slot_assignment_id, old_faculty_id, new_faculty_id, reason, status, approved_by, created_at, updated_at
FROM alterations WHERE timetable_id = $1 ORDER BY created_at DESC`
	var alterations []models.Alteration
	if err := r.db.SelectContext(ctx, &alterations, query, timetableID); err != nil {
		return nil, fmt.Errorf("list alterations: %w", err)
	}
	return alterations, nil
}
