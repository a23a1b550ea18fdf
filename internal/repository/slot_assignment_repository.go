package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
)

// ErrUniqueViolation is returned when the store-level uniqueness backstop
// rejects a concurrent writer that slipped past the application checks.
var ErrUniqueViolation = errors.New("unique constraint violation")

const slotColumns = `id, timetable_id, class_id, subject_code, subject_name, faculty_id, day_of_week, start_time, end_time, room, status, requested_by, created_at, updated_at`

// SlotAssignmentRepository persists weekly slot assignments.
type SlotAssignmentRepository struct {
	db *sqlx.DB
}

// NewSlotAssignmentRepository constructs the repository.
func NewSlotAssignmentRepository(db *sqlx.DB) *SlotAssignmentRepository {
	return &SlotAssignmentRepository{db: db}
}

// FindByID loads a slot assignment by id.
func (r *SlotAssignmentRepository) FindByID(ctx context.Context, id string) (*models.SlotAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_assignments WHERE id = $1`, slotColumns)
	var slot models.SlotAssignment
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListByTimetable returns all slots under a timetable ordered by day/time.
func (r *SlotAssignmentRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.SlotAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_assignments WHERE timetable_id = $1 ORDER BY day_of_week ASC, start_time ASC`, slotColumns)
	var slots []models.SlotAssignment
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list slots by timetable: %w", err)
	}
	return slots, nil
}

// ListByFaculty returns slots assigned to a faculty member.
func (r *SlotAssignmentRepository) ListByFaculty(ctx context.Context, facultyID string) ([]models.SlotAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_assignments WHERE faculty_id = $1 ORDER BY day_of_week ASC, start_time ASC`, slotColumns)
	var slots []models.SlotAssignment
	if err := r.db.SelectContext(ctx, &slots, query, facultyID); err != nil {
		return nil, fmt.Errorf("list slots by faculty: %w", err)
	}
	return slots, nil
}

// ListByClass returns slots for one class grid across a timetable.
func (r *SlotAssignmentRepository) ListByClass(ctx context.Context, timetableID, classID string) ([]models.SlotAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_assignments WHERE timetable_id = $1 AND class_id = $2 ORDER BY day_of_week ASC, start_time ASC`, slotColumns)
	var slots []models.SlotAssignment
	if err := r.db.SelectContext(ctx, &slots, query, timetableID, classID); err != nil {
		return nil, fmt.Errorf("list slots by class: %w", err)
	}
	return slots, nil
}

// FindDuplicate probes for an assignment with the same timetable/class/subject/faculty
// tuple still pending or active. Returns nil when no such slot exists.
func (r *SlotAssignmentRepository) FindDuplicate(ctx context.Context, timetableID, classID, subjectCode, facultyID, excludeID string) (*models.SlotAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_assignments
WHERE timetable_id = $1 AND class_id = $2 AND subject_code = $3 AND faculty_id = $4
  AND status IN ('PENDING_APPROVAL', 'ACTIVE') AND id <> $5 LIMIT 1`, slotColumns)
	return r.probe(ctx, query, timetableID, classID, subjectCode, facultyID, excludeID)
}

// FindFacultyTimeClash probes for another pending/active slot booking the same
// faculty member at an identical day/start/end within the same academic year.
func (r *SlotAssignmentRepository) FindFacultyTimeClash(ctx context.Context, facultyID string, day models.DayOfWeek, startTime, endTime, yearLabel, excludeID string) (*models.SlotAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM (
  SELECT sa.* FROM slot_assignments sa
  JOIN timetables t ON t.id = sa.timetable_id
  WHERE sa.faculty_id = $1 AND sa.day_of_week = $2 AND sa.start_time = $3 AND sa.end_time = $4
    AND t.year_label = $5 AND sa.status IN ('PENDING_APPROVAL', 'ACTIVE') AND sa.id <> $6
  LIMIT 1
) sub`, slotColumns)
	return r.probe(ctx, query, facultyID, day, startTime, endTime, yearLabel, excludeID)
}

// FindRoomTimeClash probes for another pending/active slot occupying the same
// room at an identical day/start/end for the class grid.
func (r *SlotAssignmentRepository) FindRoomTimeClash(ctx context.Context, classID string, day models.DayOfWeek, startTime, endTime, room, excludeID string) (*models.SlotAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_assignments
WHERE class_id = $1 AND day_of_week = $2 AND start_time = $3 AND end_time = $4 AND room = $5
  AND status IN ('PENDING_APPROVAL', 'ACTIVE') AND id <> $6 LIMIT 1`, slotColumns)
	return r.probe(ctx, query, classID, day, startTime, endTime, room, excludeID)
}

func (r *SlotAssignmentRepository) probe(ctx context.Context, query string, args ...interface{}) (*models.SlotAssignment, error) {
	var slot models.SlotAssignment
	if err := r.db.GetContext(ctx, &slot, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("probe slot conflict: %w", err)
	}
	return &slot, nil
}

// CountPendingByTimetable returns the number of unresolved proposals under a timetable.
func (r *SlotAssignmentRepository) CountPendingByTimetable(ctx context.Context, timetableID string) (int, error) {
	const query = `SELECT COUNT(*) FROM slot_assignments WHERE timetable_id = $1 AND status = 'PENDING_APPROVAL'`
	var count int
	if err := r.db.GetContext(ctx, &count, query, timetableID); err != nil {
		return 0, fmt.Errorf("count pending slots: %w", err)
	}
	return count, nil
}

// CreateWithNotification inserts the slot assignment and its confirmation
// notification as one atomic unit. Either both rows exist afterwards or none.
func (r *SlotAssignmentRepository) CreateWithNotification(ctx context.Context, slot *models.SlotAssignment, notification *models.SlotNotification) error {
	now := time.Now().UTC()
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	slot.CreatedAt = now
	slot.UpdatedAt = now
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	notification.SlotAssignmentID = slot.ID
	notification.CreatedAt = now
	notification.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create slot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO slot_assignments
	(id, timetable_id, class_id, subject_code, subject_name, faculty_id, day_of_week, start_time, end_time, room, status, requested_by, created_at, updated_at)
	VALUES (:id, :timetable_id, :class_id, :subject_code, :subject_name, :faculty_id, :day_of_week, :start_time, :end_time, :room, :status, :requested_by, :created_at, :updated_at)`, slot); err != nil {
		return mapUniqueViolation(err, "create slot assignment")
	}

	if _, err = tx.NamedExecContext(ctx, insertNotificationQuery, notification); err != nil {
		return fmt.Errorf("create slot notification: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create slot: %w", err)
	}
	return nil
}

// DeleteWithNotifications removes a slot assignment and every notification
// referencing it. Not reversible.
func (r *SlotAssignmentRepository) DeleteWithNotifications(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete slot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM slot_notifications WHERE slot_assignment_id = $1`, id); err != nil {
		return fmt.Errorf("delete slot notifications: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM slot_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted slot rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete slot: %w", err)
	}
	return nil
}

// ReassignParams groups the writes applied when a slot is re-targeted.
type ReassignParams struct {
	SlotID       string
	NewFacultyID string
	Notification *models.SlotNotification
	Alteration   *models.Alteration
}

// Reassign re-targets a slot to a new faculty member in one transaction:
// the slot returns to PENDING_APPROVAL, any still-pending notification for
// the displaced faculty is superseded, a fresh notification is created for
// the new faculty, and the optional pre-approved alteration is recorded.
func (r *SlotAssignmentRepository) Reassign(ctx context.Context, params ReassignParams) error {
	now := time.Now().UTC()
	notification := params.Notification
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	notification.SlotAssignmentID = params.SlotID
	notification.CreatedAt = now
	notification.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reassign slot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE slot_assignments SET faculty_id = $1, status = 'PENDING_APPROVAL', updated_at = $2 WHERE id = $3`,
		params.NewFacultyID, now, params.SlotID); err != nil {
		return mapUniqueViolation(err, "reassign slot")
	}

	// A late accept on the displaced faculty's notification must not
	// resurrect the old booking.
	if _, err = tx.ExecContext(ctx, `UPDATE slot_notifications SET status = 'SUPERSEDED', updated_at = $1 WHERE slot_assignment_id = $2 AND status = 'PENDING'`,
		now, params.SlotID); err != nil {
		return fmt.Errorf("supersede old notification: %w", err)
	}

	if _, err = tx.NamedExecContext(ctx, insertNotificationQuery, notification); err != nil {
		return fmt.Errorf("create reassignment notification: %w", err)
	}

	if params.Alteration != nil {
		alteration := params.Alteration
		if alteration.ID == "" {
			alteration.ID = uuid.NewString()
		}
		alteration.CreatedAt = now
		alteration.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, insertAlterationQuery, alteration); err != nil {
			return fmt.Errorf("create reassignment alteration: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reassign slot: %w", err)
	}
	return nil
}

func mapUniqueViolation(err error, action string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%s: %w", action, ErrUniqueViolation)
	}
	return fmt.Errorf("%s: %w", action, err)
}
