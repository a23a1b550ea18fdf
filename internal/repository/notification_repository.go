package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
)

const notificationColumns = `id, slot_assignment_id, faculty_id, requested_by, subject_code, subject_name, class_id, status, is_read, rejection_reason, responded_at, created_at, updated_at`

const insertNotificationQuery = `INSERT INTO slot_notifications
	(id, slot_assignment_id, faculty_id, requested_by, subject_code, subject_name, class_id, status, is_read, rejection_reason, responded_at, created_at, updated_at)
	VALUES (:id, :slot_assignment_id, :faculty_id, :requested_by, :subject_code, :subject_name, :class_id, :status, :is_read, :rejection_reason, :responded_at, :created_at, :updated_at)`

// NotificationRepository persists slot confirmation notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// FindByID loads a notification by id.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.SlotNotification, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_notifications WHERE id = $1`, notificationColumns)
	var notification models.SlotNotification
	if err := r.db.GetContext(ctx, &notification, query, id); err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListByFaculty returns notifications addressed to a faculty member, newest first.
func (r *NotificationRepository) ListByFaculty(ctx context.Context, filter models.NotificationFilter) ([]models.SlotNotification, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM slot_notifications WHERE faculty_id = $1`, notificationColumns))
	args = append(args, filter.FacultyID)

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		builder.WriteString(fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ",")))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var notifications []models.SlotNotification
	if err := r.db.SelectContext(ctx, &notifications, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// RespondParams groups the paired writes of a confirmation response.
type RespondParams struct {
	NotificationID  string
	FacultyID       string
	Status          models.NotificationStatus
	SlotID          string
	SlotStatus      models.SlotStatus
	RejectionReason *string
	RespondedAt     time.Time
}

// Respond applies the single-shot notification transition together with the
// paired slot status flip in one transaction. The status guard in the WHERE
// clause makes a second response observe zero rows; callers map that to an
// already-resolved error.
func (r *NotificationRepository) Respond(ctx context.Context, params RespondParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin notification response: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `UPDATE slot_notifications
SET status = $1, is_read = TRUE, rejection_reason = $2, responded_at = $3, updated_at = $3
WHERE id = $4 AND faculty_id = $5 AND status = 'PENDING'`,
		params.Status, params.RejectionReason, params.RespondedAt, params.NotificationID, params.FacultyID)
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check notification update rows: %w", err)
	}
	if rows == 0 {
		err = sql.ErrNoRows
		return err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE slot_assignments SET status = $1, updated_at = $2 WHERE id = $3`,
		params.SlotStatus, params.RespondedAt, params.SlotID); err != nil {
		return fmt.Errorf("update slot status: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit notification response: %w", err)
	}
	return nil
}

// MarkRead flags one notification as read. Idempotent.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, facultyID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE slot_notifications SET is_read = TRUE, updated_at = $1 WHERE id = $2 AND faculty_id = $3`,
		time.Now().UTC(), id, facultyID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check mark read rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead flags every notification for the faculty member as read. Idempotent.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, facultyID string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE slot_notifications SET is_read = TRUE, updated_at = $1 WHERE faculty_id = $2 AND is_read = FALSE`,
		time.Now().UTC(), facultyID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Summary aggregates notification counts for a faculty member in one query.
func (r *NotificationRepository) Summary(ctx context.Context, facultyID string) (*models.NotificationSummary, error) {
	const query = `SELECT
  COUNT(*) FILTER (WHERE status = 'PENDING')  AS pending,
  COUNT(*) FILTER (WHERE status = 'ACCEPTED') AS accepted,
  COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected,
  COUNT(*) FILTER (WHERE is_read = FALSE)     AS unread
FROM slot_notifications WHERE faculty_id = $1`
	var summary models.NotificationSummary
	if err := r.db.GetContext(ctx, &summary, query, facultyID); err != nil {
		return nil, fmt.Errorf("notification summary: %w", err)
	}
	return &summary, nil
}
