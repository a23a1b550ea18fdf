package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
	"github.com/Tech-Nerdz/college-ERP-sub003/internal/repository"
	appErrors "github.com/Tech-Nerdz/college-ERP-sub003/pkg/errors"
)

type notificationRepo interface {
	FindByID(ctx context.Context, id string) (*models.SlotNotification, error)
	ListByFaculty(ctx context.Context, filter models.NotificationFilter) ([]models.SlotNotification, error)
	Respond(ctx context.Context, params repository.RespondParams) error
	MarkRead(ctx context.Context, id, facultyID string) error
	MarkAllRead(ctx context.Context, facultyID string) error
	Summary(ctx context.Context, facultyID string) (*models.NotificationSummary, error)
}

type slotStatusReader interface {
	FindByID(ctx context.Context, id string) (*models.SlotAssignment, error)
}

type alterationWriter interface {
	Create(ctx context.Context, alteration *models.Alteration) error
	RejectPendingBySlot(ctx context.Context, slotID string) error
}

// SummaryCache caches derived notification summaries.
type SummaryCache interface {
	Get(ctx context.Context, facultyID string) (*models.NotificationSummary, bool)
	Set(ctx context.Context, facultyID string, summary *models.NotificationSummary)
	Invalidate(ctx context.Context, facultyID string)
}

// RedisSummaryCache backs SummaryCache with Redis.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSummaryCache constructs the cache.
func NewRedisSummaryCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSummaryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSummaryCache{client: client, ttl: ttl, logger: logger}
}

func summaryKey(facultyID string) string {
	return "timetable:notification-summary:" + facultyID
}

// Get returns a cached summary when present. Cache failures read as misses.
func (c *RedisSummaryCache) Get(ctx context.Context, facultyID string) (*models.NotificationSummary, bool) {
	raw, err := c.client.Get(ctx, summaryKey(facultyID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("summary cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var summary models.NotificationSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// Set stores the summary with the configured TTL. Failures are logged only.
func (c *RedisSummaryCache) Set(ctx context.Context, facultyID string, summary *models.NotificationSummary) {
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, summaryKey(facultyID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("summary cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached summary after a workflow write.
func (c *RedisSummaryCache) Invalidate(ctx context.Context, facultyID string) {
	if err := c.client.Del(ctx, summaryKey(facultyID)).Err(); err != nil {
		c.logger.Warn("summary cache invalidation failed", zap.Error(err))
	}
}

// RejectNotificationRequest carries the optional rejection reason.
type RejectNotificationRequest struct {
	Reason string `json:"reason"`
}

// RespondResult pairs the records after a confirmation response.
type RespondResult struct {
	Notification *models.SlotNotification `json:"notification"`
	Assignment   *models.SlotAssignment   `json:"assignment"`
}

// NotificationService drives the per-faculty confirm/deny workflow layered
// on top of slot assignments.
type NotificationService struct {
	notifications notificationRepo
	slots         slotStatusReader
	timetables    timetableReader
	alterations   alterationWriter
	guard         IdentityGuard
	cache         SummaryCache
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewNotificationService instantiates the service. The cache may be nil.
func NewNotificationService(
	notifications notificationRepo,
	slots slotStatusReader,
	timetables timetableReader,
	alterations alterationWriter,
	guard IdentityGuard,
	cache SummaryCache,
	validate *validator.Validate,
	logger *zap.Logger,
) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: notifications,
		slots:         slots,
		timetables:    timetables,
		alterations:   alterations,
		guard:         guard,
		cache:         cache,
		validator:     validate,
		logger:        logger,
	}
}

// Accept confirms a pending notification: the notification becomes ACCEPTED
// and the slot assignment becomes ACTIVE in one atomic unit.
func (s *NotificationService) Accept(ctx context.Context, claims *models.JWTClaims, notificationID string) (*RespondResult, error) {
	return s.respond(ctx, claims, notificationID, models.NotificationStatusAccepted, models.SlotStatusActive, nil)
}

// Reject declines a pending notification: the notification becomes REJECTED
// and the slot assignment becomes INACTIVE, freeing it for reassignment.
// The audit alteration is written best-effort after the transition commits.
func (s *NotificationService) Reject(ctx context.Context, claims *models.JWTClaims, notificationID string, req RejectNotificationRequest) (*RespondResult, error) {
	var reason *string
	if req.Reason != "" {
		reason = &req.Reason
	}
	result, err := s.respond(ctx, claims, notificationID, models.NotificationStatusRejected, models.SlotStatusInactive, reason)
	if err != nil {
		return nil, err
	}
	s.recordRejectionAudit(ctx, result, req.Reason)
	return result, nil
}

func (s *NotificationService) respond(
	ctx context.Context,
	claims *models.JWTClaims,
	notificationID string,
	status models.NotificationStatus,
	slotStatus models.SlotStatus,
	reason *string,
) (*RespondResult, error) {
	faculty, err := s.guard.ResolveFaculty(ctx, claims)
	if err != nil {
		return nil, err
	}

	notification, err := s.notifications.FindByID(ctx, notificationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	// Another faculty member's notification reads as absent.
	if notification.FacultyID != faculty.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	if notification.Status != models.NotificationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrAlreadyResolved, "notification already resolved")
	}

	slot, err := s.slots.FindByID(ctx, notification.SlotAssignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot assignment no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot assignment")
	}

	now := time.Now().UTC()
	err = s.notifications.Respond(ctx, repository.RespondParams{
		NotificationID:  notification.ID,
		FacultyID:       faculty.ID,
		Status:          status,
		SlotID:          slot.ID,
		SlotStatus:      slotStatus,
		RejectionReason: reason,
		RespondedAt:     now,
	})
	if err != nil {
		// Zero rows on the status guard: a concurrent response won the race.
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrAlreadyResolved, "notification already resolved")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record response")
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, faculty.ID)
	}

	notification.Status = status
	notification.Read = true
	notification.RejectionReason = reason
	notification.RespondedAt = &now
	slot.Status = slotStatus
	slot.UpdatedAt = now
	return &RespondResult{Notification: notification, Assignment: slot}, nil
}

// recordRejectionAudit writes the alteration trail for a rejection. The
// rejection itself has already committed; a failure here is logged and
// swallowed rather than rolled back.
func (s *NotificationService) recordRejectionAudit(ctx context.Context, result *RespondResult, reason string) {
	slot := result.Assignment
	if err := s.alterations.RejectPendingBySlot(ctx, slot.ID); err != nil {
		s.logger.Warn("failed to reject pending alterations", zap.String("slot_id", slot.ID), zap.Error(err))
	}

	timetable, err := s.timetables.FindByID(ctx, slot.TimetableID)
	if err != nil {
		s.logger.Warn("failed to load timetable for rejection audit", zap.String("slot_id", slot.ID), zap.Error(err))
		return
	}
	if reason == "" {
		reason = "slot assignment rejected by faculty"
	}
	alteration := &models.Alteration{
		DepartmentID:     timetable.DepartmentID,
		TimetableID:      timetable.ID,
		SlotAssignmentID: slot.ID,
		OldFacultyID:     result.Notification.FacultyID,
		Reason:           reason,
		Status:           models.AlterationStatusRejected,
	}
	if err := s.alterations.Create(ctx, alteration); err != nil {
		s.logger.Warn("failed to write rejection alteration", zap.String("slot_id", slot.ID), zap.Error(err))
	}
}

// List returns the caller's notifications.
func (s *NotificationService) List(ctx context.Context, claims *models.JWTClaims, filter models.NotificationFilter) ([]models.SlotNotification, error) {
	faculty, err := s.guard.ResolveFaculty(ctx, claims)
	if err != nil {
		return nil, err
	}
	filter.FacultyID = faculty.ID
	notifications, err := s.notifications.ListByFaculty(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flags one of the caller's notifications as read. Idempotent.
func (s *NotificationService) MarkRead(ctx context.Context, claims *models.JWTClaims, notificationID string) error {
	faculty, err := s.guard.ResolveFaculty(ctx, claims)
	if err != nil {
		return err
	}
	if err := s.notifications.MarkRead(ctx, notificationID, faculty.ID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, faculty.ID)
	}
	return nil
}

// MarkAllRead flags all of the caller's notifications as read. Idempotent.
func (s *NotificationService) MarkAllRead(ctx context.Context, claims *models.JWTClaims) error {
	faculty, err := s.guard.ResolveFaculty(ctx, claims)
	if err != nil {
		return err
	}
	if err := s.notifications.MarkAllRead(ctx, faculty.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, faculty.ID)
	}
	return nil
}

// Summary returns the caller's pending/accepted/rejected/unread counts,
// served from cache when fresh.
func (s *NotificationService) Summary(ctx context.Context, claims *models.JWTClaims) (*models.NotificationSummary, error) {
	faculty, err := s.guard.ResolveFaculty(ctx, claims)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, faculty.ID); ok {
			return cached, nil
		}
	}
	summary, err := s.notifications.Summary(ctx, faculty.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification summary")
	}
	if s.cache != nil {
		s.cache.Set(ctx, faculty.ID, summary)
	}
	return summary, nil
}
