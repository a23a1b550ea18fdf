package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
	"github.com/Tech-Nerdz/college-ERP-sub003/internal/repository"
	appErrors "github.com/Tech-Nerdz/college-ERP-sub003/pkg/errors"
)

type notificationStoreStub struct {
	notifications map[string]*models.SlotNotification
	respondErr    error
	responded     *repository.RespondParams
	readIDs       []string
	allReadFor    string
	summary       *models.NotificationSummary
	summaryCalls  int
}

func newNotificationStoreStub() *notificationStoreStub {
	return &notificationStoreStub{notifications: make(map[string]*models.SlotNotification)}
}

func (s *notificationStoreStub) FindByID(ctx context.Context, id string) (*models.SlotNotification, error) {
	if notification, ok := s.notifications[id]; ok {
		copy := *notification
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *notificationStoreStub) ListByFaculty(ctx context.Context, filter models.NotificationFilter) ([]models.SlotNotification, error) {
	var result []models.SlotNotification
	for _, notification := range s.notifications {
		if notification.FacultyID == filter.FacultyID {
			result = append(result, *notification)
		}
	}
	return result, nil
}

func (s *notificationStoreStub) Respond(ctx context.Context, params repository.RespondParams) error {
	if s.respondErr != nil {
		return s.respondErr
	}
	s.responded = &params
	return nil
}

func (s *notificationStoreStub) MarkRead(ctx context.Context, id, facultyID string) error {
	if _, ok := s.notifications[id]; !ok {
		return sql.ErrNoRows
	}
	s.readIDs = append(s.readIDs, id)
	return nil
}

func (s *notificationStoreStub) MarkAllRead(ctx context.Context, facultyID string) error {
	s.allReadFor = facultyID
	return nil
}

func (s *notificationStoreStub) Summary(ctx context.Context, facultyID string) (*models.NotificationSummary, error) {
	s.summaryCalls++
	if s.summary != nil {
		return s.summary, nil
	}
	return &models.NotificationSummary{}, nil
}

type alterationStub struct {
	created       []*models.Alteration
	rejectedSlots []string
	createErr     error
	rejectErr     error
}

func (s *alterationStub) Create(ctx context.Context, alteration *models.Alteration) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, alteration)
	return nil
}

func (s *alterationStub) RejectPendingBySlot(ctx context.Context, slotID string) error {
	if s.rejectErr != nil {
		return s.rejectErr
	}
	s.rejectedSlots = append(s.rejectedSlots, slotID)
	return nil
}

type cacheStub struct {
	entries     map[string]*models.NotificationSummary
	invalidated []string
}

func newCacheStub() *cacheStub {
	return &cacheStub{entries: make(map[string]*models.NotificationSummary)}
}

func (s *cacheStub) Get(ctx context.Context, facultyID string) (*models.NotificationSummary, bool) {
	summary, ok := s.entries[facultyID]
	return summary, ok
}

func (s *cacheStub) Set(ctx context.Context, facultyID string, summary *models.NotificationSummary) {
	s.entries[facultyID] = summary
}

func (s *cacheStub) Invalidate(ctx context.Context, facultyID string) {
	delete(s.entries, facultyID)
	s.invalidated = append(s.invalidated, facultyID)
}

type notificationFixture struct {
	svc           *NotificationService
	notifications *notificationStoreStub
	slots         *slotRepoStub
	alterations   *alterationStub
	cache         *cacheStub
}

func newNotificationFixture() *notificationFixture {
	notifications := newNotificationStoreStub()
	slots := newSlotRepoStub()
	alterations := &alterationStub{}
	cache := newCacheStub()
	timetables := &timetableStoreStub{timetables: map[string]*models.Timetable{
		"tt-1": {ID: "tt-1", DepartmentID: "dept-1", YearLabel: "2025-2026"},
	}}
	guard := &guardStub{faculty: &models.Faculty{ID: "fac-1", DepartmentID: "dept-1", Active: true}}
	svc := NewNotificationService(notifications, slots, timetables, alterations, guard, cache, nil, nil)
	return &notificationFixture{svc: svc, notifications: notifications, slots: slots, alterations: alterations, cache: cache}
}

func (f *notificationFixture) seedPending(notificationID, facultyID string) {
	f.notifications.notifications[notificationID] = &models.SlotNotification{
		ID:               notificationID,
		SlotAssignmentID: "slot-1",
		FacultyID:        facultyID,
		RequestedBy:      "fac-9",
		SubjectCode:      "CS101",
		Status:           models.NotificationStatusPending,
	}
	f.slots.slots["slot-1"] = &models.SlotAssignment{
		ID:          "slot-1",
		TimetableID: "tt-1",
		FacultyID:   facultyID,
		Status:      models.SlotStatusPendingApproval,
	}
}

func TestNotificationServiceAccept(t *testing.T) {
	f := newNotificationFixture()
	f.seedPending("notif-1", "fac-1")

	result, err := f.svc.Accept(context.Background(), &models.JWTClaims{}, "notif-1")
	require.NoError(t, err)
	require.Equal(t, models.NotificationStatusAccepted, result.Notification.Status)
	require.True(t, result.Notification.Read)
	require.Equal(t, models.SlotStatusActive, result.Assignment.Status)

	require.NotNil(t, f.notifications.responded)
	require.Equal(t, models.SlotStatusActive, f.notifications.responded.SlotStatus)
	require.Contains(t, f.cache.invalidated, "fac-1")
	require.Empty(t, f.alterations.created)
}

func TestNotificationServiceAcceptHidesForeignNotification(t *testing.T) {
	f := newNotificationFixture()
	f.seedPending("notif-1", "fac-2")

	_, err := f.svc.Accept(context.Background(), &models.JWTClaims{}, "notif-1")
	requireErrorCode(t, err, appErrors.ErrNotFound.Code)
}

func TestNotificationServiceAcceptAlreadyResolved(t *testing.T) {
	f := newNotificationFixture()
	f.seedPending("notif-1", "fac-1")
	f.notifications.notifications["notif-1"].Status = models.NotificationStatusAccepted

	_, err := f.svc.Accept(context.Background(), &models.JWTClaims{}, "notif-1")
	requireErrorCode(t, err, appErrors.ErrAlreadyResolved.Code)
}

func TestNotificationServiceAcceptLostRace(t *testing.T) {
	f := newNotificationFixture()
	f.seedPending("notif-1", "fac-1")
	f.notifications.respondErr = sql.ErrNoRows

	_, err := f.svc.Accept(context.Background(), &models.JWTClaims{}, "notif-1")
	requireErrorCode(t, err, appErrors.ErrAlreadyResolved.Code)
}

func TestNotificationServiceAcceptSlotGone(t *testing.T) {
	f := newNotificationFixture()
	f.seedPending("notif-1", "fac-1")
	delete(f.slots.slots, "slot-1")

	_, err := f.svc.Accept(context.Background(), &models.JWTClaims{}, "notif-1")
	requireErrorCode(t, err, appErrors.ErrNotFound.Code)
}

func TestNotificationServiceRejectWritesAudit(t *testing.T) {
	f := newNotificationFixture()
	f.seedPending("notif-1", "fac-1")

	result, err := f.svc.Reject(context.Background(), &models.JWTClaims{}, "notif-1", RejectNotificationRequest{Reason: "overloaded this term"})
	require.NoError(t, err)
	require.Equal(t, models.NotificationStatusRejected, result.Notification.Status)
	require.Equal(t, "overloaded this term", *result.Notification.RejectionReason)
	require.Equal(t, models.SlotStatusInactive, result.Assignment.Status)

	require.Equal(t, []string{"slot-1"}, f.alterations.rejectedSlots)
	require.Len(t, f.alterations.created, 1)
	alteration := f.alterations.created[0]
	require.Equal(t, models.AlterationStatusRejected, alteration.Status)
	require.Equal(t, "fac-1", alteration.OldFacultyID)
	require.Equal(t, "overloaded this term", alteration.Reason)
	require.Equal(t, "dept-1", alteration.DepartmentID)
}

func TestNotificationServiceRejectDefaultReason(t *testing.T) {
	f := newNotificationFixture()
	f.seedPending("notif-1", "fac-1")

	_, err := f.svc.Reject(context.Background(), &models.JWTClaims{}, "notif-1", RejectNotificationRequest{})
	require.NoError(t, err)
	require.Len(t, f.alterations.created, 1)
	require.Equal(t, "slot assignment rejected by faculty", f.alterations.created[0].Reason)
}

func TestNotificationServiceRejectAuditFailureIsSwallowed(t *testing.T) {
	f := newNotificationFixture()
	f.seedPending("notif-1", "fac-1")
	f.alterations.createErr = errors.New("audit store down")
	f.alterations.rejectErr = errors.New("audit store down")

	result, err := f.svc.Reject(context.Background(), &models.JWTClaims{}, "notif-1", RejectNotificationRequest{Reason: "conflict"})
	require.NoError(t, err)
	require.Equal(t, models.NotificationStatusRejected, result.Notification.Status)
}

func TestNotificationServiceSummaryUsesCache(t *testing.T) {
	f := newNotificationFixture()
	f.cache.entries["fac-1"] = &models.NotificationSummary{Pending: 7}

	summary, err := f.svc.Summary(context.Background(), &models.JWTClaims{})
	require.NoError(t, err)
	require.Equal(t, 7, summary.Pending)
	require.Zero(t, f.notifications.summaryCalls)
}

func TestNotificationServiceSummaryFillsCacheOnMiss(t *testing.T) {
	f := newNotificationFixture()
	f.notifications.summary = &models.NotificationSummary{Pending: 2, Unread: 1}

	summary, err := f.svc.Summary(context.Background(), &models.JWTClaims{})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Pending)
	require.Equal(t, 1, f.notifications.summaryCalls)
	require.Equal(t, summary, f.cache.entries["fac-1"])
}

func TestNotificationServiceMarkReadInvalidatesCache(t *testing.T) {
	f := newNotificationFixture()
	f.seedPending("notif-1", "fac-1")
	f.cache.entries["fac-1"] = &models.NotificationSummary{Unread: 1}

	require.NoError(t, f.svc.MarkRead(context.Background(), &models.JWTClaims{}, "notif-1"))
	require.Contains(t, f.cache.invalidated, "fac-1")

	err := f.svc.MarkRead(context.Background(), &models.JWTClaims{}, "ghost")
	requireErrorCode(t, err, appErrors.ErrNotFound.Code)
}

func TestNotificationServiceMarkAllRead(t *testing.T) {
	f := newNotificationFixture()

	require.NoError(t, f.svc.MarkAllRead(context.Background(), &models.JWTClaims{}))
	require.Equal(t, "fac-1", f.notifications.allReadFor)
	require.Contains(t, f.cache.invalidated, "fac-1")
}
