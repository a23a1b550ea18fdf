package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
	"github.com/Tech-Nerdz/college-ERP-sub003/internal/repository"
	appErrors "github.com/Tech-Nerdz/college-ERP-sub003/pkg/errors"
)

type guardStub struct {
	incharge *models.Incharge
	faculty  *models.Faculty
	err      error
}

func (g *guardStub) ResolveIncharge(ctx context.Context, claims *models.JWTClaims) (*models.Incharge, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.incharge, nil
}

func (g *guardStub) ResolveFaculty(ctx context.Context, claims *models.JWTClaims) (*models.Faculty, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.faculty, nil
}

type slotRepoStub struct {
	conflictReaderStub

	slots map[string]*models.SlotAssignment

	createErr    error
	reassignErr  error
	created      *models.SlotAssignment
	notification *models.SlotNotification
	deletedID    string
	reassigned   *repository.ReassignParams
}

func newSlotRepoStub() *slotRepoStub {
	return &slotRepoStub{slots: make(map[string]*models.SlotAssignment)}
}

func (s *slotRepoStub) FindByID(ctx context.Context, id string) (*models.SlotAssignment, error) {
	if slot, ok := s.slots[id]; ok {
		copy := *slot
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *slotRepoStub) ListByTimetable(ctx context.Context, timetableID string) ([]models.SlotAssignment, error) {
	var result []models.SlotAssignment
	for _, slot := range s.slots {
		if slot.TimetableID == timetableID {
			result = append(result, *slot)
		}
	}
	return result, nil
}

func (s *slotRepoStub) ListByClass(ctx context.Context, timetableID, classID string) ([]models.SlotAssignment, error) {
	var result []models.SlotAssignment
	for _, slot := range s.slots {
		if slot.TimetableID == timetableID && slot.ClassID == classID {
			result = append(result, *slot)
		}
	}
	return result, nil
}

func (s *slotRepoStub) ListByFaculty(ctx context.Context, facultyID string) ([]models.SlotAssignment, error) {
	var result []models.SlotAssignment
	for _, slot := range s.slots {
		if slot.FacultyID == facultyID {
			result = append(result, *slot)
		}
	}
	return result, nil
}

func (s *slotRepoStub) CreateWithNotification(ctx context.Context, slot *models.SlotAssignment, notification *models.SlotNotification) error {
	if s.createErr != nil {
		return s.createErr
	}
	slot.ID = "slot-new"
	notification.ID = "notif-new"
	notification.SlotAssignmentID = slot.ID
	s.created = slot
	s.notification = notification
	s.slots[slot.ID] = slot
	return nil
}

func (s *slotRepoStub) DeleteWithNotifications(ctx context.Context, id string) error {
	if _, ok := s.slots[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.slots, id)
	s.deletedID = id
	return nil
}

func (s *slotRepoStub) Reassign(ctx context.Context, params repository.ReassignParams) error {
	if s.reassignErr != nil {
		return s.reassignErr
	}
	s.reassigned = &params
	return nil
}

type timetableStoreStub struct {
	timetables map[string]*models.Timetable
}

func (s *timetableStoreStub) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	if timetable, ok := s.timetables[id]; ok {
		copy := *timetable
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func newSlotServiceFixture() (*SlotAssignmentService, *slotRepoStub) {
	slots := newSlotRepoStub()
	timetables := &timetableStoreStub{timetables: map[string]*models.Timetable{
		"tt-1": {ID: "tt-1", DepartmentID: "dept-1", YearLabel: "2025-2026"},
		"tt-2": {ID: "tt-2", DepartmentID: "dept-2", YearLabel: "2025-2026"},
	}}
	faculty := &facultyStoreStub{records: map[string]*models.Faculty{
		"fac-1": {ID: "fac-1", DepartmentID: "dept-1", Active: true},
		"fac-2": {ID: "fac-2", DepartmentID: "dept-1", Active: true},
		"fac-x": {ID: "fac-x", DepartmentID: "dept-2", Active: true},
	}}
	guard := &guardStub{incharge: &models.Incharge{FacultyID: "fac-9", DepartmentID: "dept-1"}}
	checker := NewConflictChecker(slots)
	svc := NewSlotAssignmentService(slots, timetables, faculty, checker, guard, nil, nil)
	return svc, slots
}

func sampleProposeRequest() ProposeSlotRequest {
	return ProposeSlotRequest{
		TimetableID: "tt-1",
		ClassID:     "class-1",
		SubjectCode: "CS101",
		SubjectName: "Data Structures",
		FacultyID:   "fac-1",
		DayOfWeek:   models.DayMonday,
		StartTime:   "09:00",
		EndTime:     "10:00",
		Room:        "A-101",
	}
}

func TestSlotServiceProposeCreatesPendingPair(t *testing.T) {
	svc, slots := newSlotServiceFixture()

	result, err := svc.Propose(context.Background(), &models.JWTClaims{}, sampleProposeRequest())
	require.NoError(t, err)
	require.Equal(t, models.SlotStatusPendingApproval, result.Assignment.Status)
	require.Equal(t, "fac-9", result.Assignment.RequestedBy)
	require.Equal(t, models.NotificationStatusPending, result.Notification.Status)
	require.Equal(t, "fac-1", result.Notification.FacultyID)
	require.Equal(t, result.Assignment.ID, result.Notification.SlotAssignmentID)
	require.NotNil(t, slots.created)
}

func TestSlotServiceProposeRejectsDuplicate(t *testing.T) {
	svc, slots := newSlotServiceFixture()
	slots.duplicate = existingSlot("slot-1")

	_, err := svc.Propose(context.Background(), &models.JWTClaims{}, sampleProposeRequest())
	requireConflictKind(t, err, models.ConflictDuplicateAssignment)
	require.Nil(t, slots.created)
}

func TestSlotServiceProposeHidesForeignTimetable(t *testing.T) {
	svc, _ := newSlotServiceFixture()

	req := sampleProposeRequest()
	req.TimetableID = "tt-2"
	_, err := svc.Propose(context.Background(), &models.JWTClaims{}, req)
	requireErrorCode(t, err, appErrors.ErrNotFound.Code)
}

func TestSlotServiceProposeRejectsForeignFaculty(t *testing.T) {
	svc, _ := newSlotServiceFixture()

	req := sampleProposeRequest()
	req.FacultyID = "fac-x"
	_, err := svc.Propose(context.Background(), &models.JWTClaims{}, req)
	requireErrorCode(t, err, appErrors.ErrNotFound.Code)
}

func TestSlotServiceProposeValidatesTiming(t *testing.T) {
	svc, _ := newSlotServiceFixture()

	req := sampleProposeRequest()
	req.StartTime = "10:00"
	req.EndTime = "09:00"
	_, err := svc.Propose(context.Background(), &models.JWTClaims{}, req)
	requireErrorCode(t, err, appErrors.ErrValidation.Code)

	req = sampleProposeRequest()
	req.DayOfWeek = "SUNDAY"
	_, err = svc.Propose(context.Background(), &models.JWTClaims{}, req)
	requireErrorCode(t, err, appErrors.ErrValidation.Code)
}

func TestSlotServiceProposeMapsUniqueViolation(t *testing.T) {
	svc, slots := newSlotServiceFixture()
	slots.createErr = repository.ErrUniqueViolation

	_, err := svc.Propose(context.Background(), &models.JWTClaims{}, sampleProposeRequest())
	requireErrorCode(t, err, appErrors.ErrConflict.Code)
}

func TestSlotServiceRemove(t *testing.T) {
	svc, slots := newSlotServiceFixture()
	slots.slots["slot-1"] = &models.SlotAssignment{ID: "slot-1", TimetableID: "tt-1", FacultyID: "fac-1"}

	require.NoError(t, svc.Remove(context.Background(), &models.JWTClaims{}, "slot-1"))
	require.Equal(t, "slot-1", slots.deletedID)

	err := svc.Remove(context.Background(), &models.JWTClaims{}, "slot-1")
	requireErrorCode(t, err, appErrors.ErrNotFound.Code)
}

func TestSlotServiceRemoveHidesForeignSlot(t *testing.T) {
	svc, slots := newSlotServiceFixture()
	slots.slots["slot-2"] = &models.SlotAssignment{ID: "slot-2", TimetableID: "tt-2", FacultyID: "fac-x"}

	err := svc.Remove(context.Background(), &models.JWTClaims{}, "slot-2")
	requireErrorCode(t, err, appErrors.ErrNotFound.Code)
}

func TestSlotServiceReassignWithReason(t *testing.T) {
	svc, slots := newSlotServiceFixture()
	slots.slots["slot-1"] = &models.SlotAssignment{
		ID:          "slot-1",
		TimetableID: "tt-1",
		ClassID:     "class-1",
		SubjectCode: "CS101",
		SubjectName: "Data Structures",
		FacultyID:   "fac-1",
		DayOfWeek:   models.DayMonday,
		StartTime:   "09:00",
		EndTime:     "10:00",
		Room:        "A-101",
		Status:      models.SlotStatusInactive,
	}

	result, err := svc.Reassign(context.Background(), &models.JWTClaims{}, "slot-1", ReassignSlotRequest{
		NewFacultyID: "fac-2",
		Reason:       "original assignment declined",
	})
	require.NoError(t, err)
	require.Equal(t, "fac-2", result.Assignment.FacultyID)
	require.Equal(t, models.SlotStatusPendingApproval, result.Assignment.Status)

	require.NotNil(t, slots.reassigned)
	require.Equal(t, "slot-1", slots.reassigned.SlotID)
	alteration := slots.reassigned.Alteration
	require.NotNil(t, alteration)
	require.Equal(t, models.AlterationStatusApproved, alteration.Status)
	require.Equal(t, "fac-1", alteration.OldFacultyID)
	require.Equal(t, "fac-2", *alteration.NewFacultyID)
	require.Equal(t, "fac-9", *alteration.ApprovedBy)
}

func TestSlotServiceReassignWithoutReasonSkipsAlteration(t *testing.T) {
	svc, slots := newSlotServiceFixture()
	slots.slots["slot-1"] = &models.SlotAssignment{
		ID: "slot-1", TimetableID: "tt-1", ClassID: "class-1", SubjectCode: "CS101",
		FacultyID: "fac-1", DayOfWeek: models.DayMonday, StartTime: "09:00", EndTime: "10:00", Room: "A-101",
	}

	_, err := svc.Reassign(context.Background(), &models.JWTClaims{}, "slot-1", ReassignSlotRequest{NewFacultyID: "fac-2"})
	require.NoError(t, err)
	require.Nil(t, slots.reassigned.Alteration)
}

func TestSlotServiceReassignExcludesSelfFromProbes(t *testing.T) {
	svc, slots := newSlotServiceFixture()
	slots.slots["slot-1"] = &models.SlotAssignment{
		ID: "slot-1", TimetableID: "tt-1", ClassID: "class-1", SubjectCode: "CS101",
		FacultyID: "fac-1", DayOfWeek: models.DayMonday, StartTime: "09:00", EndTime: "10:00", Room: "A-101",
	}

	_, err := svc.Reassign(context.Background(), &models.JWTClaims{}, "slot-1", ReassignSlotRequest{NewFacultyID: "fac-2"})
	require.NoError(t, err)
	require.NotEmpty(t, slots.excludeIDs)
	for _, excludeID := range slots.excludeIDs {
		require.Equal(t, "slot-1", excludeID)
	}
}
