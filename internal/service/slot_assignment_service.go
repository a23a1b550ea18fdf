package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
	"github.com/Tech-Nerdz/college-ERP-sub003/internal/repository"
	appErrors "github.com/Tech-Nerdz/college-ERP-sub003/pkg/errors"
)

type slotAssignmentRepo interface {
	slotConflictReader
	FindByID(ctx context.Context, id string) (*models.SlotAssignment, error)
	ListByTimetable(ctx context.Context, timetableID string) ([]models.SlotAssignment, error)
	ListByClass(ctx context.Context, timetableID, classID string) ([]models.SlotAssignment, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]models.SlotAssignment, error)
	CreateWithNotification(ctx context.Context, slot *models.SlotAssignment, notification *models.SlotNotification) error
	DeleteWithNotifications(ctx context.Context, id string) error
	Reassign(ctx context.Context, params repository.ReassignParams) error
}

type timetableReader interface {
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
}

// ProposeSlotRequest describes a slot proposal payload.
type ProposeSlotRequest struct {
	TimetableID string           `json:"timetable_id" validate:"required"`
	ClassID     string           `json:"class_id" validate:"required"`
	SubjectCode string           `json:"subject_code" validate:"required"`
	SubjectName string           `json:"subject_name" validate:"required"`
	FacultyID   string           `json:"faculty_id" validate:"required"`
	DayOfWeek   models.DayOfWeek `json:"day_of_week" validate:"required"`
	StartTime   string           `json:"start_time" validate:"required"`
	EndTime     string           `json:"end_time" validate:"required"`
	Room        string           `json:"room" validate:"required"`
}

// ReassignSlotRequest re-targets an existing slot to another faculty member.
type ReassignSlotRequest struct {
	NewFacultyID string `json:"new_faculty_id" validate:"required"`
	Reason       string `json:"reason"`
}

// ProposeSlotResult pairs the created records.
type ProposeSlotResult struct {
	Assignment   *models.SlotAssignment   `json:"assignment"`
	Notification *models.SlotNotification `json:"notification"`
}

// SlotAssignmentService coordinates the proposal, removal and reassignment
// of weekly slots.
type SlotAssignmentService struct {
	slots      slotAssignmentRepo
	timetables timetableReader
	faculty    facultyReader
	checker    *ConflictChecker
	guard      IdentityGuard
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewSlotAssignmentService instantiates the service.
func NewSlotAssignmentService(
	slots slotAssignmentRepo,
	timetables timetableReader,
	faculty facultyReader,
	checker *ConflictChecker,
	guard IdentityGuard,
	validate *validator.Validate,
	logger *zap.Logger,
) *SlotAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotAssignmentService{
		slots:      slots,
		timetables: timetables,
		faculty:    faculty,
		checker:    checker,
		guard:      guard,
		validator:  validate,
		logger:     logger,
	}
}

// Propose creates a slot assignment in PENDING_APPROVAL together with the
// pending confirmation notification for the target faculty member, or
// changes nothing at all.
func (s *SlotAssignmentService) Propose(ctx context.Context, claims *models.JWTClaims, req ProposeSlotRequest) (*ProposeSlotResult, error) {
	incharge, err := s.guard.ResolveIncharge(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot proposal payload")
	}
	if err := validateSlotTiming(req.DayOfWeek, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	timetable, err := s.loadOwnedTimetable(ctx, req.TimetableID, incharge)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTargetFaculty(ctx, req.FacultyID, timetable.DepartmentID); err != nil {
		return nil, err
	}

	probe := ConflictProbe{
		TimetableID: timetable.ID,
		ClassID:     req.ClassID,
		SubjectCode: req.SubjectCode,
		FacultyID:   req.FacultyID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Room:        req.Room,
		YearLabel:   timetable.YearLabel,
	}
	if err := s.checker.Check(ctx, probe); err != nil {
		return nil, err
	}

	slot := &models.SlotAssignment{
		TimetableID: timetable.ID,
		ClassID:     req.ClassID,
		SubjectCode: req.SubjectCode,
		SubjectName: req.SubjectName,
		FacultyID:   req.FacultyID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Room:        req.Room,
		Status:      models.SlotStatusPendingApproval,
		RequestedBy: incharge.FacultyID,
	}
	notification := &models.SlotNotification{
		FacultyID:   req.FacultyID,
		RequestedBy: incharge.FacultyID,
		SubjectCode: req.SubjectCode,
		SubjectName: req.SubjectName,
		ClassID:     req.ClassID,
		Status:      models.NotificationStatusPending,
	}

	if err := s.slots.CreateWithNotification(ctx, slot, notification); err != nil {
		// The partial unique indexes are the hard backstop for concurrent
		// proposals that both passed the check above.
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "slot already booked by a concurrent proposal")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot assignment")
	}
	return &ProposeSlotResult{Assignment: slot, Notification: notification}, nil
}

// Remove deletes a slot assignment and its notifications. Not reversible.
func (s *SlotAssignmentService) Remove(ctx context.Context, claims *models.JWTClaims, assignmentID string) error {
	incharge, err := s.guard.ResolveIncharge(ctx, claims)
	if err != nil {
		return err
	}

	slot, err := s.loadOwnedSlot(ctx, assignmentID, incharge)
	if err != nil {
		return err
	}

	if err := s.slots.DeleteWithNotifications(ctx, slot.ID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "slot assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot assignment")
	}
	return nil
}

// Reassign re-targets an existing slot to a new faculty member, re-running
// the duplicate and faculty-time checks and re-driving the confirmation
// workflow. A reason makes the alteration record authoritative immediately:
// an incharge-initiated reassignment is considered pre-approved and does not
// wait for the new faculty's response.
func (s *SlotAssignmentService) Reassign(ctx context.Context, claims *models.JWTClaims, assignmentID string, req ReassignSlotRequest) (*ProposeSlotResult, error) {
	incharge, err := s.guard.ResolveIncharge(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassignment payload")
	}

	slot, err := s.loadOwnedSlot(ctx, assignmentID, incharge)
	if err != nil {
		return nil, err
	}
	timetable, err := s.timetables.FindByID(ctx, slot.TimetableID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if err := s.ensureTargetFaculty(ctx, req.NewFacultyID, timetable.DepartmentID); err != nil {
		return nil, err
	}

	probe := ConflictProbe{
		TimetableID: slot.TimetableID,
		ClassID:     slot.ClassID,
		SubjectCode: slot.SubjectCode,
		FacultyID:   req.NewFacultyID,
		DayOfWeek:   slot.DayOfWeek,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
		Room:        slot.Room,
		YearLabel:   timetable.YearLabel,
		ExcludeID:   slot.ID,
	}
	if err := s.checker.CheckReassign(ctx, probe); err != nil {
		return nil, err
	}

	notification := &models.SlotNotification{
		FacultyID:   req.NewFacultyID,
		RequestedBy: incharge.FacultyID,
		SubjectCode: slot.SubjectCode,
		SubjectName: slot.SubjectName,
		ClassID:     slot.ClassID,
		Status:      models.NotificationStatusPending,
	}

	params := repository.ReassignParams{
		SlotID:       slot.ID,
		NewFacultyID: req.NewFacultyID,
		Notification: notification,
	}
	if req.Reason != "" {
		newFacultyID := req.NewFacultyID
		approvedBy := incharge.FacultyID
		params.Alteration = &models.Alteration{
			DepartmentID:     timetable.DepartmentID,
			TimetableID:      timetable.ID,
			SlotAssignmentID: slot.ID,
			OldFacultyID:     slot.FacultyID,
			NewFacultyID:     &newFacultyID,
			Reason:           req.Reason,
			Status:           models.AlterationStatusApproved,
			ApprovedBy:       &approvedBy,
		}
	}

	if err := s.slots.Reassign(ctx, params); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "slot already booked by a concurrent proposal")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign slot")
	}

	slot.FacultyID = req.NewFacultyID
	slot.Status = models.SlotStatusPendingApproval
	slot.UpdatedAt = time.Now().UTC()
	return &ProposeSlotResult{Assignment: slot, Notification: notification}, nil
}

// ListByTimetable returns slots under a timetable.
func (s *SlotAssignmentService) ListByTimetable(ctx context.Context, timetableID string) ([]models.SlotAssignment, error) {
	slots, err := s.slots.ListByTimetable(ctx, timetableID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	return slots, nil
}

// ListByClass returns one class grid within a timetable.
func (s *SlotAssignmentService) ListByClass(ctx context.Context, timetableID, classID string) ([]models.SlotAssignment, error) {
	slots, err := s.slots.ListByClass(ctx, timetableID, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class slots")
	}
	return slots, nil
}

// ListByFaculty returns slots assigned to a faculty member.
func (s *SlotAssignmentService) ListByFaculty(ctx context.Context, facultyID string) ([]models.SlotAssignment, error) {
	slots, err := s.slots.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty slots")
	}
	return slots, nil
}

// loadOwnedTimetable loads a timetable and hides it behind not-found when it
// belongs to another department.
func (s *SlotAssignmentService) loadOwnedTimetable(ctx context.Context, timetableID string, incharge *models.Incharge) (*models.Timetable, error) {
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if timetable.DepartmentID != incharge.DepartmentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	return timetable, nil
}

func (s *SlotAssignmentService) loadOwnedSlot(ctx context.Context, assignmentID string, incharge *models.Incharge) (*models.SlotAssignment, error) {
	slot, err := s.slots.FindByID(ctx, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot assignment")
	}
	if _, err := s.loadOwnedTimetable(ctx, slot.TimetableID, incharge); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrNotFound.Code {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot assignment not found")
		}
		return nil, err
	}
	return slot, nil
}

func (s *SlotAssignmentService) ensureTargetFaculty(ctx context.Context, facultyID, departmentID string) error {
	target, err := s.faculty.FindByID(ctx, facultyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "faculty not found in department")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	if !target.Active || target.DepartmentID != departmentID {
		return appErrors.Clone(appErrors.ErrNotFound, "faculty not found in department")
	}
	return nil
}

func validateSlotTiming(day models.DayOfWeek, startTime, endTime string) error {
	if !models.ValidDayOfWeek(day) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid day of week")
	}
	start, err := time.Parse("15:04", startTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "malformed start time")
	}
	end, err := time.Parse("15:04", endTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "malformed end time")
	}
	if !end.After(start) {
		return appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	return nil
}
