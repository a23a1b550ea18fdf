package service

import (
	"context"
	"fmt"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
	appErrors "github.com/Tech-Nerdz/college-ERP-sub003/pkg/errors"
)

type slotConflictReader interface {
	FindDuplicate(ctx context.Context, timetableID, classID, subjectCode, facultyID, excludeID string) (*models.SlotAssignment, error)
	FindFacultyTimeClash(ctx context.Context, facultyID string, day models.DayOfWeek, startTime, endTime, yearLabel, excludeID string) (*models.SlotAssignment, error)
	FindRoomTimeClash(ctx context.Context, classID string, day models.DayOfWeek, startTime, endTime, room, excludeID string) (*models.SlotAssignment, error)
}

// ConflictProbe carries the tuple a proposed slot would occupy.
type ConflictProbe struct {
	TimetableID string
	ClassID     string
	SubjectCode string
	FacultyID   string
	DayOfWeek   models.DayOfWeek
	StartTime   string
	EndTime     string
	Room        string
	YearLabel   string
	ExcludeID   string
}

// ConflictChecker evaluates the three booking invariants against existing
// slots before a write is allowed. Matching is equality-based: two slots
// clash only when their day/start/end tuples are identical, not merely
// overlapping. No side effects.
type ConflictChecker struct {
	slots slotConflictReader
}

// NewConflictChecker constructs the checker.
func NewConflictChecker(slots slotConflictReader) *ConflictChecker {
	return &ConflictChecker{slots: slots}
}

// Check runs duplicate, faculty-time and room-time probes in that fixed
// order and returns the first violation as a typed conflict error.
func (c *ConflictChecker) Check(ctx context.Context, probe ConflictProbe) error {
	if err := c.checkDuplicate(ctx, probe); err != nil {
		return err
	}
	if err := c.checkFacultyTime(ctx, probe); err != nil {
		return err
	}
	return c.checkRoomTime(ctx, probe)
}

// CheckReassign re-runs only the duplicate and faculty-time probes for a
// slot being re-targeted. Class, day, time and room are unchanged, so the
// room invariant cannot be newly violated.
func (c *ConflictChecker) CheckReassign(ctx context.Context, probe ConflictProbe) error {
	if err := c.checkDuplicate(ctx, probe); err != nil {
		return err
	}
	return c.checkFacultyTime(ctx, probe)
}

func (c *ConflictChecker) checkDuplicate(ctx context.Context, probe ConflictProbe) error {
	existing, err := c.slots.FindDuplicate(ctx, probe.TimetableID, probe.ClassID, probe.SubjectCode, probe.FacultyID, probe.ExcludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check duplicate assignment")
	}
	if existing != nil {
		return wrapSlotConflict(models.ConflictDuplicateAssignment, "faculty already assigned this class and subject", existing)
	}
	return nil
}

func (c *ConflictChecker) checkFacultyTime(ctx context.Context, probe ConflictProbe) error {
	existing, err := c.slots.FindFacultyTimeClash(ctx, probe.FacultyID, probe.DayOfWeek, probe.StartTime, probe.EndTime, probe.YearLabel, probe.ExcludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty availability")
	}
	if existing != nil {
		return wrapSlotConflict(models.ConflictFacultyTime, "faculty already booked for this time", existing)
	}
	return nil
}

func (c *ConflictChecker) checkRoomTime(ctx context.Context, probe ConflictProbe) error {
	existing, err := c.slots.FindRoomTimeClash(ctx, probe.ClassID, probe.DayOfWeek, probe.StartTime, probe.EndTime, probe.Room, probe.ExcludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room availability")
	}
	if existing != nil {
		return wrapSlotConflict(models.ConflictRoomTime, "room already booked for this time", existing)
	}
	return nil
}

func wrapSlotConflict(kind models.SlotConflictKind, message string, existing *models.SlotAssignment) error {
	conflict := models.SlotConflict{
		AssignmentID: existing.ID,
		TimetableID:  existing.TimetableID,
		ClassID:      existing.ClassID,
		SubjectCode:  existing.SubjectCode,
		FacultyID:    existing.FacultyID,
		DayOfWeek:    existing.DayOfWeek,
		StartTime:    existing.StartTime,
		EndTime:      existing.EndTime,
		Room:         existing.Room,
		Kind:         kind,
	}
	domainErr := &models.SlotConflictError{Kind: kind, Message: message, Conflict: conflict}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("slot conflict: %s", message))
}
