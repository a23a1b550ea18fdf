package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
	appErrors "github.com/Tech-Nerdz/college-ERP-sub003/pkg/errors"
)

type timetableRepo interface {
	Create(ctx context.Context, timetable *models.Timetable) error
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	Update(ctx context.Context, timetable *models.Timetable) error
	MarkPublished(ctx context.Context, id string) error
}

type pendingSlotCounter interface {
	CountPendingByTimetable(ctx context.Context, timetableID string) (int, error)
}

type alterationReader interface {
	ListByTimetable(ctx context.Context, timetableID string) ([]models.Alteration, error)
}

// CreateTimetableRequest describes the payload for creating a timetable.
type CreateTimetableRequest struct {
	YearLabel    string    `json:"year_label" validate:"required"`
	SessionStart time.Time `json:"session_start" validate:"required"`
	SessionEnd   time.Time `json:"session_end" validate:"required"`
}

// UpdateTimetableRequest edits the basic timetable fields.
type UpdateTimetableRequest struct {
	YearLabel    string    `json:"year_label" validate:"required"`
	SessionStart time.Time `json:"session_start" validate:"required"`
	SessionEnd   time.Time `json:"session_end" validate:"required"`
}

// TimetableService manages timetable containers and gates their publication.
type TimetableService struct {
	timetables  timetableRepo
	slots       pendingSlotCounter
	alterations alterationReader
	guard       IdentityGuard
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTimetableService instantiates the service.
func NewTimetableService(
	timetables timetableRepo,
	slots pendingSlotCounter,
	alterations alterationReader,
	guard IdentityGuard,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		timetables:  timetables,
		slots:       slots,
		alterations: alterations,
		guard:       guard,
		validator:   validate,
		logger:      logger,
	}
}

// Create stores a new unpublished timetable in the incharge's department.
func (s *TimetableService) Create(ctx context.Context, claims *models.JWTClaims, req CreateTimetableRequest) (*models.Timetable, error) {
	incharge, err := s.guard.ResolveIncharge(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if !req.SessionEnd.After(req.SessionStart) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session end must be after session start")
	}

	timetable := &models.Timetable{
		DepartmentID: incharge.DepartmentID,
		YearLabel:    req.YearLabel,
		SessionStart: req.SessionStart,
		SessionEnd:   req.SessionEnd,
		Published:    false,
		CreatedBy:    incharge.FacultyID,
	}
	if err := s.timetables.Create(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
	}
	return timetable, nil
}

// Update edits the basic fields of an unpublished-or-published timetable.
// The published flag itself is owned by Publish.
func (s *TimetableService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpdateTimetableRequest) (*models.Timetable, error) {
	incharge, err := s.guard.ResolveIncharge(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}

	timetable, err := s.loadOwned(ctx, id, incharge)
	if err != nil {
		return nil, err
	}

	timetable.YearLabel = req.YearLabel
	timetable.SessionStart = req.SessionStart
	timetable.SessionEnd = req.SessionEnd
	if err := s.timetables.Update(ctx, timetable); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable")
	}
	return timetable, nil
}

// Get returns a timetable visible to the caller's department.
func (s *TimetableService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Timetable, error) {
	faculty, err := s.guard.ResolveFaculty(ctx, claims)
	if err != nil {
		return nil, err
	}
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if timetable.DepartmentID != faculty.DepartmentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	return timetable, nil
}

// List returns the caller's department timetables with pagination metadata.
func (s *TimetableService) List(ctx context.Context, claims *models.JWTClaims, filter models.TimetableFilter) ([]models.Timetable, *models.Pagination, error) {
	faculty, err := s.guard.ResolveFaculty(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	filter.DepartmentID = faculty.DepartmentID

	timetables, total, err := s.timetables.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return timetables, pagination, nil
}

// Publish marks the timetable final. Publication is blocked while any slot
// under it is still pending approval; there is no un-publish.
func (s *TimetableService) Publish(ctx context.Context, claims *models.JWTClaims, id string) (*models.Timetable, error) {
	incharge, err := s.guard.ResolveIncharge(ctx, claims)
	if err != nil {
		return nil, err
	}

	timetable, err := s.loadOwned(ctx, id, incharge)
	if err != nil {
		return nil, err
	}
	if timetable.Published {
		return timetable, nil
	}

	pending, err := s.slots.CountPendingByTimetable(ctx, timetable.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending slots")
	}
	if pending > 0 {
		detail := &models.PendingApprovalsError{TimetableID: timetable.ID, Count: pending}
		return nil, appErrors.Wrap(detail, appErrors.ErrPendingApprovals.Code, appErrors.ErrPendingApprovals.Status, detail.Error())
	}

	if err := s.timetables.MarkPublished(ctx, timetable.ID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
	}
	timetable.Published = true
	return timetable, nil
}

// Alterations returns the audit trail recorded under a department timetable.
func (s *TimetableService) Alterations(ctx context.Context, claims *models.JWTClaims, id string) ([]models.Alteration, error) {
	if _, err := s.Get(ctx, claims, id); err != nil {
		return nil, err
	}
	alterations, err := s.alterations.ListByTimetable(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list alterations")
	}
	return alterations, nil
}

func (s *TimetableService) loadOwned(ctx context.Context, id string, incharge *models.Incharge) (*models.Timetable, error) {
	timetable, err := s.timetables.FindByID(ctx, id)
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
