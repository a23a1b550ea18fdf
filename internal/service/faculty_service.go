package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
	appErrors "github.com/Tech-Nerdz/college-ERP-sub003/pkg/errors"
)

type facultyLister interface {
	facultyReader
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Faculty, error)
}

// FacultyService exposes the department roster used to target slot proposals.
type FacultyService struct {
	faculty facultyLister
	guard   IdentityGuard
	logger  *zap.Logger
}

// NewFacultyService instantiates the service.
func NewFacultyService(faculty facultyLister, guard IdentityGuard, logger *zap.Logger) *FacultyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{faculty: faculty, guard: guard, logger: logger}
}

// ListDepartment returns the active faculty of the caller's department.
func (s *FacultyService) ListDepartment(ctx context.Context, claims *models.JWTClaims) ([]models.Faculty, error) {
	caller, err := s.guard.ResolveFaculty(ctx, claims)
	if err != nil {
		return nil, err
	}
	members, err := s.faculty.ListByDepartment(ctx, caller.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}
	return members, nil
}
