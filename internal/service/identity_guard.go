package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
	appErrors "github.com/Tech-Nerdz/college-ERP-sub003/pkg/errors"
)

// IdentityGuard resolves the caller's faculty identity and asserts the
// capability a route requires. The core services never branch on raw claim
// shapes; everything downstream sees a canonical identity.
type IdentityGuard interface {
	ResolveIncharge(ctx context.Context, claims *models.JWTClaims) (*models.Incharge, error)
	ResolveFaculty(ctx context.Context, claims *models.JWTClaims) (*models.Faculty, error)
}

type facultyReader interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

// DBIdentityGuard resolves identities against the faculty read-side.
type DBIdentityGuard struct {
	faculty facultyReader
	logger  *zap.Logger
}

// NewDBIdentityGuard constructs the guard.
func NewDBIdentityGuard(faculty facultyReader, logger *zap.Logger) *DBIdentityGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBIdentityGuard{faculty: faculty, logger: logger}
}

// ResolveFaculty normalises the claim aliases into one faculty id and loads
// the active record behind it.
func (g *DBIdentityGuard) ResolveFaculty(ctx context.Context, claims *models.JWTClaims) (*models.Faculty, error) {
	id := normalizeFacultyID(claims)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no faculty identity")
	}

	faculty, err := g.faculty.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown faculty identity")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve faculty")
	}
	if !faculty.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "faculty account inactive")
	}
	return faculty, nil
}

// ResolveIncharge additionally asserts the timetable-incharge capability for
// the faculty member's department.
func (g *DBIdentityGuard) ResolveIncharge(ctx context.Context, claims *models.JWTClaims) (*models.Incharge, error) {
	faculty, err := g.ResolveFaculty(ctx, claims)
	if err != nil {
		return nil, err
	}

	if !faculty.IsTimetableIncharge && claims.Role != models.RoleIncharge && claims.Role != models.RoleAdmin {
		g.logger.Debug("incharge check failed", zap.String("faculty_id", faculty.ID))
		return nil, appErrors.Clone(appErrors.ErrForbidden, "caller is not a timetable incharge")
	}

	return &models.Incharge{FacultyID: faculty.ID, DepartmentID: faculty.DepartmentID}, nil
}

// normalizeFacultyID collapses the equivalent "who is calling" claim shapes
// into a single value: the faculty_id claim wins, then user_id, then the
// registered subject.
func normalizeFacultyID(claims *models.JWTClaims) string {
	if claims == nil {
		return ""
	}
	if claims.FacultyID != "" {
		return claims.FacultyID
	}
	if claims.UserID != "" {
		return claims.UserID
	}
	return claims.Subject
}
