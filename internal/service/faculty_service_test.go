package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
	appErrors "github.com/Tech-Nerdz/college-ERP-sub003/pkg/errors"
)

type facultyListerStub struct {
	facultyStoreStub
}

func (s *facultyListerStub) ListByDepartment(ctx context.Context, departmentID string) ([]models.Faculty, error) {
	var members []models.Faculty
	for _, faculty := range s.records {
		if faculty.DepartmentID == departmentID && faculty.Active {
			members = append(members, *faculty)
		}
	}
	return members, nil
}

func TestFacultyServiceListDepartment(t *testing.T) {
	store := &facultyListerStub{facultyStoreStub{records: map[string]*models.Faculty{
		"fac-1": {ID: "fac-1", DepartmentID: "dept-1", Active: true},
		"fac-2": {ID: "fac-2", DepartmentID: "dept-2", Active: true},
	}}}
	guard := &guardStub{faculty: &models.Faculty{ID: "fac-1", DepartmentID: "dept-1", Active: true}}
	svc := NewFacultyService(store, guard, nil)

	members, err := svc.ListDepartment(context.Background(), &models.JWTClaims{})
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "fac-1", members[0].ID)
}

func TestFacultyServiceListDepartmentGuardFailure(t *testing.T) {
	store := &facultyListerStub{facultyStoreStub{records: map[string]*models.Faculty{}}}
	guard := &guardStub{err: appErrors.ErrUnauthorized}
	svc := NewFacultyService(store, guard, nil)

	_, err := svc.ListDepartment(context.Background(), &models.JWTClaims{})
	requireErrorCode(t, err, appErrors.ErrUnauthorized.Code)
}
