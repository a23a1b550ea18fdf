package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
)

func newAlterationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAlterationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAlterationRepoMock(t)
	defer cleanup()

	repo := NewAlterationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO alterations")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	alteration := &models.Alteration{
		DepartmentID:     "dept-1",
		TimetableID:      "tt-1",
		SlotAssignmentID: "slot-1",
		OldFacultyID:     "fac-1",
		Reason:           "slot assignment rejected by faculty",
		Status:           models.AlterationStatusRejected,
	}
	require.NoError(t, repo.Create(context.Background(), alteration))
	require.NotEmpty(t, alteration.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlterationRepositoryRejectPendingBySlot(t *testing.T) {
	db, mock, cleanup := newAlterationRepoMock(t)
	defer cleanup()

	repo := NewAlterationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE alterations SET status = 'REJECTED'")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RejectPendingBySlot(context.Background(), "slot-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlterationRepositoryListByTimetable(t *testing.T) {
	db, mock, cleanup := newAlterationRepoMock(t)
	defer cleanup()

	repo := NewAlterationRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "department_id", "timetable_id", "slot_assignment_id", "old_faculty_id", "new_faculty_id", "reason", "status", "approved_by", "created_at", "updated_at"}).
		AddRow("alt-1", "dept-1", "tt-1", "slot-1", "fac-1", "fac-2", "workload balancing", "APPROVED", "fac-9", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM alterations WHERE timetable_id = $1")).
		WithArgs("tt-1").
		WillReturnRows(rows)

	list, err := repo.ListByTimetable(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, models.AlterationStatusApproved, list[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
