package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asterheng/Team7/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func requestRows(ids ...int64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "pin_id", "title", "description", "category", "urgency", "status", "location", "preferred_date", "created_at", "updated_at", "view_count", "shortlist_count"})
	for _, id := range ids {
		rows.AddRow(id, int64(7), "Wheelchair ramp", "Need a ramp", "mobility", "medium", "pending", nil, nil, time.Now(), time.Now(), 0, 0)
	}
	return rows
}

func TestRequestRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery("INSERT INTO requests").
		WithArgs(int64(7), "Wheelchair ramp", "Need a ramp", "mobility", models.UrgencyHigh, models.RequestStatusPending, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	req := &models.Request{
		PINID:       7,
		Title:       "Wheelchair ramp",
		Description: "Need a ramp",
		Category:    "mobility",
		Urgency:     models.UrgencyHigh,
		Status:      models.RequestStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.Equal(t, int64(42), req.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery("INSERT INTO requests").
		WithArgs(int64(7), "Groceries", "Weekly shop", "errands", models.UrgencyMedium, models.RequestStatusPending, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	req := &models.Request{PINID: 7, Title: "Groceries", Description: "Weekly shop", Category: "errands"}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, models.UrgencyMedium, req.Urgency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryFindByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, pin_id, title, description, category, urgency, status, location, preferred_date, created_at, updated_at, view_count, shortlist_count FROM requests WHERE id = $1 AND pin_id = $2 LIMIT 1")).
		WithArgs(int64(42), int64(7)).
		WillReturnRows(requestRows(42))

	req, err := repo.FindByOwner(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), req.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryFindByOwnerNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery("SELECT .* FROM requests WHERE id").
		WithArgs(int64(42), int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByOwner(context.Background(), 42, 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateStatusByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET status = $3, updated_at = $4 WHERE id = $1 AND pin_id = $2")).
		WithArgs(int64(42), int64(7), models.RequestStatusSuspended, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatusByOwner(context.Background(), 42, 7, models.RequestStatusSuspended))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateStatusByOwnerNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec("UPDATE requests SET status").
		WithArgs(int64(42), int64(99), models.RequestStatusSuspended, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatusByOwner(context.Background(), 42, 99, models.RequestStatusSuspended)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositorySearchAvailable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("status IN ($1, $2)")).
		WithArgs(models.RequestStatusPending, models.RequestStatusApproved, "%ramp%", "mobility", models.UrgencyHigh).
		WillReturnRows(requestRows(1, 2))

	requests, err := repo.SearchAvailable(context.Background(), models.AvailableRequestFilter{
		Term:     "ramp",
		Category: "mobility",
		Urgency:  models.UrgencyHigh,
	})
	require.NoError(t, err)
	assert.Len(t, requests, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositorySearchCompletedByOwnerDateRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("updated_at >= $4")).
		WithArgs(int64(7), models.RequestStatusCompleted, "%garden%", day, day.Add(24*time.Hour)).
		WillReturnRows(requestRows(3))

	requests, err := repo.SearchCompletedByOwner(context.Background(), 7, models.CompletedRequestFilter{
		Category: "garden",
		Date:     &day,
	})
	require.NoError(t, err)
	assert.Len(t, requests, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM request_views WHERE request_id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM csr_shortlist WHERE request_id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM requests WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryDeleteMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM request_views").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM csr_shortlist").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM requests").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
