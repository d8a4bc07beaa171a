package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asterheng/Team7/internal/models"
)

func TestShortlistRepositoryAdd(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShortlistRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM requests WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec("INSERT INTO csr_shortlist").
		WithArgs(int64(42), int64(9), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET shortlist_count = shortlist_count + 1 WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	added, err := repo.Add(context.Background(), 42, 9)
	require.NoError(t, err)
	assert.True(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShortlistRepositoryAddDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShortlistRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM requests").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec("INSERT INTO csr_shortlist").
		WithArgs(int64(42), int64(9), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	added, err := repo.Add(context.Background(), 42, 9)
	require.NoError(t, err)
	assert.False(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShortlistRepositoryAddMissingRequest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShortlistRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM requests").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Add(context.Background(), 404, 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShortlistRepositoryRemove(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShortlistRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM csr_shortlist WHERE request_id = $1 AND csr_company_id = $2")).
		WithArgs(int64(42), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET shortlist_count = GREATEST(shortlist_count - 1, 0) WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removed, err := repo.Remove(context.Background(), 42, 9)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShortlistRepositoryRemoveAbsent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShortlistRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM csr_shortlist").
		WithArgs(int64(42), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	removed, err := repo.Remove(context.Background(), 42, 9)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShortlistRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShortlistRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(42), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), 42, 9)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShortlistRepositorySearchCompleted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShortlistRepository(db)

	mock.ExpectQuery("JOIN csr_shortlist cs ON").
		WithArgs(int64(9), models.RequestStatusCompleted, "%ramp%").
		WillReturnRows(requestRows(42))

	requests, err := repo.SearchCompleted(context.Background(), 9, models.CompletedRequestFilter{Title: "ramp"})
	require.NoError(t, err)
	assert.Len(t, requests, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
