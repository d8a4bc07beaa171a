package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/asterheng/Team7/internal/models"
)

// ViewRepository tracks which CSR companies have seen a request and keeps
// the denormalized view_count on the request in step. It is the only place
// allowed to mutate view_count.
type ViewRepository struct {
	db *sqlx.DB
}

// NewViewRepository constructs a new repository.
func NewViewRepository(db *sqlx.DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// Track records that the company viewed the request. The first view inserts
// a tracking row and increments the counter in one transaction; repeat views
// return created=false without touching anything. A unique index on
// (request_id, csr_company_id) makes concurrent duplicates safe: only the
// insert that lands bumps the counter.
//
// Returns sql.ErrNoRows when the request does not exist, so a view record
// can never outlive its request.
func (r *ViewRepository) Track(ctx context.Context, requestID, companyID int64) (created bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin view track: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int64
	if err = tx.GetContext(ctx, &exists, `SELECT id FROM requests WHERE id = $1`, requestID); err != nil {
		if err == sql.ErrNoRows {
			return false, err
		}
		return false, fmt.Errorf("check request exists: %w", err)
	}

	const insertQuery = `INSERT INTO request_views (request_id, csr_company_id, viewed_at)
VALUES ($1, $2, $3) ON CONFLICT (request_id, csr_company_id) DO NOTHING`
	res, err := tx.ExecContext(ctx, insertQuery, requestID, companyID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("insert view record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("view insert rows affected: %w", err)
	}

	if rows > 0 {
		if _, err = tx.ExecContext(ctx, `UPDATE requests SET view_count = view_count + 1 WHERE id = $1`, requestID); err != nil {
			return false, fmt.Errorf("increment view count: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit view track: %w", err)
	}
	return rows > 0, nil
}

// ListByRequest returns the view records for a request, newest first.
func (r *ViewRepository) ListByRequest(ctx context.Context, requestID int64) ([]models.ViewRecord, error) {
	const query = `SELECT id, request_id, csr_company_id, viewed_at FROM request_views WHERE request_id = $1 ORDER BY viewed_at DESC`
	var records []models.ViewRecord
	if err := r.db.SelectContext(ctx, &records, query, requestID); err != nil {
		return nil, fmt.Errorf("list view records: %w", err)
	}
	return records, nil
}
