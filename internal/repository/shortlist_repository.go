package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/asterheng/Team7/internal/models"
)

// ShortlistRepository maintains CSR shortlist rows and the denormalized
// shortlist_count on requests. Counter mutation happens only here, in the
// same transaction as the shortlist row write.
type ShortlistRepository struct {
	db *sqlx.DB
}

// NewShortlistRepository constructs a new repository.
func NewShortlistRepository(db *sqlx.DB) *ShortlistRepository {
	return &ShortlistRepository{db: db}
}

// Add saves the request to the company's shortlist and increments the
// counter atomically. Returns added=false when the pair already exists and
// sql.ErrNoRows when the request is missing.
func (r *ShortlistRepository) Add(ctx context.Context, requestID, companyID int64) (added bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin shortlist add: %w", err)
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

	const insertQuery = `INSERT INTO csr_shortlist (request_id, csr_company_id, added_at)
VALUES ($1, $2, $3) ON CONFLICT (request_id, csr_company_id) DO NOTHING`
	res, err := tx.ExecContext(ctx, insertQuery, requestID, companyID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("insert shortlist record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("shortlist insert rows affected: %w", err)
	}

	if rows > 0 {
		if _, err = tx.ExecContext(ctx, `UPDATE requests SET shortlist_count = shortlist_count + 1 WHERE id = $1`, requestID); err != nil {
			return false, fmt.Errorf("increment shortlist count: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit shortlist add: %w", err)
	}
	return rows > 0, nil
}

// Remove deletes the shortlist row and decrements the counter, floored at
// zero. Returns removed=false when the pair was never shortlisted.
func (r *ShortlistRepository) Remove(ctx context.Context, requestID, companyID int64) (removed bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin shortlist remove: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM csr_shortlist WHERE request_id = $1 AND csr_company_id = $2`, requestID, companyID)
	if err != nil {
		return false, fmt.Errorf("delete shortlist record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("shortlist delete rows affected: %w", err)
	}
	if rows == 0 {
		if err = tx.Commit(); err != nil {
			return false, fmt.Errorf("commit shortlist remove: %w", err)
		}
		return false, nil
	}

	if _, err = tx.ExecContext(ctx, `UPDATE requests SET shortlist_count = GREATEST(shortlist_count - 1, 0) WHERE id = $1`, requestID); err != nil {
		return false, fmt.Errorf("decrement shortlist count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit shortlist remove: %w", err)
	}
	return true, nil
}

// Exists reports whether the company has shortlisted the request.
func (r *ShortlistRepository) Exists(ctx context.Context, requestID, companyID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM csr_shortlist WHERE request_id = $1 AND csr_company_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, requestID, companyID); err != nil {
		return false, fmt.Errorf("check shortlist exists: %w", err)
	}
	return exists, nil
}

// Search returns the company's shortlisted requests, optionally filtered by
// a title/description substring, most recently added first.
func (r *ShortlistRepository) Search(ctx context.Context, companyID int64, term string) ([]models.Request, error) {
	where := []string{"cs.csr_company_id = $1"}
	args := []interface{}{companyID}
	if term != "" {
		pattern := "%" + term + "%"
		where = append(where, fmt.Sprintf("(r.title ILIKE $%d OR r.description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, pattern)
	}
	query := fmt.Sprintf(`SELECT %s FROM requests r JOIN csr_shortlist cs ON cs.request_id = r.id WHERE %s ORDER BY cs.added_at DESC`,
		prefixedRequestColumns("r"), strings.Join(where, " AND "))
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("search shortlisted requests: %w", err)
	}
	return requests, nil
}

// SearchCompleted returns completed requests the company had shortlisted,
// optionally narrowed by title substring and completion day.
func (r *ShortlistRepository) SearchCompleted(ctx context.Context, companyID int64, filter models.CompletedRequestFilter) ([]models.Request, error) {
	where := []string{"cs.csr_company_id = $1", "r.status = $2"}
	args := []interface{}{companyID, models.RequestStatusCompleted}
	if filter.Title != "" {
		where = append(where, fmt.Sprintf("r.title ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Title+"%")
	}
	if filter.Date != nil {
		day := filter.Date.Truncate(24 * time.Hour)
		where = append(where, fmt.Sprintf("r.updated_at >= $%d", len(args)+1))
		args = append(args, day)
		where = append(where, fmt.Sprintf("r.updated_at < $%d", len(args)+1))
		args = append(args, day.Add(24*time.Hour))
	}
	query := fmt.Sprintf(`SELECT %s FROM requests r JOIN csr_shortlist cs ON cs.request_id = r.id WHERE %s ORDER BY r.updated_at DESC`,
		prefixedRequestColumns("r"), strings.Join(where, " AND "))
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("search completed services: %w", err)
	}
	return requests, nil
}

func prefixedRequestColumns(alias string) string {
	cols := strings.Split(requestColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}
