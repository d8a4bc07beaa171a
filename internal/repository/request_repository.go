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

const requestColumns = `id, pin_id, title, description, category, urgency, status, location, preferred_date, created_at, updated_at, view_count, shortlist_count`

// RequestRepository manages persistence for assistance requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs a new repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new request and fills in the generated ID and timestamps.
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = models.RequestStatusPending
	}
	if req.Urgency == "" {
		req.Urgency = models.UrgencyMedium
	}
	const query = `INSERT INTO requests (pin_id, title, description, category, urgency, status, location, preferred_date, created_at, updated_at, view_count, shortlist_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, 0) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		req.PINID, req.Title, req.Description, req.Category, req.Urgency, req.Status,
		req.Location, req.PreferredDate, req.CreatedAt, req.UpdatedAt,
	).Scan(&req.ID); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// FindByID returns a request regardless of owner.
func (r *RequestRepository) FindByID(ctx context.Context, id int64) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id = $1 LIMIT 1`, requestColumns)
	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request by id: %w", err)
	}
	return &req, nil
}

// FindByOwner returns a request only when it belongs to the given PIN user.
func (r *RequestRepository) FindByOwner(ctx context.Context, id, pinID int64) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id = $1 AND pin_id = $2 LIMIT 1`, requestColumns)
	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, id, pinID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request by owner: %w", err)
	}
	return &req, nil
}

// ListActiveByOwner returns the owner's requests that are not yet terminal.
func (r *RequestRepository) ListActiveByOwner(ctx context.Context, pinID int64) ([]models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE pin_id = $1 AND status NOT IN ($2, $3) ORDER BY created_at`, requestColumns)
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, pinID, models.RequestStatusCompleted, models.RequestStatusSuspended); err != nil {
		return nil, fmt.Errorf("list active requests: %w", err)
	}
	return requests, nil
}

// ListHistoryByOwner returns the owner's completed and suspended requests.
func (r *RequestRepository) ListHistoryByOwner(ctx context.Context, pinID int64) ([]models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE pin_id = $1 AND status IN ($2, $3) ORDER BY created_at DESC`, requestColumns)
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, pinID, models.RequestStatusCompleted, models.RequestStatusSuspended); err != nil {
		return nil, fmt.Errorf("list request history: %w", err)
	}
	return requests, nil
}

// Update writes the owner-editable fields and touches updated_at.
func (r *RequestRepository) Update(ctx context.Context, req *models.Request) error {
	req.UpdatedAt = time.Now().UTC()
	const query = `UPDATE requests SET title = :title, description = :description, category = :category, urgency = :urgency, location = :location, preferred_date = :preferred_date, updated_at = :updated_at
WHERE id = :id AND pin_id = :pin_id`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	return nil
}

// UpdateStatusByOwner sets the status for an owner's request. Returns
// sql.ErrNoRows when no matching row exists.
func (r *RequestRepository) UpdateStatusByOwner(ctx context.Context, id, pinID int64, status models.RequestStatus) error {
	const query = `UPDATE requests SET status = $3, updated_at = $4 WHERE id = $1 AND pin_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, pinID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return requireRowsAffected(res)
}

// UpdateStatus sets the status without an ownership scope (platform path).
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus) error {
	const query = `UPDATE requests SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return requireRowsAffected(res)
}

// SearchByTitle returns the owner's requests whose title contains the term.
func (r *RequestRepository) SearchByTitle(ctx context.Context, pinID int64, term string) ([]models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE pin_id = $1 AND title ILIKE $2 ORDER BY created_at DESC`, requestColumns)
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, pinID, "%"+term+"%"); err != nil {
		return nil, fmt.Errorf("search requests by title: %w", err)
	}
	return requests, nil
}

// SearchCompletedByOwner returns the owner's completed requests, optionally
// narrowed by category substring and the day updated_at falls on.
func (r *RequestRepository) SearchCompletedByOwner(ctx context.Context, pinID int64, filter models.CompletedRequestFilter) ([]models.Request, error) {
	where := []string{"pin_id = $1", "status = $2"}
	args := []interface{}{pinID, models.RequestStatusCompleted}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Category+"%")
	}
	if filter.Date != nil {
		day := filter.Date.Truncate(24 * time.Hour)
		where = append(where, fmt.Sprintf("updated_at >= $%d", len(args)+1))
		args = append(args, day)
		where = append(where, fmt.Sprintf("updated_at < $%d", len(args)+1))
		args = append(args, day.Add(24*time.Hour))
	}
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE %s ORDER BY created_at DESC`, requestColumns, strings.Join(where, " AND "))
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("search completed requests: %w", err)
	}
	return requests, nil
}

// SearchAvailable returns browsable requests (pending or approved) matching
// the CSR filter, newest first.
func (r *RequestRepository) SearchAvailable(ctx context.Context, filter models.AvailableRequestFilter) ([]models.Request, error) {
	where := []string{"status IN ($1, $2)"}
	args := []interface{}{models.RequestStatusPending, models.RequestStatusApproved}
	if filter.Term != "" {
		pattern := "%" + filter.Term + "%"
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR category ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, pattern)
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Urgency != "" {
		where = append(where, fmt.Sprintf("urgency = $%d", len(args)+1))
		args = append(args, filter.Urgency)
	}
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE %s ORDER BY created_at DESC`, requestColumns, strings.Join(where, " AND "))
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("search available requests: %w", err)
	}
	return requests, nil
}

// Delete removes a request together with its view and shortlist rows so no
// tracking record outlives the request it references.
func (r *RequestRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin request delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM request_views WHERE request_id = $1`, id); err != nil {
		return fmt.Errorf("delete request views: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM csr_shortlist WHERE request_id = $1`, id); err != nil {
		return fmt.Errorf("delete request shortlists: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if err = requireRowsAffected(res); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit request delete: %w", err)
	}
	return nil
}

func requireRowsAffected(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
