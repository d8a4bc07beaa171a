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

const categoryColumns = `id, name, description, suspended, created_at, updated_at`

// CategoryRepository manages persistence for service categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs a new repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns categories matching the filter with total count.
func (r *CategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]models.ServiceCategory, int, error) {
	baseQuery := `FROM service_categories WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Suspended != nil {
		conditions = append(conditions, fmt.Sprintf("suspended = $%d", len(args)+1))
		args = append(args, *filter.Suspended)
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY id LIMIT %d OFFSET %d", categoryColumns, baseQuery, pageSize, offset)
	var categories []models.ServiceCategory
	if err := r.db.SelectContext(ctx, &categories, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	return categories, total, nil
}

// FindByID returns a category by identifier.
func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*models.ServiceCategory, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_categories WHERE id = $1 LIMIT 1`, categoryColumns)
	var category models.ServiceCategory
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return &category, nil
}

// ExistsByName reports whether a category with the name exists, optionally
// excluding one id (for update duplicate checks).
func (r *CategoryRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM service_categories WHERE LOWER(name) = LOWER($1) AND id <> $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, name, excludeID); err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

// Create inserts a new category and fills in the generated ID.
func (r *CategoryRepository) Create(ctx context.Context, category *models.ServiceCategory) error {
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now
	const query = `INSERT INTO service_categories (name, description, suspended, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		category.Name, category.Description, category.Suspended, category.CreatedAt, category.UpdatedAt,
	).Scan(&category.ID); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update writes mutable category fields.
func (r *CategoryRepository) Update(ctx context.Context, category *models.ServiceCategory) error {
	category.UpdatedAt = time.Now().UTC()
	const query = `UPDATE service_categories SET name = :name, description = :description, suspended = :suspended, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, category)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRowsAffected(res)
}

// SetSuspended flips the category's suspended flag.
func (r *CategoryRepository) SetSuspended(ctx context.Context, id int64, suspended bool) error {
	const query = `UPDATE service_categories SET suspended = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, suspended, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set category suspended: %w", err)
	}
	return requireRowsAffected(res)
}
