package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/asterheng/Team7/internal/models"
)

const profileColumns = `id, name, description, role, suspended, created_at, updated_at`

// ProfileRepository manages persistence for role profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a new repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// List returns all profiles ordered by id.
func (r *ProfileRepository) List(ctx context.Context) ([]models.UserProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_profiles ORDER BY id`, profileColumns)
	var profiles []models.UserProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// FindByID returns a profile by identifier.
func (r *ProfileRepository) FindByID(ctx context.Context, id int64) (*models.UserProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_profiles WHERE id = $1 LIMIT 1`, profileColumns)
	var profile models.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	return &profile, nil
}

// FindByName returns a profile by its unique display name.
func (r *ProfileRepository) FindByName(ctx context.Context, name string) (*models.UserProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_profiles WHERE LOWER(name) = LOWER($1) LIMIT 1`, profileColumns)
	var profile models.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by name: %w", err)
	}
	return &profile, nil
}

// Create inserts a new profile and fills in the generated ID.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	const query = `INSERT INTO user_profiles (name, description, role, suspended, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		profile.Name, profile.Description, profile.Role, profile.Suspended, profile.CreatedAt, profile.UpdatedAt,
	).Scan(&profile.ID); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// Update writes mutable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE user_profiles SET name = :name, description = :description, role = :role, suspended = :suspended, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRowsAffected(res)
}

// SetSuspended flips the profile's suspended flag.
func (r *ProfileRepository) SetSuspended(ctx context.Context, id int64, suspended bool) error {
	const query = `UPDATE user_profiles SET suspended = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, suspended, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set profile suspended: %w", err)
	}
	return requireRowsAffected(res)
}
