package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/asterheng/Team7/internal/models"
	"github.com/asterheng/Team7/internal/repository"
	appErrors "github.com/asterheng/Team7/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id int64) (*models.UserDetail, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.UserDetail, int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetSuspended(ctx context.Context, id int64, suspended bool) error
}

type userProfileLookup interface {
	FindByID(ctx context.Context, id int64) (*models.UserProfile, error)
}

// UserService implements admin account management.
type UserService struct {
	repo      userRepository
	profiles  userProfileLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(repo userRepository, profiles userProfileLookup, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// CreateUserInput is the admin create-account payload.
type CreateUserInput struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	ProfileID int64  `json:"profile_id" validate:"required"`
}

// UpdateUserInput is the admin update payload. Nil fields are unchanged.
type UpdateUserInput struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	ProfileID *int64  `json:"profile_id"`
}

// List returns accounts matching the filter with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.UserDetail, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a single account with its profile.
func (s *UserService) Get(ctx context.Context, id int64) (*models.UserDetail, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create registers a new account under an existing profile.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.UserDetail, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	if _, err := s.profiles.FindByID(ctx, input.ProfileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "user profile does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		ProfileID:    input.ProfileID,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "email already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return s.Get(ctx, user.ID)
}

// Update applies the allow-listed fields to an account.
func (s *UserService) Update(ctx context.Context, id int64, input UpdateUserInput) (*models.UserDetail, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user := detail.User
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.ProfileID != nil {
		if _, err := s.profiles.FindByID(ctx, *input.ProfileID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "user profile does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
		}
		user.ProfileID = *input.ProfileID
	}

	if err := s.repo.Update(ctx, &user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "email already registered")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	return s.Get(ctx, id)
}

// Suspend blocks the account from logging in. Suspension is reversible and
// preserves the account's history.
func (s *UserService) Suspend(ctx context.Context, id int64) error {
	return s.setSuspended(ctx, id, true)
}

// Reinstate lifts the account's suspension.
func (s *UserService) Reinstate(ctx context.Context, id int64) error {
	return s.setSuspended(ctx, id, false)
}

func (s *UserService) setSuspended(ctx context.Context, id int64, suspended bool) error {
	if err := s.repo.SetSuspended(ctx, id, suspended); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update suspension")
	}
	s.logger.Info("user suspension updated", zap.Int64("user_id", id), zap.Bool("suspended", suspended), zap.Time("at", time.Now().UTC()))
	return nil
}
