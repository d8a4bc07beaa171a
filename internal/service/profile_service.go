package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/asterheng/Team7/internal/models"
	"github.com/asterheng/Team7/internal/repository"
	appErrors "github.com/asterheng/Team7/pkg/errors"
)

type profileRepository interface {
	List(ctx context.Context) ([]models.UserProfile, error)
	FindByID(ctx context.Context, id int64) (*models.UserProfile, error)
	FindByName(ctx context.Context, name string) (*models.UserProfile, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	Update(ctx context.Context, profile *models.UserProfile) error
	SetSuspended(ctx context.Context, id int64, suspended bool) error
}

// ProfileService implements admin management of role profiles.
type ProfileService struct {
	repo      profileRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs the service.
func NewProfileService(repo profileRepository, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ProfileService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
	return svc
}

// CreateProfileInput is the create payload.
type CreateProfileInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Role        string `json:"role" validate:"required,role"`
}

// UpdateProfileInput is the partial update payload.
type UpdateProfileInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Role        *string `json:"role" validate:"omitempty,role"`
}

// List returns all role profiles.
func (s *ProfileService) List(ctx context.Context) ([]models.UserProfile, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}
	return profiles, nil
}

// Get returns a profile by id.
func (s *ProfileService) Get(ctx context.Context, id int64) (*models.UserProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// Search finds a profile by its display name.
func (s *ProfileService) Search(ctx context.Context, name string) (*models.UserProfile, error) {
	profile, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search profiles")
	}
	return profile, nil
}

// Create registers a new role profile. Profile names are unique.
func (s *ProfileService) Create(ctx context.Context, input CreateProfileInput) (*models.UserProfile, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	profile := &models.UserProfile{
		Name:        input.Name,
		Description: input.Description,
		Role:        models.UserRole(input.Role),
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "profile name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}
	return profile, nil
}

// Update applies the allow-listed fields to a profile.
func (s *ProfileService) Update(ctx context.Context, id int64, input UpdateProfileInput) (*models.UserProfile, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		profile.Name = *input.Name
	}
	if input.Description != nil {
		profile.Description = *input.Description
	}
	if input.Role != nil {
		profile.Role = models.UserRole(*input.Role)
	}
	if err := s.repo.Update(ctx, profile); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "profile name already exists")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return profile, nil
}

// Suspend blocks logins for every account on the profile.
func (s *ProfileService) Suspend(ctx context.Context, id int64) error {
	return s.setSuspended(ctx, id, true)
}

// Reinstate lifts the profile's suspension.
func (s *ProfileService) Reinstate(ctx context.Context, id int64) error {
	return s.setSuspended(ctx, id, false)
}

func (s *ProfileService) setSuspended(ctx context.Context, id int64, suspended bool) error {
	if err := s.repo.SetSuspended(ctx, id, suspended); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update suspension")
	}
	s.logger.Info("profile suspension updated", zap.Int64("profile_id", id), zap.Bool("suspended", suspended))
	return nil
}
