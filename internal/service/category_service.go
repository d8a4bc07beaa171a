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

type categoryRepository interface {
	List(ctx context.Context, filter models.CategoryFilter) ([]models.ServiceCategory, int, error)
	FindByID(ctx context.Context, id int64) (*models.ServiceCategory, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, category *models.ServiceCategory) error
	Update(ctx context.Context, category *models.ServiceCategory) error
	SetSuspended(ctx context.Context, id int64, suspended bool) error
}

// CategoryService implements admin management of service categories.
// Category names are unique; the pre-check gives a clean conflict message
// and the unique index backstops races.
type CategoryService struct {
	repo      categoryRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs the service.
func NewCategoryService(repo categoryRepository, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, validator: validate, logger: logger}
}

// CreateCategoryInput is the create payload.
type CreateCategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateCategoryInput is the partial update payload.
type UpdateCategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// List returns categories matching the filter with pagination metadata.
func (s *CategoryService) List(ctx context.Context, filter models.CategoryFilter) ([]models.ServiceCategory, *models.Pagination, error) {
	categories, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return categories, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a category by id.
func (s *CategoryService) Get(ctx context.Context, id int64) (*models.ServiceCategory, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	return category, nil
}

// Create registers a new category.
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*models.ServiceCategory, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}

	exists, err := s.repo.ExistsByName(ctx, input.Name, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check category name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "category name already exists")
	}

	category := &models.ServiceCategory{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "category name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}
	return category, nil
}

// Update applies the allow-listed fields to a category.
func (s *CategoryService) Update(ctx context.Context, id int64, input UpdateCategoryInput) (*models.ServiceCategory, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil && *input.Name != category.Name {
		exists, err := s.repo.ExistsByName(ctx, *input.Name, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check category name")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "category name already exists")
		}
		category.Name = *input.Name
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if err := s.repo.Update(ctx, category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "category name already exists")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update category")
	}
	return category, nil
}

// Suspend hides the category from new requests without deleting it.
func (s *CategoryService) Suspend(ctx context.Context, id int64) error {
	return s.setSuspended(ctx, id, true)
}

// Reinstate lifts the category's suspension.
func (s *CategoryService) Reinstate(ctx context.Context, id int64) error {
	return s.setSuspended(ctx, id, false)
}

func (s *CategoryService) setSuspended(ctx context.Context, id int64, suspended bool) error {
	if err := s.repo.SetSuspended(ctx, id, suspended); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update suspension")
	}
	s.logger.Info("category suspension updated", zap.Int64("category_id", id), zap.Bool("suspended", suspended))
	return nil
}
