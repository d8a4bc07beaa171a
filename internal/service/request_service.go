package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/asterheng/Team7/internal/models"
	appErrors "github.com/asterheng/Team7/pkg/errors"
)

type requestRepository interface {
	Create(ctx context.Context, req *models.Request) error
	FindByOwner(ctx context.Context, id, pinID int64) (*models.Request, error)
	ListActiveByOwner(ctx context.Context, pinID int64) ([]models.Request, error)
	ListHistoryByOwner(ctx context.Context, pinID int64) ([]models.Request, error)
	Update(ctx context.Context, req *models.Request) error
	UpdateStatusByOwner(ctx context.Context, id, pinID int64, status models.RequestStatus) error
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus) error
	SearchByTitle(ctx context.Context, pinID int64, term string) ([]models.Request, error)
	SearchCompletedByOwner(ctx context.Context, pinID int64, filter models.CompletedRequestFilter) ([]models.Request, error)
	Delete(ctx context.Context, id int64) error
}

// RequestService owns the request lifecycle: creation, the active-status
// edit guard, suspension, the platform completion/removal path, and the
// owner-scoped queries and counter reads.
type RequestService struct {
	repo      requestRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(repo requestRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &RequestService{repo: repo, cache: cache, validator: validate, logger: logger}
	svc.validator.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
		return models.RequestUrgency(fl.Field().String()).Valid()
	})
	return svc
}

// CreateRequestInput describes the create payload.
type CreateRequestInput struct {
	Title         string     `json:"title" validate:"required"`
	Description   string     `json:"description" validate:"required"`
	Category      string     `json:"category" validate:"required"`
	Urgency       string     `json:"urgency" validate:"omitempty,urgency"`
	Location      *string    `json:"location"`
	PreferredDate *time.Time `json:"preferred_date"`
}

// UpdateRequestInput describes the partial update payload. Nil fields are
// left untouched; anything outside this allow-list cannot be changed.
type UpdateRequestInput struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Category      *string    `json:"category"`
	Urgency       *string    `json:"urgency" validate:"omitempty,urgency"`
	Location      *string    `json:"location"`
	PreferredDate *time.Time `json:"preferred_date"`
}

// Create opens a new request for the PIN user. New requests always start
// pending with zeroed counters.
func (s *RequestService) Create(ctx context.Context, pinID int64, input CreateRequestInput) (*models.Request, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	urgency := models.RequestUrgency(input.Urgency)
	if urgency == "" {
		urgency = models.UrgencyMedium
	}
	req := &models.Request{
		PINID:         pinID,
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		Urgency:       urgency,
		Status:        models.RequestStatusPending,
		Location:      input.Location,
		PreferredDate: input.PreferredDate,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}
	s.invalidateBrowseCache(ctx)
	return req, nil
}

// ListActive returns the owner's requests that are still open.
func (s *RequestService) ListActive(ctx context.Context, pinID int64) ([]models.Request, error) {
	requests, err := s.repo.ListActiveByOwner(ctx, pinID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active requests")
	}
	return requests, nil
}

// History returns the owner's completed and suspended requests.
func (s *RequestService) History(ctx context.Context, pinID int64) ([]models.Request, error) {
	requests, err := s.repo.ListHistoryByOwner(ctx, pinID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list request history")
	}
	return requests, nil
}

// Suspend force-suspends the owner's request whatever its current status.
func (s *RequestService) Suspend(ctx context.Context, id, pinID int64) error {
	if err := s.repo.UpdateStatusByOwner(ctx, id, pinID, models.RequestStatusSuspended); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to suspend request")
	}
	s.invalidateBrowseCache(ctx)
	return nil
}

// GetForEdit returns the request for the edit screen. Terminal requests are
// rejected with an illegal-state error.
func (s *RequestService) GetForEdit(ctx context.Context, id, pinID int64) (*models.Request, error) {
	req, err := s.repo.FindByOwner(ctx, id, pinID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if !req.Status.Active() {
		return nil, appErrors.Clone(appErrors.ErrIllegalState, "only active requests can be edited")
	}
	return req, nil
}

// Update applies the allow-listed fields to an active request and touches
// updated_at. The active-status guard is re-checked here, not only in
// GetForEdit.
func (s *RequestService) Update(ctx context.Context, id, pinID int64, input UpdateRequestInput) (*models.Request, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}
	req, err := s.GetForEdit(ctx, id, pinID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		req.Title = *input.Title
	}
	if input.Description != nil {
		req.Description = *input.Description
	}
	if input.Category != nil {
		req.Category = *input.Category
	}
	if input.Urgency != nil {
		req.Urgency = models.RequestUrgency(*input.Urgency)
	}
	if input.Location != nil {
		req.Location = input.Location
	}
	if input.PreferredDate != nil {
		req.PreferredDate = input.PreferredDate
	}
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}
	s.invalidateBrowseCache(ctx)
	return req, nil
}

// SearchByTitle returns the owner's requests whose title contains the term.
func (s *RequestService) SearchByTitle(ctx context.Context, pinID int64, term string) ([]models.Request, error) {
	requests, err := s.repo.SearchByTitle(ctx, pinID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search requests")
	}
	return requests, nil
}

// SearchCompleted returns the owner's completed matches, optionally narrowed
// by category substring and completion day.
func (s *RequestService) SearchCompleted(ctx context.Context, pinID int64, category string, date *time.Time) ([]models.Request, error) {
	requests, err := s.repo.SearchCompletedByOwner(ctx, pinID, models.CompletedRequestFilter{Category: category, Date: date})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search completed matches")
	}
	return requests, nil
}

// ViewCount returns how many distinct companies have seen the request.
// Ownership scoping doubles as the access check.
func (s *RequestService) ViewCount(ctx context.Context, id, pinID int64) (int, error) {
	req, err := s.repo.FindByOwner(ctx, id, pinID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return req.ViewCount, nil
}

// ShortlistCount returns how many companies have shortlisted the request.
func (s *RequestService) ShortlistCount(ctx context.Context, id, pinID int64) (int, error) {
	req, err := s.repo.FindByOwner(ctx, id, pinID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return req.ShortlistCount, nil
}

// Complete marks a request completed on behalf of platform management.
func (s *RequestService) Complete(ctx context.Context, id int64) error {
	if err := s.repo.UpdateStatus(ctx, id, models.RequestStatusCompleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete request")
	}
	s.invalidateBrowseCache(ctx)
	return nil
}

// Delete removes a request and its tracking rows (platform path).
func (s *RequestService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete request")
	}
	s.invalidateBrowseCache(ctx)
	return nil
}

func (s *RequestService) invalidateBrowseCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, browseCachePrefix+"*"); err != nil {
		s.logger.Warn("failed to invalidate browse cache", zap.Error(err))
	}
}
