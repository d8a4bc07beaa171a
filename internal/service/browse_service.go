package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/asterheng/Team7/internal/models"
	appErrors "github.com/asterheng/Team7/pkg/errors"
)

type browseRequestRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Request, error)
	SearchAvailable(ctx context.Context, filter models.AvailableRequestFilter) ([]models.Request, error)
}

type viewRepository interface {
	Track(ctx context.Context, requestID, companyID int64) (bool, error)
}

type shortlistRepository interface {
	Add(ctx context.Context, requestID, companyID int64) (bool, error)
	Remove(ctx context.Context, requestID, companyID int64) (bool, error)
	Exists(ctx context.Context, requestID, companyID int64) (bool, error)
	Search(ctx context.Context, companyID int64, term string) ([]models.Request, error)
	SearchCompleted(ctx context.Context, companyID int64, filter models.CompletedRequestFilter) ([]models.Request, error)
}

// BrowseService implements the CSR-side catalogue: searching available
// requests, viewing details with idempotent view tracking, and managing the
// company shortlist.
type BrowseService struct {
	requests   browseRequestRepository
	views      viewRepository
	shortlists shortlistRepository
	cache      *CacheService
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewBrowseService constructs the service.
func NewBrowseService(requests browseRequestRepository, views viewRepository, shortlists shortlistRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *BrowseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowseService{
		requests:   requests,
		views:      views,
		shortlists: shortlists,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// RequestDetail pairs a request with the calling company's shortlist state.
type RequestDetail struct {
	Request     models.Request `json:"request"`
	Shortlisted bool           `json:"shortlisted"`
}

// SearchAvailable returns open requests matching the filter. Results are
// cached briefly per filter when caching is enabled; mutations elsewhere
// invalidate the whole browse namespace.
func (s *BrowseService) SearchAvailable(ctx context.Context, filter models.AvailableRequestFilter) ([]models.Request, error) {
	key := browseCacheKey(filter)
	var cached []models.Request
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	requests, err := s.requests.SearchAvailable(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search available requests")
	}

	if err := s.cache.Set(ctx, key, requests, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache browse results", zap.String("key", key), zap.Error(err))
	}
	return requests, nil
}

// RequestDetails records the company's view of the request and returns the
// detail including the post-tracking counters. Repeat views are no-ops.
func (s *BrowseService) RequestDetails(ctx context.Context, requestID, companyID int64) (*RequestDetail, error) {
	if _, err := s.views.Track(ctx, requestID, companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record view")
	}

	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}

	shortlisted, err := s.shortlists.Exists(ctx, requestID, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check shortlist")
	}
	return &RequestDetail{Request: *req, Shortlisted: shortlisted}, nil
}

// AddToShortlist saves the request to the company's shortlist. Adding the
// same request twice is a conflict.
func (s *BrowseService) AddToShortlist(ctx context.Context, requestID, companyID int64) error {
	added, err := s.shortlists.Add(ctx, requestID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add to shortlist")
	}
	if !added {
		return appErrors.Clone(appErrors.ErrDuplicate, "request already shortlisted")
	}
	return nil
}

// RemoveFromShortlist drops the request from the company's shortlist.
func (s *BrowseService) RemoveFromShortlist(ctx context.Context, requestID, companyID int64) error {
	removed, err := s.shortlists.Remove(ctx, requestID, companyID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove from shortlist")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "request not in shortlist")
	}
	return nil
}

// SearchShortlisted returns the company's shortlist, optionally filtered by
// a title or description substring.
func (s *BrowseService) SearchShortlisted(ctx context.Context, companyID int64, term string) ([]models.Request, error) {
	requests, err := s.shortlists.Search(ctx, companyID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search shortlist")
	}
	return requests, nil
}

// ShortlistedDetails returns a shortlisted request without recording a view.
// The shortlist membership check doubles as the access guard.
func (s *BrowseService) ShortlistedDetails(ctx context.Context, requestID, companyID int64) (*models.Request, error) {
	onList, err := s.shortlists.Exists(ctx, requestID, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check shortlist")
	}
	if !onList {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not in shortlist")
	}
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return req, nil
}

// CompletedHistory returns completed requests the company had shortlisted.
func (s *BrowseService) CompletedHistory(ctx context.Context, companyID int64) ([]models.Request, error) {
	requests, err := s.shortlists.SearchCompleted(ctx, companyID, models.CompletedRequestFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completed history")
	}
	return requests, nil
}

// SearchCompletedServices narrows the completed history by title substring
// and completion day.
func (s *BrowseService) SearchCompletedServices(ctx context.Context, companyID int64, title string, date *time.Time) ([]models.Request, error) {
	requests, err := s.shortlists.SearchCompleted(ctx, companyID, models.CompletedRequestFilter{Title: title, Date: date})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search completed services")
	}
	return requests, nil
}

func browseCacheKey(filter models.AvailableRequestFilter) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(filter.Term)),
		strings.ToLower(strings.TrimSpace(filter.Category)),
		string(filter.Urgency),
	}
	return fmt.Sprintf("%savailable:%s", browseCachePrefix, strings.Join(parts, ":"))
}
