package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asterheng/Team7/internal/models"
	appErrors "github.com/asterheng/Team7/pkg/errors"
)

type browseRequestRepoStub struct {
	byID      *models.Request
	byIDErr   error
	available []models.Request
}

func (s *browseRequestRepoStub) FindByID(ctx context.Context, id int64) (*models.Request, error) {
	if s.byIDErr != nil {
		return nil, s.byIDErr
	}
	return s.byID, nil
}

func (s *browseRequestRepoStub) SearchAvailable(ctx context.Context, filter models.AvailableRequestFilter) ([]models.Request, error) {
	return s.available, nil
}

type viewRepoStub struct {
	created    bool
	err        error
	trackCalls int
}

func (s *viewRepoStub) Track(ctx context.Context, requestID, companyID int64) (bool, error) {
	s.trackCalls++
	if s.err != nil {
		return false, s.err
	}
	return s.created, nil
}

type shortlistRepoStub struct {
	added     bool
	addErr    error
	removed   bool
	removeErr error
	exists    bool
	items     []models.Request
	completed []models.Request
}

func (s *shortlistRepoStub) Add(ctx context.Context, requestID, companyID int64) (bool, error) {
	if s.addErr != nil {
		return false, s.addErr
	}
	return s.added, nil
}

func (s *shortlistRepoStub) Remove(ctx context.Context, requestID, companyID int64) (bool, error) {
	if s.removeErr != nil {
		return false, s.removeErr
	}
	return s.removed, nil
}

func (s *shortlistRepoStub) Exists(ctx context.Context, requestID, companyID int64) (bool, error) {
	return s.exists, nil
}

func (s *shortlistRepoStub) Search(ctx context.Context, companyID int64, term string) ([]models.Request, error) {
	return s.items, nil
}

func (s *shortlistRepoStub) SearchCompleted(ctx context.Context, companyID int64, filter models.CompletedRequestFilter) ([]models.Request, error) {
	return s.completed, nil
}

func newBrowseService(requests *browseRequestRepoStub, views *viewRepoStub, shortlists *shortlistRepoStub) *BrowseService {
	return NewBrowseService(requests, views, shortlists, nil, 0, nil)
}

func TestBrowseServiceRequestDetailsTracksView(t *testing.T) {
	requests := &browseRequestRepoStub{byID: &models.Request{ID: 42, ViewCount: 1}}
	views := &viewRepoStub{created: true}
	shortlists := &shortlistRepoStub{exists: true}
	svc := newBrowseService(requests, views, shortlists)

	detail, err := svc.RequestDetails(context.Background(), 42, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, views.trackCalls)
	assert.Equal(t, int64(42), detail.Request.ID)
	assert.True(t, detail.Shortlisted)
}

func TestBrowseServiceRequestDetailsMissingRequest(t *testing.T) {
	views := &viewRepoStub{err: sql.ErrNoRows}
	svc := newBrowseService(&browseRequestRepoStub{}, views, &shortlistRepoStub{})

	_, err := svc.RequestDetails(context.Background(), 404, 9)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestBrowseServiceAddToShortlist(t *testing.T) {
	shortlists := &shortlistRepoStub{added: true}
	svc := newBrowseService(&browseRequestRepoStub{}, &viewRepoStub{}, shortlists)

	require.NoError(t, svc.AddToShortlist(context.Background(), 42, 9))
}

func TestBrowseServiceAddToShortlistDuplicate(t *testing.T) {
	shortlists := &shortlistRepoStub{added: false}
	svc := newBrowseService(&browseRequestRepoStub{}, &viewRepoStub{}, shortlists)

	err := svc.AddToShortlist(context.Background(), 42, 9)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicate))
}

func TestBrowseServiceAddToShortlistMissingRequest(t *testing.T) {
	shortlists := &shortlistRepoStub{addErr: sql.ErrNoRows}
	svc := newBrowseService(&browseRequestRepoStub{}, &viewRepoStub{}, shortlists)

	err := svc.AddToShortlist(context.Background(), 404, 9)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestBrowseServiceRemoveFromShortlistAbsent(t *testing.T) {
	shortlists := &shortlistRepoStub{removed: false}
	svc := newBrowseService(&browseRequestRepoStub{}, &viewRepoStub{}, shortlists)

	err := svc.RemoveFromShortlist(context.Background(), 42, 9)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestBrowseServiceShortlistedDetailsRequiresMembership(t *testing.T) {
	requests := &browseRequestRepoStub{byID: &models.Request{ID: 42}}
	views := &viewRepoStub{}
	svc := newBrowseService(requests, views, &shortlistRepoStub{exists: false})

	_, err := svc.ShortlistedDetails(context.Background(), 42, 9)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, views.trackCalls)
}

func TestBrowseServiceShortlistedDetailsSkipsViewTracking(t *testing.T) {
	requests := &browseRequestRepoStub{byID: &models.Request{ID: 42}}
	views := &viewRepoStub{}
	svc := newBrowseService(requests, views, &shortlistRepoStub{exists: true})

	req, err := svc.ShortlistedDetails(context.Background(), 42, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(42), req.ID)
	assert.Zero(t, views.trackCalls)
}

func TestBrowseServiceSearchAvailableWithoutCache(t *testing.T) {
	requests := &browseRequestRepoStub{available: []models.Request{{ID: 1}, {ID: 2}}}
	svc := newBrowseService(requests, &viewRepoStub{}, &shortlistRepoStub{})

	result, err := svc.SearchAvailable(context.Background(), models.AvailableRequestFilter{Term: "ramp"})
	require.NoError(t, err)
	assert.Len(t, result, 2)
}
