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

type categoryRepoStub struct {
	listed       []models.ServiceCategory
	total        int
	byID         *models.ServiceCategory
	nameExists   bool
	created      *models.ServiceCategory
	updated      *models.ServiceCategory
	suspendedErr error
	suspendCalls []bool
	existsChecks []string
}

func (s *categoryRepoStub) List(ctx context.Context, filter models.CategoryFilter) ([]models.ServiceCategory, int, error) {
	return s.listed, s.total, nil
}

func (s *categoryRepoStub) FindByID(ctx context.Context, id int64) (*models.ServiceCategory, error) {
	if s.byID == nil {
		return nil, sql.ErrNoRows
	}
	return s.byID, nil
}

func (s *categoryRepoStub) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	s.existsChecks = append(s.existsChecks, name)
	return s.nameExists, nil
}

func (s *categoryRepoStub) Create(ctx context.Context, category *models.ServiceCategory) error {
	category.ID = 5
	s.created = category
	return nil
}

func (s *categoryRepoStub) Update(ctx context.Context, category *models.ServiceCategory) error {
	s.updated = category
	return nil
}

func (s *categoryRepoStub) SetSuspended(ctx context.Context, id int64, suspended bool) error {
	if s.suspendedErr != nil {
		return s.suspendedErr
	}
	s.suspendCalls = append(s.suspendCalls, suspended)
	return nil
}

func TestCategoryServiceCreate(t *testing.T) {
	repo := &categoryRepoStub{}
	svc := NewCategoryService(repo, nil, nil)

	category, err := svc.Create(context.Background(), CreateCategoryInput{Name: "Mobility", Description: "Transport and access"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), category.ID)
	assert.Equal(t, "Mobility", category.Name)
}

func TestCategoryServiceCreateDuplicateName(t *testing.T) {
	repo := &categoryRepoStub{nameExists: true}
	svc := NewCategoryService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateCategoryInput{Name: "Mobility"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicate))
	assert.Nil(t, repo.created)
}

func TestCategoryServiceCreateRequiresName(t *testing.T) {
	svc := NewCategoryService(&categoryRepoStub{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateCategoryInput{Description: "no name"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCategoryServiceUpdateSkipsNameCheckWhenUnchanged(t *testing.T) {
	repo := &categoryRepoStub{byID: &models.ServiceCategory{ID: 5, Name: "Mobility", Description: "Old"}}
	svc := NewCategoryService(repo, nil, nil)

	name := "Mobility"
	description := "Transport and access"
	category, err := svc.Update(context.Background(), 5, UpdateCategoryInput{Name: &name, Description: &description})
	require.NoError(t, err)
	assert.Equal(t, "Transport and access", category.Description)
	assert.Empty(t, repo.existsChecks)
}

func TestCategoryServiceUpdateRenameConflict(t *testing.T) {
	repo := &categoryRepoStub{byID: &models.ServiceCategory{ID: 5, Name: "Mobility"}, nameExists: true}
	svc := NewCategoryService(repo, nil, nil)

	name := "Errands"
	_, err := svc.Update(context.Background(), 5, UpdateCategoryInput{Name: &name})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicate))
	assert.Nil(t, repo.updated)
}

func TestCategoryServiceGetNotFound(t *testing.T) {
	svc := NewCategoryService(&categoryRepoStub{}, nil, nil)

	_, err := svc.Get(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestCategoryServiceSuspendAndReinstate(t *testing.T) {
	repo := &categoryRepoStub{}
	svc := NewCategoryService(repo, nil, nil)

	require.NoError(t, svc.Suspend(context.Background(), 5))
	require.NoError(t, svc.Reinstate(context.Background(), 5))
	assert.Equal(t, []bool{true, false}, repo.suspendCalls)
}

func TestCategoryServiceSuspendNotFound(t *testing.T) {
	repo := &categoryRepoStub{suspendedErr: sql.ErrNoRows}
	svc := NewCategoryService(repo, nil, nil)

	err := svc.Suspend(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
