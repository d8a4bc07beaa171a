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

type profileRepoStub struct {
	listed       []models.UserProfile
	byID         *models.UserProfile
	byName       *models.UserProfile
	created      *models.UserProfile
	updated      *models.UserProfile
	suspendCalls []bool
}

func (s *profileRepoStub) List(ctx context.Context) ([]models.UserProfile, error) {
	return s.listed, nil
}

func (s *profileRepoStub) FindByID(ctx context.Context, id int64) (*models.UserProfile, error) {
	if s.byID == nil {
		return nil, sql.ErrNoRows
	}
	return s.byID, nil
}

func (s *profileRepoStub) FindByName(ctx context.Context, name string) (*models.UserProfile, error) {
	if s.byName == nil {
		return nil, sql.ErrNoRows
	}
	return s.byName, nil
}

func (s *profileRepoStub) Create(ctx context.Context, profile *models.UserProfile) error {
	profile.ID = 3
	s.created = profile
	return nil
}

func (s *profileRepoStub) Update(ctx context.Context, profile *models.UserProfile) error {
	s.updated = profile
	return nil
}

func (s *profileRepoStub) SetSuspended(ctx context.Context, id int64, suspended bool) error {
	s.suspendCalls = append(s.suspendCalls, suspended)
	return nil
}

func TestProfileServiceCreate(t *testing.T) {
	repo := &profileRepoStub{}
	svc := NewProfileService(repo, nil, nil)

	profile, err := svc.Create(context.Background(), CreateProfileInput{
		Name: "Person In Need",
		Role: string(models.RolePIN),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), profile.ID)
	assert.Equal(t, models.RolePIN, profile.Role)
}

func TestProfileServiceCreateRejectsUnknownRole(t *testing.T) {
	repo := &profileRepoStub{}
	svc := NewProfileService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateProfileInput{Name: "Visitor", Role: "GUEST"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, repo.created)
}

func TestProfileServiceSearchNotFound(t *testing.T) {
	svc := NewProfileService(&profileRepoStub{}, nil, nil)

	_, err := svc.Search(context.Background(), "Missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestProfileServiceUpdateChangesRole(t *testing.T) {
	repo := &profileRepoStub{byID: &models.UserProfile{ID: 3, Name: "Helper", Role: models.RoleCSR}}
	svc := NewProfileService(repo, nil, nil)

	role := string(models.RolePlatform)
	profile, err := svc.Update(context.Background(), 3, UpdateProfileInput{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RolePlatform, profile.Role)
	assert.Equal(t, "Helper", profile.Name)
	require.NotNil(t, repo.updated)
}

func TestProfileServiceSuspendAndReinstate(t *testing.T) {
	repo := &profileRepoStub{}
	svc := NewProfileService(repo, nil, nil)

	require.NoError(t, svc.Suspend(context.Background(), 3))
	require.NoError(t, svc.Reinstate(context.Background(), 3))
	assert.Equal(t, []bool{true, false}, repo.suspendCalls)
}
