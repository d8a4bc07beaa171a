package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/asterheng/Team7/internal/models"
	appErrors "github.com/asterheng/Team7/pkg/errors"
)

type userRepoStub struct {
	byID         *models.UserDetail
	listed       []models.UserDetail
	total        int
	created      *models.User
	updated      *models.User
	suspendedErr error
	suspendCalls []bool
}

func (s *userRepoStub) FindByID(ctx context.Context, id int64) (*models.UserDetail, error) {
	if s.byID == nil {
		return nil, sql.ErrNoRows
	}
	return s.byID, nil
}

func (s *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.UserDetail, int, error) {
	return s.listed, s.total, nil
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	user.ID = 7
	s.created = user
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	s.updated = user
	return nil
}

func (s *userRepoStub) SetSuspended(ctx context.Context, id int64, suspended bool) error {
	if s.suspendedErr != nil {
		return s.suspendedErr
	}
	s.suspendCalls = append(s.suspendCalls, suspended)
	return nil
}

type profileLookupStub struct {
	profile *models.UserProfile
}

func (s *profileLookupStub) FindByID(ctx context.Context, id int64) (*models.UserProfile, error) {
	if s.profile == nil {
		return nil, sql.ErrNoRows
	}
	return s.profile, nil
}

func TestUserServiceCreate(t *testing.T) {
	repo := &userRepoStub{byID: &models.UserDetail{User: models.User{ID: 7, Email: "pat@example.com"}, Role: models.RolePIN}}
	profiles := &profileLookupStub{profile: &models.UserProfile{ID: 3, Role: models.RolePIN}}
	svc := NewUserService(repo, profiles, nil, nil)

	detail, err := svc.Create(context.Background(), CreateUserInput{
		Name:      "Pat Lim",
		Email:     "pat@example.com",
		Password:  "secret pass",
		ProfileID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), detail.ID)
	require.NotNil(t, repo.created)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("secret pass")))
}

func TestUserServiceCreateUnknownProfile(t *testing.T) {
	repo := &userRepoStub{}
	svc := NewUserService(repo, &profileLookupStub{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserInput{
		Name:      "Pat Lim",
		Email:     "pat@example.com",
		Password:  "secret pass",
		ProfileID: 404,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, repo.created)
}

func TestUserServiceCreateShortPassword(t *testing.T) {
	svc := NewUserService(&userRepoStub{}, &profileLookupStub{profile: &models.UserProfile{ID: 3}}, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserInput{
		Name:      "Pat Lim",
		Email:     "pat@example.com",
		Password:  "short",
		ProfileID: 3,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestUserServiceUpdatePartialFields(t *testing.T) {
	repo := &userRepoStub{byID: &models.UserDetail{
		User: models.User{ID: 7, Name: "Old Name", Email: "old@example.com", ProfileID: 3},
		Role: models.RolePIN,
	}}
	svc := NewUserService(repo, &profileLookupStub{profile: &models.UserProfile{ID: 3}}, nil, nil)

	name := "New Name"
	_, err := svc.Update(context.Background(), 7, UpdateUserInput{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "New Name", repo.updated.Name)
	assert.Equal(t, "old@example.com", repo.updated.Email)
}

func TestUserServiceGetNotFound(t *testing.T) {
	svc := NewUserService(&userRepoStub{}, &profileLookupStub{}, nil, nil)

	_, err := svc.Get(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestUserServiceListDefaultsPagination(t *testing.T) {
	repo := &userRepoStub{listed: []models.UserDetail{{}}, total: 1}
	svc := NewUserService(repo, &profileLookupStub{}, nil, nil)

	users, page, err := svc.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 1, page.TotalCount)
}

func TestUserServiceSuspendAndReinstate(t *testing.T) {
	repo := &userRepoStub{}
	svc := NewUserService(repo, &profileLookupStub{}, nil, nil)

	require.NoError(t, svc.Suspend(context.Background(), 7))
	require.NoError(t, svc.Reinstate(context.Background(), 7))
	assert.Equal(t, []bool{true, false}, repo.suspendCalls)
}
