package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/asterheng/Team7/internal/models"
	appErrors "github.com/asterheng/Team7/pkg/errors"
)

type authRepoStub struct {
	userByEmail  *models.UserDetail
	userByID     *models.UserDetail
	storedToken  *models.RefreshToken
	tokenErr     error
	savedTokens  []*models.RefreshToken
	revokedIDs   []string
	revokedUsers []int64
	auditLogs    []*models.AuditLog
	passwordHash string
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.UserDetail, error) {
	if s.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return s.userByEmail, nil
}

func (s *authRepoStub) FindByID(ctx context.Context, id int64) (*models.UserDetail, error) {
	if s.userByID == nil {
		return nil, sql.ErrNoRows
	}
	return s.userByID, nil
}

func (s *authRepoStub) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	s.passwordHash = passwordHash
	return nil
}

func (s *authRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID int64) error {
	s.revokedUsers = append(s.revokedUsers, userID)
	return nil
}

func (s *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.savedTokens = append(s.savedTokens, token)
	return nil
}

func (s *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if s.tokenErr != nil {
		return nil, s.tokenErr
	}
	if s.storedToken == nil {
		return nil, sql.ErrNoRows
	}
	return s.storedToken, nil
}

func (s *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	s.revokedIDs = append(s.revokedIDs, id)
	return nil
}

func (s *authRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.auditLogs = append(s.auditLogs, log)
	return nil
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "volunteer-api-test",
	}
}

func activeUser(t *testing.T) *models.UserDetail {
	return &models.UserDetail{
		User: models.User{
			ID:           7,
			Name:         "Pat Lim",
			Email:        "pat@example.com",
			PasswordHash: hashPassword(t, "correct horse"),
		},
		Role: models.RolePIN,
	}
}

func TestAuthServiceLoginIssuesTokens(t *testing.T) {
	repo := &authRepoStub{userByEmail: activeUser(t)}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "pat@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(7), resp.User.ID)
	require.Len(t, repo.savedTokens, 1)
	assert.Equal(t, resp.RefreshToken, repo.savedTokens[0].Token)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RolePIN, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &authRepoStub{userByEmail: activeUser(t)}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "pat@example.com",
		Password: "wrong password",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
	assert.Empty(t, repo.savedTokens)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(&authRepoStub{}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginSuspendedAccount(t *testing.T) {
	user := activeUser(t)
	user.Suspended = true
	svc := NewAuthService(&authRepoStub{userByEmail: user}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "pat@example.com",
		Password: "correct horse",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAccountSuspended))
}

func TestAuthServiceLoginSuspendedProfile(t *testing.T) {
	user := activeUser(t)
	user.ProfileSuspended = true
	svc := NewAuthService(&authRepoStub{userByEmail: user}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "pat@example.com",
		Password: "correct horse",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAccountSuspended))
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	user := activeUser(t)
	repo := &authRepoStub{
		userByID: user,
		storedToken: &models.RefreshToken{
			ID:        "token-id",
			UserID:    user.ID,
			Token:     "old-token",
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		},
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.Contains(t, repo.revokedIDs, "token-id")
	require.Len(t, repo.savedTokens, 1)
}

func TestAuthServiceRefreshRejectsRevokedToken(t *testing.T) {
	repo := &authRepoStub{
		storedToken: &models.RefreshToken{
			ID:        "token-id",
			UserID:    7,
			Token:     "old-token",
			ExpiresAt: time.Now().UTC().Add(time.Hour),
			Revoked:   true,
		},
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceRefreshRejectsExpiredToken(t *testing.T) {
	repo := &authRepoStub{
		storedToken: &models.RefreshToken{
			ID:        "token-id",
			UserID:    7,
			Token:     "old-token",
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
		},
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo := &authRepoStub{
		storedToken: &models.RefreshToken{ID: "token-id", UserID: 99, Token: "old-token"},
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.Logout(context.Background(), "old-token", 7, models.LoginRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, repo.revokedIDs)
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := &authRepoStub{userByID: activeUser(t)}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), 7, models.ChangePasswordRequest{
		OldPassword: "correct horse",
		NewPassword: "battery staple",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, repo.passwordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordHash), []byte("battery staple")))
	assert.Contains(t, repo.revokedUsers, int64(7))
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	repo := &authRepoStub{userByID: activeUser(t)}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), 7, models.ChangePasswordRequest{
		OldPassword: "not the password",
		NewPassword: "battery staple",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, repo.passwordHash)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	repo := &authRepoStub{userByEmail: activeUser(t)}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "pat@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "different-secret", AccessTokenExpiry: time.Minute})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
