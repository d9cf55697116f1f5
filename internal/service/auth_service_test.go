package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/workpulse/timesheet-api/internal/models"
	appErrors "github.com/workpulse/timesheet-api/pkg/errors"
)

type fakeAuthRepo struct {
	byEmail map[string]*models.User
	created *models.User
}

func (f *fakeAuthRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) Create(_ context.Context, user *models.User) error {
	f.created = user
	if user.ID == "" {
		user.ID = "new-user"
	}
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{TokenSecret: "test-secret", TokenExpiry: time.Hour, Issuer: "test"}
}

func TestRegisterIssuesToken(t *testing.T) {
	repo := &fakeAuthRepo{byEmail: map[string]*models.User{}}
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName:   "Jess Doe",
		Email:      "jess@example.com",
		Password:   "secret123",
		Role:       models.RoleEmployee,
		Department: "Engineering",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleEmployee, resp.User.Role)
	require.NotNil(t, repo.created)
	assert.True(t, repo.created.Active)
	assert.NotEqual(t, "secret123", repo.created.PasswordHash)
}

func TestRegisterStoresManagerOnlyForEmployees(t *testing.T) {
	managerID := "mgr-1"

	t.Run("employee keeps manager", func(t *testing.T) {
		repo := &fakeAuthRepo{byEmail: map[string]*models.User{}}
		svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())
		_, err := svc.Register(context.Background(), models.RegisterRequest{
			FullName: "A", Email: "a@example.com", Password: "secret123",
			Role: models.RoleEmployee, Department: "Eng", ManagerID: &managerID,
		})
		require.NoError(t, err)
		require.NotNil(t, repo.created.ManagerID)
		assert.Equal(t, managerID, *repo.created.ManagerID)
	})

	t.Run("manager drops manager", func(t *testing.T) {
		repo := &fakeAuthRepo{byEmail: map[string]*models.User{}}
		svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())
		_, err := svc.Register(context.Background(), models.RegisterRequest{
			FullName: "B", Email: "b@example.com", Password: "secret123",
			Role: models.RoleManager, Department: "Eng", ManagerID: &managerID,
		})
		require.NoError(t, err)
		assert.Nil(t, repo.created.ManagerID)
	})
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := &fakeAuthRepo{byEmail: map[string]*models.User{
		"jess@example.com": {ID: "u-1", Email: "jess@example.com"},
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName: "Jess Doe", Email: "jess@example.com", Password: "secret123",
		Role: models.RoleEmployee, Department: "Engineering",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestRegisterRejectsInvalidPayload(t *testing.T) {
	svc := NewAuthService(&fakeAuthRepo{byEmail: map[string]*models.User{}}, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName: "Jess Doe", Email: "not-an-email", Password: "short",
		Role: "superuser", Department: "Engineering",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLoginSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &fakeAuthRepo{byEmail: map[string]*models.User{
		"jess@example.com": {
			ID: "u-1", Email: "jess@example.com", PasswordHash: string(hash),
			FullName: "Jess Doe", Role: models.RoleEmployee, Active: true,
		},
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "jess@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "u-1", resp.User.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &fakeAuthRepo{byEmail: map[string]*models.User{
		"jess@example.com": {ID: "u-1", Email: "jess@example.com", PasswordHash: string(hash), Role: models.RoleEmployee, Active: true},
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "jess@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(&fakeAuthRepo{byEmail: map[string]*models.User{}}, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginInactiveAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &fakeAuthRepo{byEmail: map[string]*models.User{
		"jess@example.com": {ID: "u-1", Email: "jess@example.com", PasswordHash: string(hash), Role: models.RoleEmployee, Active: false},
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "jess@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := &fakeAuthRepo{byEmail: map[string]*models.User{}}
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName: "Jess Doe", Email: "jess@example.com", Password: "secret123",
		Role: models.RoleManager, Department: "Engineering",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, repo.created.ID, claims.UserID)
	assert.Equal(t, models.RoleManager, claims.Role)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := NewAuthService(&fakeAuthRepo{byEmail: map[string]*models.User{}}, nil, zap.NewNop(), testAuthConfig())

	other := NewAuthService(&fakeAuthRepo{byEmail: map[string]*models.User{}}, nil, zap.NewNop(), AuthConfig{
		TokenSecret: "different-secret", TokenExpiry: time.Hour, Issuer: "test",
	})
	resp, err := other.Register(context.Background(), models.RegisterRequest{
		FullName: "Mallory", Email: "mallory@example.com", Password: "secret123",
		Role: models.RoleAdmin, Department: "Ops",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.Token)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	repo := &fakeAuthRepo{byEmail: map[string]*models.User{}}
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName: "Jess Doe", Email: "jess@example.com", Password: "secret123",
		Role: models.RoleEmployee, Department: "Engineering",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.Token)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
