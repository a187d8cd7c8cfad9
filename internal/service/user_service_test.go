package service

import (
	"effisense-go/internal/config"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"effisense-go/internal/testdb"
	"effisense-go/pkg/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserService(t *testing.T) (UserService, *gorm.DB) {
	db := testdb.New(t)
	return NewUserService(repository.NewUserRepository(db), repository.NewMemoryTokenBlacklist(), token.NewJWTManager("secret", 1)), db
}

func TestUserService_RegisterLoginLogout(t *testing.T) {
	svc, _ := newUserService(t)

	user, err := svc.Register("alice", "alice@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret!", user.Password)

	_, err = svc.Register("alice", "other@example.com", "whatever")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = svc.Register("bob", "alice@example.com", "whatever")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = svc.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("nobody", "s3cret!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	tok, _, err := svc.Login("alice", "s3cret!")
	require.NoError(t, err)
	authed, err := svc.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	require.NoError(t, svc.Logout(ctx, tok))
	_, err = svc.Authenticate(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_EnsureAdminIsIdempotent(t *testing.T) {
	svc, db := newUserService(t)
	cfg := config.AdminConfig{Username: "admin", Password: "admin123"}

	require.NoError(t, svc.EnsureAdmin(cfg))
	require.NoError(t, svc.EnsureAdmin(cfg))

	assert.Equal(t, int64(1), testdb.Count(t, db, &model.User{}))
	admin, err := svc.GetByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
}

func TestUserService_SimulationSettings(t *testing.T) {
	svc, db := newUserService(t)
	user := testdb.User(t, db)

	_, isValidation := IsValidation(svc.ToggleSimulation(user.ID, true, 0))
	assert.True(t, isValidation)

	require.NoError(t, svc.ToggleSimulation(user.ID, true, 30))
	stored, err := svc.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSimulationEnabled)
	assert.Equal(t, 30, stored.SelectedSimulationInterval)

	// Disabling with a bogus interval keeps the stored one.
	require.NoError(t, svc.ToggleSimulation(user.ID, false, -5))
	stored, err = svc.GetByID(user.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSimulationEnabled)
	assert.Equal(t, 30, stored.SelectedSimulationInterval)

	_, isValidation = IsValidation(svc.UpdateSimulationInterval(user.ID, 3601))
	assert.True(t, isValidation)
	require.NoError(t, svc.UpdateSimulationInterval(user.ID, 3600))
	stored, err = svc.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3600, stored.SelectedSimulationInterval)
}
