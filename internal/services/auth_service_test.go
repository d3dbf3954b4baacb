package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/policy"
	"github.com/yukikurage/project-task-api/internal/repository"
	"github.com/yukikurage/project-task-api/internal/testutil"
)

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := testutil.NewDB(t)
	return NewAuthService(repository.NewUserRepository(db))
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	service := setupAuthService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterInput{Email: " Alice@Example.com ", Password: "password123", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)

	_, err = service.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = service.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	loggedIn, err := service.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = service.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = service.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_RoleManagement(t *testing.T) {
	service := setupAuthService(t)
	ctx := context.Background()

	alice, err := service.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	bob, err := service.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = service.SetRole(ctx, actorOf(alice), bob.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.ListUsers(ctx, actorOf(alice))
	assert.ErrorIs(t, err, ErrForbidden)

	admin, err := service.SetRoleByEmail(ctx, "alice@example.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	promoted, err := service.SetRole(ctx, actorOf(admin), bob.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	_, err = service.SetRole(ctx, actorOf(admin), bob.ID, models.Role("ROOT"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.SetRole(ctx, actorOf(admin), "ghost", models.RoleUser)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = service.SetRoleByEmail(ctx, "ghost@example.com", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := service.ListUsers(ctx, actorOf(admin))
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = service.ListUsers(ctx, policy.Actor{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPriorityService_Detect(t *testing.T) {
	service := NewPriorityService(&stubClassifier{priority: models.PriorityLow})

	_, err := service.Detect(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := service.Detect(context.Background(), "Tidy the wiki")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityLow, got.Priority)
	assert.Equal(t, "Tidy the wiki", got.Description)
}
