package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yukikurage/project-task-api/internal/constants"
	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/policy"
	"github.com/yukikurage/project-task-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles authentication and user management.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates a new user with the USER role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageError("check email", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, storageError("hash password", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = email
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, storageError("create user", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, notFoundOr(ErrInvalidCredentials, "find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, ErrUserIDRequired
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(ErrUserNotFound, "find user", err)
	}
	return user, nil
}

// ListUsers returns every user with their project memberships. Global admins
// only.
func (s *AuthService) ListUsers(ctx context.Context, actor policy.Actor) ([]models.User, error) {
	if !actor.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if !policy.CanManageUsers(actor) {
		return nil, forbidden("only global admins may list users")
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, storageError("list users", err)
	}
	return users, nil
}

// SetRole changes a user's global role. Global admins only.
func (s *AuthService) SetRole(ctx context.Context, actor policy.Actor, userID string, role models.Role) (*models.User, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if !actor.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if !policy.CanManageUsers(actor) {
		return nil, forbidden("only global admins may change roles")
	}

	return s.updateRole(ctx, userID, role)
}

// SetRoleByEmail changes a role without an acting user. It backs the
// set-role command used to bootstrap the first global admin.
func (s *AuthService) SetRoleByEmail(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, notFoundOr(ErrUserNotFound, "find user", err)
	}
	return s.updateRole(ctx, user.ID, role)
}

func (s *AuthService) updateRole(ctx context.Context, userID string, role models.Role) (*models.User, error) {
	user, err := s.userRepo.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, notFoundOr(ErrUserNotFound, "update role", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
