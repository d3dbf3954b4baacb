package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/policy"
	"github.com/yukikurage/project-task-api/internal/repository"
)

// ProjectService provides business logic for projects and their membership.
type ProjectService struct {
	store repository.Store
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store repository.Store) *ProjectService {
	return &ProjectService{store: store}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description *string
}

// ProjectMember is a member row flagged with the user's admin status.
type ProjectMember struct {
	User           models.User
	JoinedAt       time.Time
	IsProjectAdmin bool
}

// CreateProject creates an empty project. Only global admins may do this.
func (s *ProjectService) CreateProject(ctx context.Context, actor policy.Actor, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !actor.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if !policy.CanCreateProject(actor) {
		return nil, forbidden("only global admins may create projects")
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
	}
	if err := s.store.Projects().Create(ctx, project); err != nil {
		return nil, storageError("create project", err)
	}

	return project, nil
}

// ListProjects returns every project to global admins and the actor's own
// projects to everyone else.
func (s *ProjectService) ListProjects(ctx context.Context, actor policy.Actor) ([]models.Project, error) {
	if !actor.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	var userID *string
	if !actor.IsGlobalAdmin() {
		userID = &actor.ID
	}

	projects, err := s.store.Projects().List(ctx, userID)
	if err != nil {
		return nil, storageError("list projects", err)
	}
	return projects, nil
}

// ListMembers returns the project's members, admins included.
func (s *ProjectService) ListMembers(ctx context.Context, actor policy.Actor, projectID uint64) ([]ProjectMember, error) {
	if projectID == 0 {
		return nil, ErrProjectIDRequired
	}
	if !actor.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	project, err := s.store.Projects().FindWithMembersAndAdmins(ctx, projectID)
	if err != nil {
		return nil, notFoundOr(ErrProjectNotFound, "load project", err)
	}
	if !policy.CanManageProjectMembership(actor, project) {
		return nil, forbidden("only project admins or global admins may view project members")
	}

	members := make([]ProjectMember, 0, len(project.Members))
	for _, m := range project.Members {
		members = append(members, ProjectMember{
			User:           m.User,
			JoinedAt:       m.JoinedAt,
			IsProjectAdmin: project.HasAdmin(m.UserID),
		})
	}
	// Admins without a member row are listed too.
	for _, a := range project.Admins {
		if project.HasMember(a.UserID) {
			continue
		}
		members = append(members, ProjectMember{
			User:           a.User,
			JoinedAt:       a.GrantedAt,
			IsProjectAdmin: true,
		})
	}

	return members, nil
}

// AddMember adds an existing user to the project.
func (s *ProjectService) AddMember(ctx context.Context, actor policy.Actor, projectID uint64, userID string) error {
	if err := validateMembershipInput(actor, projectID, userID); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		project, err := tx.Projects().FindWithMembersAndAdmins(ctx, projectID)
		if err != nil {
			return notFoundOr(ErrProjectNotFound, "load project", err)
		}
		if !policy.CanManageProjectMembership(actor, project) {
			return forbidden("only project admins or global admins may add project members")
		}
		if err := ensureUserExists(ctx, tx, userID); err != nil {
			return err
		}

		if err := tx.Projects().AddMember(ctx, projectID, userID); err != nil {
			if errors.Is(err, repository.ErrDuplicateMember) {
				return ErrAlreadyMember
			}
			return storageError("add member", err)
		}
		return nil
	})

	return passThrough("add member", err)
}

// AddAdmin promotes a user to project admin, enrolling them as a member
// first when needed. Only global admins may promote.
func (s *ProjectService) AddAdmin(ctx context.Context, actor policy.Actor, projectID uint64, userID string) error {
	if err := validateMembershipInput(actor, projectID, userID); err != nil {
		return err
	}
	if !policy.CanPromoteProjectAdmin(actor) {
		return forbidden("only global admins may promote project admins")
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		project, err := tx.Projects().FindWithMembersAndAdmins(ctx, projectID)
		if err != nil {
			return notFoundOr(ErrProjectNotFound, "load project", err)
		}
		if err := ensureUserExists(ctx, tx, userID); err != nil {
			return err
		}
		if project.HasAdmin(userID) {
			return ErrAlreadyAdmin
		}

		if !project.HasMember(userID) {
			if err := tx.Projects().AddMember(ctx, projectID, userID); err != nil && !errors.Is(err, repository.ErrDuplicateMember) {
				return storageError("add member", err)
			}
		}
		if err := tx.Projects().AddAdmin(ctx, projectID, userID); err != nil {
			if errors.Is(err, repository.ErrDuplicateAdmin) {
				return ErrAlreadyAdmin
			}
			return storageError("add admin", err)
		}
		return nil
	})

	return passThrough("add admin", err)
}

// RemoveMember removes a user from the project. Their admin status goes
// with the membership. Removing a user who is not enrolled is not an error.
func (s *ProjectService) RemoveMember(ctx context.Context, actor policy.Actor, projectID uint64, userID string) error {
	if err := validateMembershipInput(actor, projectID, userID); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		project, err := tx.Projects().FindWithMembersAndAdmins(ctx, projectID)
		if err != nil {
			return notFoundOr(ErrProjectNotFound, "load project", err)
		}
		if !policy.CanManageProjectMembership(actor, project) {
			return forbidden("only project admins or global admins may remove project members")
		}
		if err := tx.Projects().RemoveMember(ctx, projectID, userID); err != nil {
			return storageError("remove member", err)
		}
		return nil
	})

	return passThrough("remove member", err)
}

func validateMembershipInput(actor policy.Actor, projectID uint64, userID string) error {
	if projectID == 0 {
		return ErrProjectIDRequired
	}
	if userID == "" {
		return ErrUserIDRequired
	}
	if !actor.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

func ensureUserExists(ctx context.Context, tx repository.Store, userID string) error {
	if _, err := tx.Users().FindByID(ctx, userID); err != nil {
		return notFoundOr(ErrUserNotFound, "load user", err)
	}
	return nil
}
