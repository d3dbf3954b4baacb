package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/project-task-api/internal/models"
)

var (
	// ErrDuplicateAssignment is returned when a (user, task) assignment already exists.
	ErrDuplicateAssignment = errors.New("task repository: assignment already exists")
	// ErrDuplicateMember is returned when a user is already a member of the project.
	ErrDuplicateMember = errors.New("project repository: member already exists")
	// ErrDuplicateAdmin is returned when a user is already an admin of the project.
	ErrDuplicateAdmin = errors.New("project repository: admin already exists")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("user repository: email already exists")
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// FindWithProjectAndAssignees loads a task, its project's members and
	// admins, and its assignments
	FindWithProjectAndAssignees(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// UpdateFields writes only the named columns; other columns keep
	// whatever value is current in the database
	UpdateFields(ctx context.Context, id uint64, fields map[string]interface{}) error

	// MarkDone sets status DONE and completed true
	MarkDone(ctx context.Context, id uint64) (*models.Task, error)

	// Delete removes a task and its assignments
	Delete(ctx context.Context, id uint64) error

	// CreateAssignment links a user to a task
	CreateAssignment(ctx context.Context, userID string, taskID uint64) (*models.TaskAssignment, error)

	// DeleteAssignment removes every matching assignment and reports how many were removed
	DeleteAssignment(ctx context.Context, userID string, taskID uint64) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	// VisibleToUserID limits results to tasks in the user's projects or assigned to them
	VisibleToUserID *string
	AssignedUserID  *string
	ProjectID       *uint64
	Status          *models.TaskStatus
	Priority        *models.TaskPriority
	Page            int
	PageSize        int
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project without relations
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// FindWithMembersAndAdmins loads a project with both relation sets and their users
	FindWithMembersAndAdmins(ctx context.Context, id uint64) (*models.Project, error)

	// List returns all projects, or those the user belongs to when userID is set
	List(ctx context.Context, userID *string) ([]models.Project, error)

	AddMember(ctx context.Context, projectID uint64, userID string) error
	AddAdmin(ctx context.Context, projectID uint64, userID string) error

	// RemoveMember deletes both the admin and member rows for the user
	RemoveMember(ctx context.Context, projectID uint64, userID string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List returns every user with their project memberships
	List(ctx context.Context) ([]models.User, error)

	UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error)
}

// Store groups the repositories so that a unit of work can run inside one
// transaction.
type Store interface {
	Tasks() TaskRepository
	Projects() ProjectRepository
	Users() UserRepository

	// Transaction runs fn against a Store bound to a single transaction.
	// The transaction is rolled back when fn returns an error.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
