// Package testutil provides an in-memory database and seed helpers for tests.
package testutil

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-task-api/internal/database"
	"github.com/yukikurage/project-task-api/internal/logging"
	"github.com/yukikurage/project-task-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database that lives for the
// duration of the test. A single connection keeps every query on the same
// in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	logging.Logger.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with the given email and global role.
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		Name:         email,
		PasswordHash: "hashed",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProject inserts a project with the given members and admins.
// Admins are enrolled as members too.
func CreateProject(t *testing.T, db *gorm.DB, name string, members []*models.User, admins []*models.User) *models.Project {
	t.Helper()
	project := &models.Project{Name: name}
	require.NoError(t, db.Create(project).Error)

	enrolled := map[string]bool{}
	for _, u := range append(append([]*models.User{}, members...), admins...) {
		if enrolled[u.ID] {
			continue
		}
		enrolled[u.ID] = true
		require.NoError(t, db.Create(&models.ProjectMember{ProjectID: project.ID, UserID: u.ID}).Error)
	}
	for _, u := range admins {
		require.NoError(t, db.Create(&models.ProjectAdmin{ProjectID: project.ID, UserID: u.ID}).Error)
	}
	return project
}

// CreateTask inserts a task, optionally linked to a project.
func CreateTask(t *testing.T, db *gorm.DB, title string, project *models.Project) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:    title,
		Priority: models.PriorityMedium,
		Status:   models.TaskStatusTodo,
	}
	if project != nil {
		task.ProjectID = &project.ID
	}
	require.NoError(t, db.Omit("Project", "Assignments").Create(task).Error)
	return task
}

// Assign inserts an assignment row directly.
func Assign(t *testing.T, db *gorm.DB, user *models.User, task *models.Task) {
	t.Helper()
	require.NoError(t, db.Create(&models.TaskAssignment{UserID: user.ID, TaskID: task.ID}).Error)
}

// CountAssignments returns how many rows exist for the pair.
func CountAssignments(t *testing.T, db *gorm.DB, userID string, taskID uint64) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.TaskAssignment{}).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Count(&count).Error)
	return count
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
