package database

import (
	"fmt"

	"github.com/yukikurage/project-task-api/internal/logging"
	"github.com/yukikurage/project-task-api/internal/models"
	"gorm.io/gorm"
)

// Models lists every table managed by the application, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.ProjectAdmin{},
		&models.Task{},
		&models.TaskAssignment{},
	}
}

// Migrate creates or updates the schema, including the composite unique
// indexes that back membership and assignment uniqueness.
func Migrate(db *gorm.DB) error {
	logging.Logger.Info("Running database migrations...")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	uniqueIndexes := []struct {
		model interface{}
		name  string
	}{
		{&models.ProjectMember{}, "uk_project_member"},
		{&models.ProjectAdmin{}, "uk_project_admin"},
		{&models.TaskAssignment{}, "uk_task_assignment"},
	}
	for _, idx := range uniqueIndexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}
		if err := db.Migrator().CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		logging.Logger.WithField("index", idx.name).Info("Created index")
	}

	logging.Logger.Info("Database migrations completed")
	return nil
}
