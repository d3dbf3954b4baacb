package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/project-task-api/internal/database"
	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindWithProjectAndAssignees loads everything the authorization policy needs
func (r *GormTaskRepository) FindWithProjectAndAssignees(ctx context.Context, id uint64) (*models.Task, error) {
	return r.FindByID(ctx, id, "Project", "Project.Members", "Project.Admins", "Assignments", "Assignments.User")
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.VisibleToUserID != nil {
		userID := *filter.VisibleToUserID
		memberProjects := r.db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)
		adminProjects := r.db.Model(&models.ProjectAdmin{}).Select("project_id").Where("user_id = ?", userID)
		assigned := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", userID)
		query = query.Where(
			r.db.Where("tasks.project_id IN (?)", memberProjects).
				Or("tasks.project_id IN (?)", adminProjects).
				Or("EXISTS (?)", assigned),
		)
	}
	if filter.AssignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedUserID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC").Order("tasks.id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.Preload("Assignments").Preload("Assignments.User").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// UpdateFields writes only the given columns of a task
func (r *GormTaskRepository) UpdateFields(ctx context.Context, id uint64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// MarkDone sets status DONE and completed true
func (r *GormTaskRepository) MarkDone(ctx context.Context, id uint64) (*models.Task, error) {
	if err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    models.TaskStatusDone,
			"completed": true,
		}).Error; err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id, "Assignments", "Assignments.User")
}

// Delete removes a task and its assignments
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CreateAssignment links a user to a task. An existing pair, or a unique
// constraint violation from a concurrent insert, yields ErrDuplicateAssignment.
func (r *GormTaskRepository) CreateAssignment(ctx context.Context, userID string, taskID uint64) (*models.TaskAssignment, error) {
	db := r.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.TaskAssignment{}).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrDuplicateAssignment
	}

	assignment := &models.TaskAssignment{
		UserID: userID,
		TaskID: taskID,
	}
	if err := db.Omit(clause.Associations).Create(assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateAssignment
		}
		return nil, err
	}

	return assignment, nil
}

// DeleteAssignment removes every matching assignment
func (r *GormTaskRepository) DeleteAssignment(ctx context.Context, userID string, taskID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Delete(&models.TaskAssignment{})
	return result.RowsAffected, result.Error
}
