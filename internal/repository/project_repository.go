package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/project-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindWithMembersAndAdmins finds a project with its member and admin sets
func (r *GormProjectRepository) FindWithMembersAndAdmins(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at, id") }).
		Preload("Members.User").
		Preload("Admins").
		Preload("Admins.User").
		First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns all projects, or only those userID is a member or admin of
func (r *GormProjectRepository) List(ctx context.Context, userID *string) ([]models.Project, error) {
	var projects []models.Project

	query := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Members.User").
		Preload("Admins").
		Preload("Admins.User").
		Preload("Tasks").
		Preload("Tasks.Assignments").
		Order("created_at DESC").
		Order("id DESC")

	if userID != nil {
		memberProjects := r.db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", *userID)
		adminProjects := r.db.Model(&models.ProjectAdmin{}).Select("project_id").Where("user_id = ?", *userID)
		query = query.Where("id IN (?) OR id IN (?)", memberProjects, adminProjects)
	}

	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// AddMember adds a user to the project's member set
func (r *GormProjectRepository) AddMember(ctx context.Context, projectID uint64, userID string) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateMember
	}
	return err
}

// AddAdmin adds a user to the project's admin set
func (r *GormProjectRepository) AddAdmin(ctx context.Context, projectID uint64, userID string) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&models.ProjectAdmin{
		ProjectID: projectID,
		UserID:    userID,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateAdmin
	}
	return err
}

// RemoveMember removes the user's admin and member rows in one transaction
func (r *GormProjectRepository) RemoveMember(ctx context.Context, projectID uint64, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.ProjectAdmin{}).Error; err != nil {
			return err
		}

		return tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.ProjectMember{}).Error
	})
}
