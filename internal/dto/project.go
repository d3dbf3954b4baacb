package dto

import (
	"time"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/services"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectSummaryDTO is a project as shown in lists, with counts and the
// ids of its admins and members.
type ProjectSummaryDTO struct {
	ProjectDTO
	AdminIDs  []string `json:"admin_ids"`
	MemberIDs []string `json:"member_ids"`
	TaskCount int      `json:"task_count"`
	DoneCount int      `json:"done_count"`
}

// ProjectMemberDTO represents a member in a project
type ProjectMemberDTO struct {
	User           UserDTO   `json:"user"`
	JoinedAt       time.Time `json:"joined_at"`
	IsProjectAdmin bool      `json:"is_project_admin"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
	}
}

// ToProjectSummaryDTO expects members, admins and tasks to be preloaded
func ToProjectSummaryDTO(project models.Project) ProjectSummaryDTO {
	summary := ProjectSummaryDTO{
		ProjectDTO: ToProjectDTO(project),
		AdminIDs:   make([]string, 0, len(project.Admins)),
		MemberIDs:  make([]string, 0, len(project.Members)),
		TaskCount:  len(project.Tasks),
	}
	for _, a := range project.Admins {
		summary.AdminIDs = append(summary.AdminIDs, a.UserID)
	}
	for _, m := range project.Members {
		summary.MemberIDs = append(summary.MemberIDs, m.UserID)
	}
	for _, t := range project.Tasks {
		if t.Completed {
			summary.DoneCount++
		}
	}
	return summary
}

// ToProjectMemberDTO converts a member entry to DTO
func ToProjectMemberDTO(member services.ProjectMember) ProjectMemberDTO {
	return ProjectMemberDTO{
		User:           ToUserDTO(member.User),
		JoinedAt:       member.JoinedAt,
		IsProjectAdmin: member.IsProjectAdmin,
	}
}
