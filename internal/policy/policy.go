// Package policy decides who may act on projects and tasks.
//
// Every function is a pure predicate over data the caller has already loaded.
// Nothing here touches storage, and a false result is never an error: the
// service layer turns it into a Forbidden or NotEligible failure.
package policy

import "github.com/yukikurage/project-task-api/internal/models"

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string
	Role models.Role
}

// IsGlobalAdmin reports whether the actor holds the global ADMIN role.
func (a Actor) IsGlobalAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Authenticated reports whether an identity was supplied.
func (a Actor) Authenticated() bool {
	return a.ID != ""
}

func isProjectAdmin(actor Actor, project *models.Project) bool {
	return project != nil && project.HasAdmin(actor.ID)
}

// CanManageProjectMembership allows global admins and the project's admins.
func CanManageProjectMembership(actor Actor, project *models.Project) bool {
	return actor.IsGlobalAdmin() || isProjectAdmin(actor, project)
}

// CanPromoteProjectAdmin is reserved for global admins. Project admins may
// manage membership but cannot grant admin rights.
func CanPromoteProjectAdmin(actor Actor) bool {
	return actor.IsGlobalAdmin()
}

// CanCreateProject is reserved for global admins.
func CanCreateProject(actor Actor) bool {
	return actor.IsGlobalAdmin()
}

// CanManageUsers covers listing users and changing global roles.
func CanManageUsers(actor Actor) bool {
	return actor.IsGlobalAdmin()
}

// CanCreateOrEditProjectTask allows anyone for unscoped tasks; a targeted
// project requires a global admin or one of its admins.
func CanCreateOrEditProjectTask(actor Actor, project *models.Project) bool {
	if project == nil {
		return true
	}
	return actor.IsGlobalAdmin() || isProjectAdmin(actor, project)
}

// CanEditTask gates the edit operation, which is reserved for global admins.
func CanEditTask(actor Actor) bool {
	return actor.IsGlobalAdmin()
}

// CanAssignOrUnassignTask allows global admins, or admins of the task's
// project. Unscoped tasks can only be assigned by a global admin.
func CanAssignOrUnassignTask(actor Actor, project *models.Project) bool {
	return actor.IsGlobalAdmin() || isProjectAdmin(actor, project)
}

// CanDeleteTask follows the assignment rule.
func CanDeleteTask(actor Actor, project *models.Project) bool {
	return CanAssignOrUnassignTask(actor, project)
}

// IsEligibleAssignee reports whether candidateID may receive a task in
// project. Anyone may hold an unscoped task.
func IsEligibleAssignee(candidateID string, project *models.Project) bool {
	if project == nil {
		return true
	}
	return project.HasMember(candidateID) || project.HasAdmin(candidateID)
}

// CanCompleteTask allows global admins and the task's assignees.
func CanCompleteTask(actor Actor, assignments []models.TaskAssignment) bool {
	if actor.IsGlobalAdmin() {
		return true
	}
	for _, a := range assignments {
		if a.UserID == actor.ID {
			return true
		}
	}
	return false
}

// CanViewProject allows global admins plus the project's members and admins.
func CanViewProject(actor Actor, project *models.Project) bool {
	if actor.IsGlobalAdmin() {
		return true
	}
	return project != nil && (project.HasMember(actor.ID) || project.HasAdmin(actor.ID))
}
