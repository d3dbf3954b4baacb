package dto

import (
	"github.com/yukikurage/project-task-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

// UserWithProjectsDTO is the admin view of a user
type UserWithProjectsDTO struct {
	UserDTO
	ProjectIDs []uint64 `json:"project_ids"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}

// ToUserWithProjectsDTO expects Projects to be preloaded
func ToUserWithProjectsDTO(user models.User) UserWithProjectsDTO {
	ids := make([]uint64, len(user.Projects))
	for i, m := range user.Projects {
		ids[i] = m.ProjectID
	}
	return UserWithProjectsDTO{
		UserDTO:    ToUserDTO(user),
		ProjectIDs: ids,
	}
}
