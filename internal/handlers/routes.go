package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/middleware"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Projects *ProjectHandler
	Tasks    *TaskHandler
	Priority *PriorityHandler
}

// Register mounts the API routes on r. Session middleware must already be
// installed on r.
func (h *Handlers) Register(r gin.IRouter) {
	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentUser)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth())

	users := protected.Group("/users")
	users.Use(middleware.RequireGlobalAdmin())
	{
		users.GET("", h.Users.ListUsers)
		users.PUT("/:id/role", h.Users.SetRole)
	}

	projects := protected.Group("/projects")
	{
		projects.POST("", h.Projects.CreateProject)
		projects.GET("", h.Projects.ListProjects)

		project := projects.Group("/:id")
		project.Use(middleware.RequireIDParam("id"))
		project.GET("/members", h.Projects.ListMembers)
		project.POST("/members", h.Projects.AddMember)
		project.DELETE("/members/:user_id", h.Projects.RemoveMember)
		project.POST("/admins", h.Projects.AddAdmin)
	}

	tasks := protected.Group("/tasks")
	{
		tasks.GET("", h.Tasks.ListTasks)
		tasks.GET("/mine", h.Tasks.ListMyTasks)
		tasks.POST("", h.Tasks.CreateTask)

		task := tasks.Group("/:id")
		task.Use(middleware.RequireIDParam("id"))
		task.GET("", h.Tasks.GetTask)
		task.PATCH("", h.Tasks.UpdateTask)
		task.DELETE("", h.Tasks.DeleteTask)
		task.POST("/assign", h.Tasks.AssignTask)
		task.POST("/unassign", h.Tasks.UnassignTask)
		task.PUT("/complete", h.Tasks.CompleteTask)
	}

	ai := protected.Group("/ai")
	{
		ai.GET("/priority", h.Priority.DetectPriority)
		ai.POST("/priority", h.Priority.DetectPriority)
	}
}
