package router

import (
	"time"

	"github.com/collabcore-dev/collabcore/internal/handlers"
	"github.com/collabcore-dev/collabcore/internal/middleware"
	"github.com/collabcore-dev/collabcore/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	anyMember := middleware.RequireProjectRole(types.AvailableUserRoles...)
	adminOnly := middleware.RequireProjectRole(types.RoleAdmin)
	taskWriters := middleware.RequireProjectRole(types.RoleAdmin, types.RoleProjectAdmin)

	api := r.Group("/api/v1")
	{
		api.GET("/healthcheck", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.RegisterUser)
			auth.POST("/login", handlers.LoginUser)
			auth.GET("/verify-email/:token", handlers.VerifyEmail)
			auth.POST("/refresh-token", handlers.RefreshAccessToken)
			auth.POST("/forgot-password", handlers.ForgotPassword)
			auth.POST("/reset-password/:token", handlers.ResetPassword)

			auth.POST("/logout", middleware.AuthMiddleware(), handlers.LogoutUser)
			auth.GET("/current-user", middleware.AuthMiddleware(), handlers.CurrentUser)
			auth.POST("/resend-verification-email", middleware.AuthMiddleware(), handlers.ResendVerificationEmail)
			auth.POST("/change-password", middleware.AuthMiddleware(), handlers.ChangePassword)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.GET("", handlers.ListProjects)
			projects.POST("", handlers.CreateProject)
			projects.GET("/:project_id", anyMember, handlers.GetProject)
			projects.PUT("/:project_id", adminOnly, handlers.UpdateProject)
			projects.DELETE("/:project_id", adminOnly, handlers.DeleteProject)

			// Membership management
			projects.GET("/:project_id/members", adminOnly, handlers.GetProjectMembers)
			projects.POST("/:project_id/members", adminOnly, handlers.AddProjectMember)
			projects.PUT("/:project_id/members/:user_id", adminOnly, handlers.UpdateMemberRole)
			projects.DELETE("/:project_id/members/:user_id", adminOnly, handlers.RemoveProjectMember)

			// Tasks and subtasks
			projects.GET("/:project_id/tasks", anyMember, handlers.ListTasks)
			projects.POST("/:project_id/tasks", taskWriters, handlers.CreateTask)
			projects.GET("/:project_id/tasks/:task_id", anyMember, handlers.GetTask)
			projects.PUT("/:project_id/tasks/:task_id", taskWriters, handlers.UpdateTask)
			projects.DELETE("/:project_id/tasks/:task_id", taskWriters, handlers.DeleteTask)
			projects.POST("/:project_id/tasks/:task_id/subtasks", taskWriters, handlers.CreateSubTask)
			projects.PUT("/:project_id/subtasks/:subtask_id", taskWriters, handlers.UpdateSubTask)
			projects.DELETE("/:project_id/subtasks/:subtask_id", taskWriters, handlers.DeleteSubTask)
		}

		notes := api.Group("/notes", middleware.AuthMiddleware())
		{
			notes.GET("/:project_id", anyMember, handlers.ListNotes)
			notes.POST("/:project_id", adminOnly, handlers.CreateNote)
			notes.GET("/:project_id/n/:note_id", anyMember, handlers.GetNote)
			notes.PUT("/:project_id/n/:note_id", adminOnly, handlers.UpdateNote)
			notes.DELETE("/:project_id/n/:note_id", adminOnly, handlers.DeleteNote)
		}
	}

	return r
}
