package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"
const ContextProjectRoleKey = "projectRole"

const (
	RoleAdmin        = "admin"
	RoleProjectAdmin = "project_admin"
	RoleMember       = "member"
)

var AvailableUserRoles = []string{RoleAdmin, RoleProjectAdmin, RoleMember}

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

var AvailableTaskStatuses = []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

func IsValidUserRole(role string) bool {
	for _, r := range AvailableUserRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsValidTaskStatus(status string) bool {
	for _, s := range AvailableTaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
