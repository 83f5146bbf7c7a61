package utils

import (
	"fmt"

	"github.com/collabcore-dev/collabcore/internal/middleware"
	"github.com/collabcore-dev/collabcore/internal/types"
	"github.com/gin-gonic/gin"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// GetProjectRole returns the role resolved by the project permission
// middleware for this request.
func GetProjectRole(ctx *gin.Context) (string, error) {
	value, exists := ctx.Get(types.ContextProjectRoleKey)

	if !exists {
		return "", fmt.Errorf("Project role not resolved")
	}

	role, ok := value.(string)

	if !ok {
		return "", fmt.Errorf("Invalid role type in context")
	}

	return role, nil
}
