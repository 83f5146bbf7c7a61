package middleware

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/collabcore-dev/collabcore/db"
	"github.com/collabcore-dev/collabcore/internal/auth"
	"github.com/collabcore-dev/collabcore/internal/models"
	"github.com/collabcore-dev/collabcore/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthenticatedUser struct {
	ID              uint   `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

// AuthMiddleware establishes identity from the accessToken cookie or the
// Authorization header and stores the sanitized user on the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := ctx.Cookie("accessToken")

		if err != nil || tokenString == "" {
			authHeader := ctx.GetHeader("Authorization")

			if authHeader == "" {
				abortWithError(ctx, http.StatusUnauthorized, "Authorization token is required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)

			if len(parts) != 2 || parts[0] != "Bearer" {
				abortWithError(ctx, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			tokenString = parts[1]
		}

		userID, err := auth.VerifyAccessToken(tokenString)

		if err != nil {
			abortWithError(ctx, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		var user models.User

		if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			abortWithError(ctx, http.StatusUnauthorized, "Invalid access token")
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:              user.ID,
			Username:        user.Username,
			Email:           user.Email,
			IsEmailVerified: user.IsEmailVerified,
		})
		ctx.Next()
	}
}

// RequireProjectRole resolves the caller's membership on the addressed
// project and allows the request only when the role is in the given set.
// A missing membership row collapses to not-found so that project existence
// is never confirmed to non-members. The resolved role is attached to the
// request context for downstream handlers.
func RequireProjectRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Param("project_id") == "" {
			abortWithError(ctx, http.StatusBadRequest, "Project ID is required")
			return
		}

		projectID, err := strconv.ParseUint(ctx.Param("project_id"), 10, 64)

		if err != nil {
			abortWithError(ctx, http.StatusBadRequest, "Invalid project ID")
			return
		}

		value, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			abortWithError(ctx, http.StatusUnauthorized, "User not authenticated")
			return
		}

		user, ok := value.(AuthenticatedUser)

		if !ok {
			abortWithError(ctx, http.StatusUnauthorized, "User not authenticated")
			return
		}

		var membership models.ProjectMembership

		err = db.DB.Where("project_id = ? AND user_id = ?", projectID, user.ID).First(&membership).Error

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortWithError(ctx, http.StatusNotFound, "Project not found")
				return
			}
			log.Printf("Database error when resolving membership: %v", err)
			abortWithError(ctx, http.StatusInternalServerError, "Internal server error")
			return
		}

		ctx.Set(types.ContextProjectRoleKey, membership.Role)

		allowed := false

		for _, role := range roles {
			if role == membership.Role {
				allowed = true
				break
			}
		}

		if !allowed {
			abortWithError(ctx, http.StatusForbidden, "You do not have permission to perform this action")
			return
		}

		ctx.Next()
	}
}

func abortWithError(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, types.APIResponse{
		StatusCode: status,
		Message:    message,
		Success:    false,
	})
}
