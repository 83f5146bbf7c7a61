package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/collabcore-dev/collabcore/db"
	"github.com/collabcore-dev/collabcore/internal/models"
	"github.com/collabcore-dev/collabcore/internal/types"
	"github.com/collabcore-dev/collabcore/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type AddProjectMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func toProjectResponse(project models.Project) types.ProjectResponse {
	return types.ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedByID: project.CreatedByID,
		CreatedAt:   project.CreatedAt,
	}
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 64)

	if err != nil {
		return 0, false
	}

	return uint(value), true
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var memberships []models.ProjectMembership

	err = db.DB.Where("user_id = ?", userID).Preload("Project").Find(&memberships).Error

	if err != nil {
		log.Printf("Failed to list projects: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve projects")
		return
	}

	response := make([]types.ProjectSummary, 0, len(memberships))

	for _, membership := range memberships {
		var memberCount int64

		err = db.DB.Model(&models.ProjectMembership{}).
			Where("project_id = ?", membership.ProjectID).Count(&memberCount).Error

		if err != nil {
			log.Printf("Failed to count project members: %v", err)
			utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve projects")
			return
		}

		response = append(response, types.ProjectSummary{
			Project:     toProjectResponse(membership.Project),
			Role:        membership.Role,
			MemberCount: memberCount,
		})
	}

	utils.Respond(ctx, http.StatusOK, response, "Projects fetched successfully")
}

func GetProject(ctx *gin.Context) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusNotFound, "Project not found")
		} else {
			utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve project")
		}
		return
	}

	utils.Respond(ctx, http.StatusOK, toProjectResponse(project), "Project details fetched successfully")
}

func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	project := models.Project{
		Name:        body.Name,
		Description: body.Description,
		CreatedByID: userID,
	}

	// Project and creator membership land together or not at all.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		membership := models.ProjectMembership{
			UserID:    userID,
			ProjectID: project.ID,
			Role:      types.RoleAdmin,
		}

		return tx.Create(&membership).Error
	})

	if err != nil {
		log.Printf("Failed to create project: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to create project")
		return
	}

	utils.Respond(ctx, http.StatusCreated, toProjectResponse(project), "Project created successfully")
}

func UpdateProject(ctx *gin.Context) {
	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusNotFound, "Project not found")
		} else {
			utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve project")
		}
		return
	}

	project.Name = body.Name
	project.Description = body.Description

	if err := db.DB.Save(&project).Error; err != nil {
		log.Printf("Failed to update project: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to update project")
		return
	}

	utils.Respond(ctx, http.StatusOK, toProjectResponse(project), "Project updated successfully")
}

func DeleteProject(ctx *gin.Context) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusNotFound, "Project not found")
		} else {
			utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve project")
		}
		return
	}

	// Cascade runs as one transaction so a crash cannot strand children.
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", project.ID)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.SubTask{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Note{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("project_id = ?", project.ID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&project).Error
	})

	if err != nil {
		log.Printf("Failed to delete project: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to delete project")
		return
	}

	utils.Respond(ctx, http.StatusOK, nil, "Project deleted successfully")
}

func GetProjectMembers(ctx *gin.Context) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var memberships []models.ProjectMembership

	err := db.DB.Where("project_id = ?", projectID).Preload("User").Find(&memberships).Error

	if err != nil {
		log.Printf("Failed to list project members: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve project members")
		return
	}

	response := make([]types.ProjectMemberResponse, 0, len(memberships))

	for _, membership := range memberships {
		response = append(response, types.ProjectMemberResponse{
			User:      toUserResponse(membership.User),
			Role:      membership.Role,
			CreatedAt: membership.CreatedAt,
		})
	}

	utils.Respond(ctx, http.StatusOK, response, "Project members fetched successfully")
}

func AddProjectMember(ctx *gin.Context) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var body AddProjectMemberRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	if !types.IsValidUserRole(body.Role) {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid role provided")
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User

	if err := db.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusNotFound, "User not found")
		} else {
			utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	var membership models.ProjectMembership

	err := db.DB.Where("project_id = ? AND user_id = ?", projectID, user.ID).First(&membership).Error

	switch {
	case err == nil:
		membership.Role = body.Role

		if err := db.DB.Save(&membership).Error; err != nil {
			log.Printf("Failed to update membership: %v", err)
			utils.RespondError(ctx, http.StatusInternalServerError, "Failed to add project member")
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		membership = models.ProjectMembership{
			UserID:    user.ID,
			ProjectID: projectID,
			Role:      body.Role,
		}

		if err := db.DB.Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				utils.RespondError(ctx, http.StatusConflict, "User is already a member of this project")
				return
			}
			log.Printf("Failed to create membership: %v", err)
			utils.RespondError(ctx, http.StatusInternalServerError, "Failed to add project member")
			return
		}
	default:
		log.Printf("Database error when adding member: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.Respond(ctx, http.StatusCreated, nil, "Project member added successfully")
}

func UpdateMemberRole(ctx *gin.Context) {
	var body UpdateMemberRoleRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	if !types.IsValidUserRole(body.Role) {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid role provided")
		return
	}

	membership, ok := findProjectMembership(ctx)

	if !ok {
		return
	}

	membership.Role = body.Role

	if err := db.DB.Save(&membership).Error; err != nil {
		log.Printf("Failed to update member role: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to update member role")
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"role": membership.Role}, "Project member role updated successfully")
}

// findProjectMembership loads a membership addressed by the project and
// user route params.
func findProjectMembership(ctx *gin.Context) (models.ProjectMembership, bool) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return models.ProjectMembership{}, false
	}

	userID, ok := parseIDParam(ctx, "user_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid user ID")
		return models.ProjectMembership{}, false
	}

	var membership models.ProjectMembership

	err := db.DB.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusNotFound, "Project member not found")
		} else {
			utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		}
		return models.ProjectMembership{}, false
	}

	return membership, true
}

func RemoveProjectMember(ctx *gin.Context) {
	membership, ok := findProjectMembership(ctx)

	if !ok {
		return
	}

	// Hard delete, or the unique (user, project) index would keep holding
	// the pair and block a later re-invite.
	if err := db.DB.Unscoped().Delete(&membership).Error; err != nil {
		log.Printf("Failed to remove project member: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to remove project member")
		return
	}

	utils.Respond(ctx, http.StatusOK, nil, "Project member removed successfully")
}
