package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/collabcore-dev/collabcore/db"
	"github.com/collabcore-dev/collabcore/internal/models"
	"github.com/collabcore-dev/collabcore/internal/types"
	"github.com/collabcore-dev/collabcore/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description" binding:"required"`
	AssignedTo  uint                   `json:"assignedTo" binding:"required"`
	Attachments []types.TaskAttachment `json:"attachments"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  uint   `json:"assignedTo"`
	Status      string `json:"status"`
}

type CreateSubTaskRequest struct {
	Title string `json:"title" binding:"required"`
}

type UpdateSubTaskRequest struct {
	Title       string `json:"title"`
	IsCompleted *bool  `json:"isCompleted"`
}

func toSubTaskResponse(subTask models.SubTask) types.SubTaskResponse {
	return types.SubTaskResponse{
		ID:          subTask.ID,
		TaskID:      subTask.TaskID,
		Title:       subTask.Title,
		IsCompleted: subTask.IsCompleted,
		CreatedByID: subTask.CreatedByID,
		CreatedAt:   subTask.CreatedAt,
	}
}

func toTaskResponse(task models.Task) types.TaskResponse {
	response := types.TaskResponse{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		AssignedBy:  task.AssignedByID,
		Attachments: []types.TaskAttachment{},
		CreatedAt:   task.CreatedAt,
	}

	if len(task.Attachments) > 0 {
		if err := json.Unmarshal(task.Attachments, &response.Attachments); err != nil {
			log.Printf("Failed to decode attachments for task %d: %v", task.ID, err)
		}
	}

	if task.AssignedTo != nil {
		assignee := toUserResponse(*task.AssignedTo)
		response.AssignedTo = &assignee
	}

	for _, subTask := range task.SubTasks {
		response.SubTasks = append(response.SubTasks, toSubTaskResponse(subTask))
	}

	return response
}

// requireProjectMember checks that the given user holds a membership on
// the project. Used to validate task assignees, not the caller.
func requireProjectMember(userID, projectID uint) (bool, error) {
	var membership models.ProjectMembership

	err := db.DB.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func ListTasks(ctx *gin.Context) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var tasks []models.Task

	err := db.DB.Where("project_id = ?", projectID).
		Preload("AssignedTo").Find(&tasks).Error

	if err != nil {
		log.Printf("Failed to list tasks: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve tasks")
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		response = append(response, toTaskResponse(task))
	}

	utils.Respond(ctx, http.StatusOK, response, "Tasks fetched successfully")
}

func CreateTask(ctx *gin.Context) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var assignee models.User

	if err := db.DB.First(&assignee, body.AssignedTo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusNotFound, "Assigned user not found")
		} else {
			utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	isMember, err := requireProjectMember(assignee.ID, projectID)

	if err != nil {
		log.Printf("Database error when checking assignee membership: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !isMember {
		utils.RespondError(ctx, http.StatusBadRequest, "User not part of project")
		return
	}

	attachments, err := json.Marshal(body.Attachments)

	if err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid attachments")
		return
	}

	task := models.Task{
		ProjectID:    projectID,
		Title:        body.Title,
		Description:  body.Description,
		Status:       types.TaskStatusTodo,
		AssignedToID: &assignee.ID,
		AssignedByID: userID,
		Attachments:  datatypes.JSON(attachments),
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Failed to create task: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to create task")
		return
	}

	task.AssignedTo = &assignee

	utils.Respond(ctx, http.StatusCreated, toTaskResponse(task), "Task created successfully")
}

// findProjectTask loads a task and enforces that it belongs to the project
// addressed by the route.
func findProjectTask(ctx *gin.Context) (models.Task, bool) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return models.Task{}, false
	}

	taskID, ok := parseIDParam(ctx, "task_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid task ID")
		return models.Task{}, false
	}

	var task models.Task

	if err := db.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusNotFound, "Task not found")
		} else {
			utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve task")
		}
		return models.Task{}, false
	}

	if task.ProjectID != projectID {
		utils.RespondError(ctx, http.StatusBadRequest, "Task does not belong to project")
		return models.Task{}, false
	}

	return task, true
}

func GetTask(ctx *gin.Context) {
	task, ok := findProjectTask(ctx)

	if !ok {
		return
	}

	err := db.DB.Preload("AssignedTo").Preload("SubTasks").First(&task, task.ID).Error

	if err != nil {
		log.Printf("Failed to load task detail: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve task")
		return
	}

	utils.Respond(ctx, http.StatusOK, toTaskResponse(task), "Task found successfully")
}

func UpdateTask(ctx *gin.Context) {
	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	if body.Title == "" && body.Description == "" && body.AssignedTo == 0 && body.Status == "" {
		utils.RespondError(ctx, http.StatusBadRequest, "At least one field is required")
		return
	}

	task, ok := findProjectTask(ctx)

	if !ok {
		return
	}

	updates := make(map[string]interface{})

	if body.Title != "" {
		updates["title"] = body.Title
	}

	if body.Description != "" {
		updates["description"] = body.Description
	}

	if body.AssignedTo != 0 {
		var assignee models.User

		if err := db.DB.First(&assignee, body.AssignedTo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondError(ctx, http.StatusNotFound, "Assigned user not found")
			} else {
				utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		isMember, err := requireProjectMember(assignee.ID, task.ProjectID)

		if err != nil {
			log.Printf("Database error when checking assignee membership: %v", err)
			utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
			return
		}

		if !isMember {
			utils.RespondError(ctx, http.StatusBadRequest, "User not part of project")
			return
		}

		updates["assigned_to_id"] = assignee.ID
	}

	// The caller's status is authoritative here.
	if body.Status != "" {
		if !types.IsValidTaskStatus(body.Status) {
			utils.RespondError(ctx, http.StatusBadRequest, "Invalid task status")
			return
		}
		updates["status"] = body.Status
	}

	if err := db.DB.Model(&task).Updates(updates).Error; err != nil {
		log.Printf("Failed to update task: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to update task")
		return
	}

	if err := db.DB.Preload("AssignedTo").First(&task, task.ID).Error; err != nil {
		log.Printf("Failed to refresh task: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to update task")
		return
	}

	utils.Respond(ctx, http.StatusOK, toTaskResponse(task), "Task updated successfully")
}

func DeleteTask(ctx *gin.Context) {
	task, ok := findProjectTask(ctx)

	if !ok {
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.SubTask{}).Error; err != nil {
			return err
		}

		return tx.Delete(&task).Error
	})

	if err != nil {
		log.Printf("Failed to delete task: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to delete task")
		return
	}

	utils.Respond(ctx, http.StatusOK, nil, "Task deleted successfully")
}

func CreateSubTask(ctx *gin.Context) {
	task, ok := findProjectTask(ctx)

	if !ok {
		return
	}

	var body CreateSubTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	subTask := models.SubTask{
		TaskID:      task.ID,
		Title:       body.Title,
		IsCompleted: false,
		CreatedByID: userID,
	}

	if err := db.DB.Create(&subTask).Error; err != nil {
		log.Printf("Failed to create subtask: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to create subtask")
		return
	}

	utils.Respond(ctx, http.StatusCreated, toSubTaskResponse(subTask), "SubTask created successfully")
}

// findProjectSubTask loads a subtask and enforces that its parent task
// belongs to the project addressed by the route.
func findProjectSubTask(ctx *gin.Context) (models.SubTask, bool) {
	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid project ID")
		return models.SubTask{}, false
	}

	subTaskID, ok := parseIDParam(ctx, "subtask_id")

	if !ok {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid subtask ID")
		return models.SubTask{}, false
	}

	var subTask models.SubTask

	err := db.DB.Preload("Task").First(&subTask, subTaskID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusNotFound, "SubTask not found")
		} else {
			utils.RespondError(ctx, http.StatusInternalServerError, "Failed to retrieve subtask")
		}
		return models.SubTask{}, false
	}

	if subTask.Task.ProjectID != projectID {
		utils.RespondError(ctx, http.StatusBadRequest, "SubTask does not belong to project")
		return models.SubTask{}, false
	}

	return subTask, true
}

func UpdateSubTask(ctx *gin.Context) {
	var body UpdateSubTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	if body.Title == "" && body.IsCompleted == nil {
		utils.RespondError(ctx, http.StatusBadRequest, "At least one field is required")
		return
	}

	subTask, ok := findProjectSubTask(ctx)

	if !ok {
		return
	}

	updates := make(map[string]interface{})

	if body.Title != "" {
		updates["title"] = body.Title
	}

	if body.IsCompleted != nil {
		updates["is_completed"] = *body.IsCompleted
	}

	if err := db.DB.Model(&subTask).Updates(updates).Error; err != nil {
		log.Printf("Failed to update subtask: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to update subtask")
		return
	}

	if err := db.DB.First(&subTask, subTask.ID).Error; err != nil {
		log.Printf("Failed to refresh subtask: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to update subtask")
		return
	}

	utils.Respond(ctx, http.StatusOK, toSubTaskResponse(subTask), "Subtask updated successfully")
}

func DeleteSubTask(ctx *gin.Context) {
	subTask, ok := findProjectSubTask(ctx)

	if !ok {
		return
	}

	if err := db.DB.Delete(&subTask).Error; err != nil {
		log.Printf("Failed to delete subtask: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Failed to delete subtask")
		return
	}

	utils.Respond(ctx, http.StatusOK, nil, "Subtask deleted successfully")
}
