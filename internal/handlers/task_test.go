package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/collabcore-dev/collabcore/db"
	"github.com/collabcore-dev/collabcore/internal/models"
	"github.com/collabcore-dev/collabcore/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedProjectWithUsers returns tokens for an admin, a project_admin and a
// plain member of a fresh project, plus the project id.
func seedProjectWithUsers(t *testing.T, r *gin.Engine) (string, string, string, uint) {
	t.Helper()

	adminToken := registerAndLogin(t, r, "alice", "alice@x.com", "password1")
	registerUser(t, r, "paula", "paula@x.com", "password1")
	registerUser(t, r, "bob", "bob@x.com", "password1")

	projectID := createProject(t, r, adminToken, "P1")
	addProjectMember(t, r, adminToken, projectID, "paula@x.com", types.RoleProjectAdmin)
	addProjectMember(t, r, adminToken, projectID, "bob@x.com", types.RoleMember)

	projectAdminToken, _ := loginUser(t, r, "paula@x.com", "password1")
	memberToken, _ := loginUser(t, r, "bob@x.com", "password1")

	return adminToken, projectAdminToken, memberToken, projectID
}

func createTask(t *testing.T, r *gin.Engine, token string, projectID uint, title string, assignedTo uint) uint {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/tasks", projectID), gin.H{
		"title":       title,
		"description": "a task",
		"assignedTo":  assignedTo,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, "create task failed: %s", w.Body.String())

	return uint(dataMap(t, decodeEnvelope(t, w))["id"].(float64))
}

func userID(t *testing.T, email string) uint {
	t.Helper()

	var user models.User
	require.NoError(t, db.DB.Where("email = ?", email).First(&user).Error)

	return user.ID
}

func TestCreateTask_RoleEnforcement(t *testing.T) {
	r := setupServer(t)

	_, projectAdminToken, memberToken, projectID := seedProjectWithUsers(t, r)

	body := gin.H{
		"title":       "task",
		"description": "a task",
		"assignedTo":  userID(t, "bob@x.com"),
	}

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/tasks", projectID), body, memberToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/tasks", projectID), body, projectAdminToken)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateTask_AssigneeValidation(t *testing.T) {
	r := setupServer(t)

	adminToken, _, _, projectID := seedProjectWithUsers(t, r)

	// Assignee must exist.
	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/tasks", projectID), gin.H{
		"title":       "task",
		"description": "a task",
		"assignedTo":  99999,
	}, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Assignee must be a member of the project.
	registerUser(t, r, "eve", "eve@x.com", "password1")

	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/tasks", projectID), gin.H{
		"title":       "task",
		"description": "a task",
		"assignedTo":  userID(t, "eve@x.com"),
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTask_DefaultsToTodo(t *testing.T) {
	r := setupServer(t)

	adminToken, _, _, projectID := seedProjectWithUsers(t, r)
	taskID := createTask(t, r, adminToken, projectID, "task", userID(t, "bob@x.com"))

	var task models.Task
	require.NoError(t, db.DB.First(&task, taskID).Error)
	assert.Equal(t, types.TaskStatusTodo, task.Status)
}

func TestUpdateTask_CallerStatusIsAuthoritative(t *testing.T) {
	r := setupServer(t)

	adminToken, _, _, projectID := seedProjectWithUsers(t, r)
	taskID := createTask(t, r, adminToken, projectID, "task", userID(t, "bob@x.com"))

	w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/projects/%d/tasks/%d", projectID, taskID), gin.H{
		"status": types.TaskStatusDone,
	}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var task models.Task
	require.NoError(t, db.DB.First(&task, taskID).Error)
	assert.Equal(t, types.TaskStatusDone, task.Status)

	// Unknown statuses are rejected.
	w = doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/projects/%d/tasks/%d", projectID, taskID), gin.H{
		"status": "abandoned",
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTask_RequiresAtLeastOneField(t *testing.T) {
	r := setupServer(t)

	adminToken, _, _, projectID := seedProjectWithUsers(t, r)
	taskID := createTask(t, r, adminToken, projectID, "task", userID(t, "bob@x.com"))

	w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/projects/%d/tasks/%d", projectID, taskID), gin.H{}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTask_ProjectOwnershipCheck(t *testing.T) {
	r := setupServer(t)

	adminToken, _, _, projectID := seedProjectWithUsers(t, r)
	taskID := createTask(t, r, adminToken, projectID, "task", userID(t, "bob@x.com"))

	otherProjectID := createProject(t, r, adminToken, "P2")

	// Addressing the task through the wrong project is rejected.
	w := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/tasks/%d", otherProjectID, taskID), nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTask_NonNumericIDsRejected(t *testing.T) {
	r := setupServer(t)

	adminToken, _, _, projectID := seedProjectWithUsers(t, r)

	// Non-numeric ids never reach the database; they are 400s, not 500s.
	w := doRequest(t, r, http.MethodGet, "/api/v1/projects/abc/tasks", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/tasks/abc", projectID), nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d/subtasks/abc", projectID), nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/projects/%d/members/abc", projectID), gin.H{
		"role": types.RoleMember,
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTasks_MemberCanRead(t *testing.T) {
	r := setupServer(t)

	adminToken, _, memberToken, projectID := seedProjectWithUsers(t, r)
	createTask(t, r, adminToken, projectID, "task", userID(t, "bob@x.com"))

	w := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/tasks", projectID), nil, memberToken)
	require.Equal(t, http.StatusOK, w.Code)

	tasks, ok := decodeEnvelope(t, w).Data.([]interface{})
	require.True(t, ok)
	require.Len(t, tasks, 1)

	task := tasks[0].(map[string]interface{})
	assignee := task["assignedTo"].(map[string]interface{})
	assert.Equal(t, "bob", assignee["username"])
}

func TestSubTasks_CreateUpdateDelete(t *testing.T) {
	r := setupServer(t)

	adminToken, _, memberToken, projectID := seedProjectWithUsers(t, r)
	taskID := createTask(t, r, adminToken, projectID, "task", userID(t, "bob@x.com"))

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/tasks/%d/subtasks", projectID, taskID), gin.H{
		"title": "subtask",
	}, memberToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/tasks/%d/subtasks", projectID, taskID), gin.H{
		"title": "subtask",
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code)

	subTaskID := uint(dataMap(t, decodeEnvelope(t, w))["id"].(float64))

	w = doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/projects/%d/subtasks/%d", projectID, subTaskID), gin.H{
		"isCompleted": true,
	}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var subTask models.SubTask
	require.NoError(t, db.DB.First(&subTask, subTaskID).Error)
	assert.True(t, subTask.IsCompleted)

	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d/subtasks/%d", projectID, subTaskID), nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	err := db.DB.First(&subTask, subTaskID).Error
	assert.Error(t, err)
}

func TestDeleteTask_RemovesSubTasks(t *testing.T) {
	r := setupServer(t)

	adminToken, _, _, projectID := seedProjectWithUsers(t, r)
	taskID := createTask(t, r, adminToken, projectID, "task", userID(t, "bob@x.com"))

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/tasks/%d/subtasks", projectID, taskID), gin.H{
		"title": "subtask",
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d/tasks/%d", projectID, taskID), nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.DB.Model(&models.SubTask{}).Where("task_id = ?", taskID).Count(&count).Error)
	assert.Zero(t, count)
}
