package types

import "time"

// TaskAttachment is the shape stored in the tasks.attachments JSONB column.
type TaskAttachment struct {
	URL      string `json:"url"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
}

type SubTaskResponse struct {
	ID          uint      `json:"id"`
	TaskID      uint      `json:"taskId"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedByID uint      `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TaskResponse struct {
	ID          uint              `json:"id"`
	ProjectID   uint              `json:"projectId"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	AssignedTo  *UserResponse     `json:"assignedTo,omitempty"`
	AssignedBy  uint              `json:"assignedBy"`
	Attachments []TaskAttachment  `json:"attachments"`
	SubTasks    []SubTaskResponse `json:"subtasks,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type NoteResponse struct {
	ID          uint      `json:"id"`
	ProjectID   uint      `json:"projectId"`
	Content     string    `json:"content"`
	CreatedByID uint      `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
