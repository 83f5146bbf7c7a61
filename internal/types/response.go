package types

import "time"

// APIResponse is the envelope carried by every response, success or failure.
type APIResponse struct {
	StatusCode int          `json:"statusCode"`
	Data       interface{}  `json:"data"`
	Message    string       `json:"message"`
	Success    bool         `json:"success"`
	Errors     []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type UserResponse struct {
	ID              uint   `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

type ProjectResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedByID uint      `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ProjectSummary struct {
	Project     ProjectResponse `json:"project"`
	Role        string          `json:"role"`
	MemberCount int64           `json:"memberCount"`
}

type ProjectMemberResponse struct {
	User      UserResponse `json:"user"`
	Role      string       `json:"role"`
	CreatedAt time.Time    `json:"createdAt"`
}
