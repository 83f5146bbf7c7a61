package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/collabcore-dev/collabcore/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func Respond(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, types.APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, types.APIResponse{
		StatusCode: status,
		Message:    message,
		Success:    false,
	})
}

// RespondBindingError maps gin binding failures to the envelope, including
// field-level detail when the failure came from validation tags.
func RespondBindingError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, types.APIResponse{
		StatusCode: http.StatusBadRequest,
		Message:    "Invalid request",
		Success:    false,
		Errors:     fieldErrors(err),
	})
}

func fieldErrors(err error) []types.FieldError {
	var validationErrors validator.ValidationErrors

	if !errors.As(err, &validationErrors) {
		return nil
	}

	out := make([]types.FieldError, 0, len(validationErrors))

	for _, fieldError := range validationErrors {
		out = append(out, types.FieldError{
			Field:   fieldError.Field(),
			Message: validationMessage(fieldError),
		})
	}

	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "lowercase":
		return "must be in lowercase"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "is invalid"
	}
}
