package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the application.
const (
	CodeAuthRequired  = "AUTH_REQUIRED"
	CodeValidation    = "VALIDATION_ERROR"
	CodeConflict      = "CONFLICT"
	CodeNotFound      = "NOT_FOUND"
	CodeRemoteFailure = "REMOTE_FAILURE"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Code == code
}

// NewAuthRequiredError signals that the action needs a signed-in viewer.
func NewAuthRequiredError(action string) *AppError {
	return &AppError{
		Code:    CodeAuthRequired,
		Message: fmt.Sprintf("Please sign in to %s", action),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewConflictError wraps a duplicate-key rejection from the remote store.
func NewConflictError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Err:     err,
	}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewRemoteFailureError wraps a network or service error from the remote store.
func NewRemoteFailureError(operation string, err error) *AppError {
	return &AppError{
		Code:    CodeRemoteFailure,
		Message: fmt.Sprintf("Failed to %s", operation),
		Err:     err,
	}
}

// RespondWithError writes a standardized error response, mapping AppError
// codes to HTTP statuses.
func RespondWithError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	response := ErrorResponse{Error: err.Error()}

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
		switch appErr.Code {
		case CodeAuthRequired:
			status = fiber.StatusUnauthorized
		case CodeValidation:
			status = fiber.StatusBadRequest
		case CodeConflict:
			status = fiber.StatusConflict
		case CodeNotFound:
			status = fiber.StatusNotFound
		case CodeRemoteFailure:
			status = fiber.StatusBadGateway
		}
	}

	return c.Status(status).JSON(response)
}
