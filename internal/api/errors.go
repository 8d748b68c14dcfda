// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/looking-glass/backend/internal/logger"
	"github.com/looking-glass/backend/internal/logstore"
	"github.com/looking-glass/backend/internal/measure"
)

// APIError represents a structured API error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error.
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field.
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewSubmissionError creates a 502 error for a rejected measurement request.
func NewSubmissionError(cause *measure.SubmissionError) *APIError {
	return &APIError{
		Status:  http.StatusBadGateway,
		Code:    "SUBMISSION_ERROR",
		Message: "measurement submission failed",
		Details: cause.Message,
	}
}

// NewBackendUnavailableError creates a 503 error with operator guidance.
func NewBackendUnavailableError(cause error) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "BACKEND_UNAVAILABLE",
		Message: "log storage backend is unavailable",
		Details: cause.Error(),
	}
}

// NewInternalError creates a 500 Internal Server Error.
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// ErrorHandler translates domain errors into JSON responses.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		apiErr        *APIError
		validationErr *logstore.ValidationError
		submissionErr *measure.SubmissionError
		httpErr       *echo.HTTPError
	)

	switch {
	case errors.As(err, &apiErr):
		// already shaped
	case errors.As(err, &validationErr):
		apiErr = NewValidationError(validationErr.Field)
	case errors.As(err, &submissionErr):
		apiErr = NewSubmissionError(submissionErr)
	case errors.Is(err, logstore.ErrBackendUnavailable):
		apiErr = NewBackendUnavailableError(err)
	case errors.Is(err, measure.ErrJobNotFound):
		apiErr = NewNotFoundError("measurement", c.Param("id"))
	case errors.As(err, &httpErr):
		code := "HTTP_ERROR"
		if httpErr.Code == http.StatusNotFound {
			code = "NOT_FOUND"
		}

		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    code,
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
		}

		logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled API error")
	}

	if !c.Response().Committed {
		_ = c.JSON(apiErr.Status, apiErr)
	}
}
