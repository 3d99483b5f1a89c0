package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type AppError struct {
	Code       string            // Error code (e.g., VALIDATION_ERROR)
	Message    string            // User-friendly message
	HTTPStatus int               // HTTP status code
	Fields     map[string]string // Field-level messages for validation errors
	Err        error             // Wrapped original error (optional)
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError without wrapping
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap creates an AppError that wraps an existing error
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Validation reports malformed input. fields maps the offending field to a
// specific message.
func Validation(fields map[string]string) *AppError {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fields[k]))
	}
	return &AppError{
		Code:       CodeValidation,
		Message:    "validation failed: " + strings.Join(parts, "; "),
		HTTPStatus: http.StatusBadRequest,
		Fields:     fields,
	}
}

// InvalidField is a single-field validation error.
func InvalidField(field, message string) *AppError {
	return Validation(map[string]string{field: message})
}

// Configuration reports missing or incomplete configuration, such as
// billing rules for a vehicle type.
func Configuration(message string) *AppError {
	return New(CodeConfiguration, message, http.StatusUnprocessableEntity)
}

// Precondition reports an operation attempted in the wrong state.
func Precondition(message string) *AppError {
	return New(CodePrecondition, message, http.StatusConflict)
}

// NotFound reports a missing resource.
func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found", http.StatusNotFound)
}

// Internal wraps an unexpected error.
func Internal(err error) *AppError {
	return Wrap(err, CodeInternalError, "an unexpected error occurred", http.StatusInternalServerError)
}

// HasCode reports whether err, or anything it wraps, is an AppError with code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
