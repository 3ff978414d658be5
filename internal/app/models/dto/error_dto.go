package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Authentication errors
	ErrorCodeInvalidToken ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken ErrorCode = "AUTH_006"
	ErrorCodeUnauthorized ErrorCode = "AUTH_008"

	// Authorization errors
	ErrorCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrorCodeInvalidOrigin ErrorCode = "INVALID_ORIGIN"
	ErrorCodeNotPurchased  ErrorCode = "NOT_PURCHASED"

	// Exam policy errors
	ErrorCodeAlreadyPassed      ErrorCode = "EXAM_001"
	ErrorCodeMaxAttempts        ErrorCode = "EXAM_002"
	ErrorCodeNoActiveAttempt    ErrorCode = "EXAM_003"
	ErrorCodeTimeLimitExceeded  ErrorCode = "EXAM_004"
	ErrorCodeCertificateRevoked ErrorCode = "CERT_001"

	// Resource errors
	ErrorCodeResourceNotFound ErrorCode = "RES_001"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeRateLimited    ErrorCode = "SRV_004"
)

// ErrorResponse represents the standard error response structure.
// Every error path returns at least the error string.
type ErrorResponse struct {
	Error   string      `json:"error" example:"No active exam attempt found"`
	Code    ErrorCode   `json:"code" example:"EXAM_003"`
	Details interface{} `json:"details,omitempty"`
}

// NewErrorResponse creates a standard error response
func NewErrorResponse(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: message,
		Code:  code,
	}
}

// WithDetails adds additional details to the error
func (e *ErrorResponse) WithDetails(details interface{}) *ErrorResponse {
	e.Details = details
	return e
}

// HandleValidationError converts binding/validator errors into a single error response
// naming each violated constraint.
func HandleValidationError(err error) *ErrorResponse {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return NewErrorResponse(ErrorCodeValidationFailed, "Invalid request body")
	}

	messages := make([]string, 0, len(validationErrs))
	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		msg := formatValidationError(fe)
		messages = append(messages, msg)
		fields[fe.Field()] = msg
	}

	return NewErrorResponse(ErrorCodeValidationFailed, strings.Join(messages, "; ")).WithDetails(fields)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "notblank":
		return e.Field() + " must not be blank"
	case "slug":
		return e.Field() + " must be a course slug"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
