package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nsbs/certify/internal/app/models/dto"
	"github.com/nsbs/certify/internal/pkg/apperrors"
	"github.com/nsbs/certify/internal/pkg/logger"
)

// apiError maps a sentinel to its response
type apiError struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

var apiErrors = []apiError{
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Unauthorized"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidOrigin, http.StatusForbidden, dto.ErrorCodeInvalidOrigin, "Invalid request origin"},
	{apperrors.ErrNotPurchased, http.StatusForbidden, dto.ErrorCodeNotPurchased, "Course not purchased"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrAlreadyPassed, http.StatusBadRequest, dto.ErrorCodeAlreadyPassed, "You have already passed this exam"},
	{apperrors.ErrMaxAttemptsReached, http.StatusBadRequest, dto.ErrorCodeMaxAttempts, "Maximum attempts reached"},
	{apperrors.ErrNoActiveAttempt, http.StatusBadRequest, dto.ErrorCodeNoActiveAttempt, "No active exam attempt found"},
	{apperrors.ErrAttemptNotActive, http.StatusBadRequest, dto.ErrorCodeNoActiveAttempt, "No active exam attempt found"},
	{apperrors.ErrTimeLimitExceeded, http.StatusBadRequest, dto.ErrorCodeTimeLimitExceeded, "Exam time limit exceeded"},
	{apperrors.ErrCourseNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Course not found"},
	{apperrors.ErrQuestionsNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Exam questions not found"},
	{apperrors.ErrCertificateNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Certificate not found"},
	{apperrors.ErrCertificateRevoked, http.StatusGone, dto.ErrorCodeCertificateRevoked, "Certificate has been revoked"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Bad request"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeValidationFailed, "Conflict"},
}

// HandleAPIError writes the JSON error response for err. Validation errors carry
// the violated constraint as their message; unknown errors become a bare 500.
func HandleAPIError(c *gin.Context, err error) {
	for _, e := range apiErrors {
		if !errors.Is(err, e.target) {
			continue
		}
		message := e.message
		if errors.Is(err, apperrors.ErrValidationFailed) || errors.Is(err, apperrors.ErrBadRequest) {
			message = apperrors.MessageOf(err, e.message)
		}

		resp := dto.NewErrorResponse(e.code, message)
		var custom *apperrors.CustomError
		if errors.As(err, &custom) && custom.Details != nil {
			resp = resp.WithDetails(custom.Details)
		}
		c.AbortWithStatusJSON(e.status, resp)
		return
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorCodeInternalServer, "Internal server error"))
}
