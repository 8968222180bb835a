package middleware

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/acesped/portal/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

var exposeDebugInfo atomic.Bool

// SetDebugMode controls whether unexpected errors carry their text in
// error.debugInfo. Keep it off in production.
func SetDebugMode(enabled bool) {
	exposeDebugInfo.Store(enabled)
}

type errorMapping struct {
	target   error
	status   int
	code     dto.ErrorCode
	fallback string
	severity dto.ErrorSeverity
}

// errorMappings is checked in order; the first class err wraps wins.
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed", dto.ErrorSeverityWarning},
	{apperrors.ErrInvalidState, http.StatusBadRequest, dto.ErrorCodeInvalidState, "Operation not allowed in the current state", dto.ErrorSeverityWarning},
	{apperrors.ErrThresholdNotMet, http.StatusBadRequest, dto.ErrorCodeThresholdNotMet, "Threshold not met", dto.ErrorSeverityWarning},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found", dto.ErrorSeverityWarning},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists", dto.ErrorSeverityWarning},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeResourceConflict, "Conflict", dto.ErrorSeverityWarning},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials", dto.ErrorSeverityWarning},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired", dto.ErrorSeverityWarning},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token", dto.ErrorSeverityWarning},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", dto.ErrorSeverityWarning},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled", dto.ErrorSeverityWarning},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied", dto.ErrorSeverityWarning},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		message := apperrors.MessageOf(err)
		if message == "" {
			message = m.fallback
		}
		errorDetail := dto.NewErrorDetail(m.code, message).WithSeverity(m.severity)
		if details := apperrors.DetailsOf(err); len(details) > 0 {
			errorDetail = errorDetail.WithDetails(details)
		}
		var ce *apperrors.CustomError
		if errors.As(err, &ce) && ce.Code != "" {
			errorDetail.Code = dto.ErrorCode(ce.Code)
		}

		c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(errorDetail))
		return
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("requestId", c.GetString(requestIDKey)).
		Msg("Unhandled error")

	errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
		WithSeverity(dto.ErrorSeverityCritical)
	if exposeDebugInfo.Load() {
		errorDetail = errorDetail.WithDebugInfo("%v", err)
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
}

// Recovery turns panics into the standard 500 response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Str("requestId", c.GetString(requestIDKey)).
			Msg("Recovered from panic")

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
	})
}
