package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/SscSPs/books_backend/internal/dto"
	"github.com/SscSPs/books_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	codeValidation      = "VALIDATION_ERROR"
	codeUnbalanced      = "UNBALANCED_ENTRY"
	codeInvalidState    = "INVALID_STATE_TRANSITION"
	codeConflict        = "CONFLICT"
	codeDuplicate       = "DUPLICATE"
	codeForbidden       = "FORBIDDEN"
	codeNotFound        = "NOT_FOUND"
	codeInternal        = "INTERNAL_ERROR"
	codeInvalidRequest  = "INVALID_REQUEST"
	codeUnauthenticated = "UNAUTHORIZED"
)

// errorResponse maps a service error onto an HTTP status and body.
func errorResponse(err error) (int, dto.ErrorResponse) {
	var stErr *apperrors.InvalidStateTransitionError
	switch {
	case errors.As(err, &stErr):
		return http.StatusConflict, dto.ErrorResponse{
			Error:         err.Error(),
			Code:          codeInvalidState,
			CurrentStatus: stErr.Current,
			Attempted:     stErr.Attempted,
		}
	case errors.Is(err, apperrors.ErrUnbalancedEntry):
		return http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: codeUnbalanced}
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: codeValidation}
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, dto.ErrorResponse{Error: err.Error(), Code: codeForbidden}
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, dto.ErrorResponse{Error: err.Error(), Code: codeNotFound}
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Code: codeConflict}
	case errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Code: codeDuplicate}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error", Code: codeInternal}
	}
}

// handleServiceError writes the mapped error and logs it at a level matching its cause.
func handleServiceError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, body)
}

// badRequest rejects a request that failed binding.
func badRequest(c *gin.Context, err error, msg string) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn(msg, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error(), Code: codeInvalidRequest})
}

// requestContext returns the caller identity set by AuthMiddleware, answering 401 when absent.
func requestContext(c *gin.Context) (domain.RequestContext, bool) {
	rc, ok := middleware.GetRequestContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Request context not found")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Code: codeUnauthenticated})
		return domain.RequestContext{}, false
	}
	return rc, true
}
