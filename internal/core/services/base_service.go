package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/SscSPs/books_backend/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a rejected request; these are caller mistakes, not server faults.
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Warn(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeUser checks that the caller belongs to a business and, when roles are given, holds one of them.
func (s *BaseService) AuthorizeUser(ctx context.Context, rc domain.RequestContext, allowed ...domain.ActorRole) error {
	if rc.TenantID == "" {
		return fmt.Errorf("%w: request carries no business", apperrors.ErrForbidden)
	}
	if !rc.Role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", apperrors.ErrForbidden, rc.Role)
	}
	if len(allowed) > 0 && !slices.Contains(allowed, rc.Role) {
		err := fmt.Errorf("%w: role %q may not perform this action", apperrors.ErrForbidden, rc.Role)
		s.LogWarn(ctx, err, "User not authorized",
			slog.String("user_id", rc.UserID),
			slog.String("business_id", rc.TenantID))
		return err
	}
	return nil
}

// logRejection logs caller errors at warn level and everything else at error level.
func (s *BaseService) logRejection(ctx context.Context, err error, msg string, keyvals ...any) {
	if apperrors.IsClientError(err) {
		s.LogWarn(ctx, err, msg, keyvals...)
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}

// actor returns the identity recorded in audit fields.
func actor(rc domain.RequestContext) string {
	if rc.UserID != "" {
		return rc.UserID
	}
	return string(rc.Role)
}
