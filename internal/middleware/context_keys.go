package middleware

import (
	"context"

	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// requestContextKey stores the authenticated domain.RequestContext.
const requestContextKey = contextKey("requestContext")

// WithRequestContext returns a copy of ctx carrying the caller identity.
func WithRequestContext(ctx context.Context, rc domain.RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// RequestContextFromCtx retrieves the caller identity from a standard context.
func RequestContextFromCtx(ctx context.Context) (domain.RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey).(domain.RequestContext)
	return rc, ok
}

// GetRequestContext retrieves the authenticated caller identity for a Gin request.
// It returns the identity and a boolean indicating if it was found.
func GetRequestContext(c *gin.Context) (domain.RequestContext, bool) {
	return RequestContextFromCtx(c.Request.Context())
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	rc, ok := GetRequestContext(c)
	if !ok || rc.UserID == "" {
		return "", false
	}
	return rc.UserID, true
}
