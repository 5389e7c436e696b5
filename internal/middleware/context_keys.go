package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// principalKey is the key used to store the authenticated principal in the request context.
const principalKey = contextKey("principal")

// WithPrincipal returns a copy of ctx carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipalFromContext retrieves the authenticated principal from the Gin request context.
// It returns the principal and a boolean indicating if it was found.
func GetPrincipalFromContext(c *gin.Context) (string, bool) {
	principal, ok := c.Request.Context().Value(principalKey).(string)
	if !ok || principal == "" {
		return "", false
	}
	return principal, true
}
