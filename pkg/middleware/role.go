package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkozyrev/softvault/pkg/internal/directory"
)

type (
	userKey struct{}
	roleKey struct{}
)

// setIdentity stores the caller identity in both the gin context and the
// request context so downstream services can read it off plain contexts.
func setIdentity(c *gin.Context, user string, role directory.Role) {
	c.Set("user", user)
	c.Set("role", role)

	ctx := context.WithValue(c.Request.Context(), userKey{}, user)
	ctx = context.WithValue(ctx, roleKey{}, role)
	c.Request = c.Request.WithContext(ctx)
}

// GetUser returns the authenticated employee id, or "" on exempt paths.
func GetUser(c *gin.Context) string {
	if v, ok := c.Get("user"); ok {
		if u, ok2 := v.(string); ok2 {
			return u
		}
	}

	if v := c.Request.Context().Value(userKey{}); v != nil {
		if u, ok := v.(string); ok {
			return u
		}
	}

	return ""
}

// GetRole returns the caller's resolved role, defaulting to the read-only
// role when the auth chain never ran.
func GetRole(c *gin.Context) directory.Role {
	if v, ok := c.Get("role"); ok {
		if r, ok2 := v.(directory.Role); ok2 {
			return r
		}
	}

	if v := c.Request.Context().Value(roleKey{}); v != nil {
		if r, ok := v.(directory.Role); ok {
			return r
		}
	}

	return directory.RoleUser
}

// RequireMinRole is the single authorization gate: every mutating route
// declares the minimum role it needs and the enum order does the rest.
func RequireMinRole(minRole directory.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := GetRole(c)
		if r < minRole {
			msg := "forbidden: moderator role required"
			if minRole >= directory.RoleAdmin {
				msg = "forbidden: admin role required"
			}

			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msg})

			return
		}

		c.Next()
	}
}
