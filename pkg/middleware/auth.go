package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dkozyrev/softvault/pkg/configs"
	"github.com/dkozyrev/softvault/pkg/internal/directory"
	"github.com/dkozyrev/softvault/pkg/log"
)

// AuthMiddleware establishes the caller identity from the headers the auth
// proxy (oauth2-proxy in front of the service) injects, then resolves the
// caller's role against the corporate directory.
//   - X-Auth-Request-Email / X-Forwarded-Email carry the identity
//   - configured path prefixes (metrics, health) skip authentication
//   - in development ?user= may stand in for the proxy headers
//
// The resolved user and role are stored in both the gin context and the
// request context so handlers and services can read them.
func AuthMiddleware(conf configs.DirectoryConfig, resolver directory.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		email := strings.TrimSpace(c.GetHeader("X-Auth-Request-Email"))
		if email == "" {
			email = strings.TrimSpace(c.GetHeader("X-Forwarded-Email"))
		}

		if email == "" && conf.DevAllowQuery {
			email = strings.TrimSpace(c.Query("user"))
		}

		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user := employeeID(email)

		role := directory.RoleUser
		if resolver != nil {
			r, err := resolver.Resolve(c.Request.Context(), user)
			if err != nil {
				// Directory trouble degrades to the read-only role rather
				// than failing the request.
				log.Logger().Warn().Err(err).Str("user", user).Msg("role resolution failed")
			}

			role = r
		}

		setIdentity(c, user, role)
		c.Next()
	}
}

// employeeID strips the mail domain: the directory is keyed by account
// name, not address.
func employeeID(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}

	return email
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
