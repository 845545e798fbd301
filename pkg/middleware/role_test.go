package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dkozyrev/softvault/pkg/configs"
	"github.com/dkozyrev/softvault/pkg/internal/directory"
)

type staticResolver struct {
	role directory.Role
	err  error
}

func (s staticResolver) Resolve(_ context.Context, _ string) (directory.Role, error) {
	return s.role, s.err
}

func (s staticResolver) Invalidate(_ context.Context, _ string) error { return nil }

func newAuthRouter(role directory.Role, minRole directory.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)

	conf := configs.DirectoryConfig{Enabled: true, DevAllowQuery: true}

	r := gin.New()
	r.Use(AuthMiddleware(conf, staticResolver{role: role}))
	r.POST("/guarded", RequireMinRole(minRole), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetUser(c), "role": GetRole(c).String()})
	})

	return r
}

func TestAuthRejectsMissingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AuthMiddleware(configs.DirectoryConfig{Enabled: true}, staticResolver{role: directory.RoleUser}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthSkipPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)

	conf := configs.DirectoryConfig{Enabled: true, SkipPaths: []string{"/metrics"}}

	r := gin.New()
	r.Use(AuthMiddleware(conf, staticResolver{role: directory.RoleUser}))
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on exempt path, got %d", w.Code)
	}
}

func TestAuthProxyHeaderIdentity(t *testing.T) {
	r := newAuthRouter(directory.RoleModerator, directory.RoleModerator)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set("X-Auth-Request-Email", "ivanov@corp.local")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if body := w.Body.String(); !strings.Contains(body, `"user":"ivanov"`) {
		t.Fatalf("expected employee id without mail domain, got %s", body)
	}
}

func TestRequireMinRoleForbidsLowerRole(t *testing.T) {
	r := newAuthRouter(directory.RoleUser, directory.RoleModerator)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/guarded?user=petrov", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequireMinRoleAdminOnly(t *testing.T) {
	r := newAuthRouter(directory.RoleModerator, directory.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/guarded?user=petrov", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for moderator on admin route, got %d", w.Code)
	}

	if body := w.Body.String(); !strings.Contains(body, "admin role required") {
		t.Fatalf("expected admin message, got %s", body)
	}
}

func TestRequireMinRoleAllowsHigherRole(t *testing.T) {
	r := newAuthRouter(directory.RoleAdmin, directory.RoleModerator)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/guarded?user=petrov", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

