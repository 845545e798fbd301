package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/dkozyrev/softvault/pkg/configs"
	"github.com/dkozyrev/softvault/pkg/internal/storage/kv"
)

const (
	modGroup   = "cn=softvault-moderators,ou=groups,dc=corp,dc=local"
	adminGroup = "cn=softvault-admins,ou=groups,dc=corp,dc=local"
)

func testConfig() *configs.DirectoryConfig {
	return &configs.DirectoryConfig{
		Enabled:         true,
		ModeratorGroup:  modGroup,
		AdminGroup:      adminGroup,
		CacheTTLMinutes: 15,
		TimeoutSeconds:  5,
	}
}

func newTestClient(t *testing.T, search searchFunc) *Client {
	t.Helper()

	store, err := kv.NewMemoryKV(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewMemoryKV: %v", err)
	}

	c := New(testConfig(), nil, store)
	c.search = search

	return c
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{" Moderator ", RoleModerator},
		{"user", RoleUser},
		{"", RoleUser},
		{"nonsense", RoleUser},
	}

	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRoleOrdering(t *testing.T) {
	if !(RoleUser < RoleModerator && RoleModerator < RoleAdmin) {
		t.Error("role ordering broken")
	}
}

func TestResolveAdmin(t *testing.T) {
	c := newTestClient(t, func(ctx context.Context, cfg *configs.DirectoryConfig, user string) ([]string, error) {
		return []string{modGroup, adminGroup}, nil
	})

	role, err := c.Resolve(context.Background(), "jdoe")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if role != RoleAdmin {
		t.Errorf("role = %v, want admin", role)
	}
}

func TestResolveModerator(t *testing.T) {
	c := newTestClient(t, func(ctx context.Context, cfg *configs.DirectoryConfig, user string) ([]string, error) {
		return []string{modGroup, "cn=unrelated,ou=groups,dc=corp,dc=local"}, nil
	})

	role, err := c.Resolve(context.Background(), "jdoe")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if role != RoleModerator {
		t.Errorf("role = %v, want moderator", role)
	}
}

func TestResolvePlainUser(t *testing.T) {
	c := newTestClient(t, func(ctx context.Context, cfg *configs.DirectoryConfig, user string) ([]string, error) {
		return nil, nil
	})

	role, err := c.Resolve(context.Background(), "jdoe")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if role != RoleUser {
		t.Errorf("role = %v, want user", role)
	}
}

func TestResolveUsesCache(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(ctx context.Context, cfg *configs.DirectoryConfig, user string) ([]string, error) {
		calls++
		return []string{modGroup}, nil
	})

	ctx := context.Background()

	for range 3 {
		if _, err := c.Resolve(ctx, "jdoe"); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("ldap searched %d times, want 1", calls)
	}
}

func TestResolveErrorPropagates(t *testing.T) {
	wantErr := errors.New("connection refused")
	c := newTestClient(t, func(ctx context.Context, cfg *configs.DirectoryConfig, user string) ([]string, error) {
		return nil, wantErr
	})

	role, err := c.Resolve(context.Background(), "jdoe")
	if !errors.Is(err, wantErr) {
		t.Errorf("Resolve error = %v, want %v", err, wantErr)
	}

	if role != RoleUser {
		t.Errorf("role on error = %v, want user", role)
	}
}

func TestResolveEmptyUser(t *testing.T) {
	c := newTestClient(t, func(ctx context.Context, cfg *configs.DirectoryConfig, user string) ([]string, error) {
		t.Fatal("search should not be called for empty user")
		return nil, nil
	})

	if _, err := c.Resolve(context.Background(), "  "); err == nil {
		t.Error("expected error for empty user")
	}
}

func TestInvalidate(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(ctx context.Context, cfg *configs.DirectoryConfig, user string) ([]string, error) {
		calls++
		return []string{adminGroup}, nil
	})

	ctx := context.Background()

	if _, err := c.Resolve(ctx, "jdoe"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if err := c.Invalidate(ctx, "jdoe"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	if _, err := c.Resolve(ctx, "jdoe"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if calls != 2 {
		t.Errorf("ldap searched %d times after invalidate, want 2", calls)
	}
}
