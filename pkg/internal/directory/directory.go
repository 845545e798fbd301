// Package directory resolves identity and roles against the corporate
// directory (LDAP/AD). The auth proxy supplies the employee id; this
// package answers what the employee may do.
//
// Lookups go through a circuit breaker so a flapping domain controller
// degrades requests to the default role instead of hanging them, and
// resolved roles are cached in the KV store for the configured TTL.
package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/sony/gobreaker"

	"github.com/dkozyrev/softvault/pkg/cache"
	"github.com/dkozyrev/softvault/pkg/configs"
	"github.com/dkozyrev/softvault/pkg/internal/storage/kv"
	nlog "github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/metrics"
)

// Resolver answers role lookups for employee ids.
type Resolver interface {
	Resolve(ctx context.Context, user string) (Role, error)
}

// searchFunc performs the raw LDAP search. Swappable in tests.
type searchFunc func(ctx context.Context, cfg *configs.DirectoryConfig, user string) ([]string, error)

// Client resolves roles from LDAP group membership.
type Client struct {
	cfg     *configs.DirectoryConfig
	cache   *cache.Cache
	breaker *gobreaker.CircuitBreaker
	search  searchFunc
}

// New creates a directory client backed by the given KV store.
func New(cfg *configs.DirectoryConfig, breakerCfg *configs.CircuitBreakerConfig, kvStore kv.KVStore) *Client {
	c := &Client{
		cfg:    cfg,
		cache:  cache.NewCache(kvStore),
		search: ldapSearch,
	}

	if breakerCfg != nil && breakerCfg.Enabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "ldap",
			MaxRequests: breakerCfg.MaxRequestsInHalf,
			Interval:    time.Duration(breakerCfg.IntervalSeconds) * time.Second,
			Timeout:     time.Duration(breakerCfg.TimeoutSeconds) * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < breakerCfg.MinRequests {
					return false
				}

				failureRate := float64(counts.TotalFailures) / float64(counts.Requests)

				return failureRate >= breakerCfg.FailureRate
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				nlog.Logger().Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state change")
			},
		})
	}

	return c
}

func cacheKey(user string) string {
	return "role:" + strings.ToLower(user)
}

// Resolve returns the role for an employee id, consulting the cache first.
// When the directory is unreachable the cached value (if any) wins;
// otherwise the error propagates and callers decide the fallback.
func (c *Client) Resolve(ctx context.Context, user string) (Role, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return RoleUser, fmt.Errorf("empty user")
	}

	if cached, err := cache.Get[string](ctx, c.cache, cacheKey(user)); err == nil {
		metrics.DirectoryLookups.WithLabelValues("cache").Inc()

		return ParseRole(cached), nil
	}

	groups, err := c.lookupGroups(ctx, user)
	if err != nil {
		metrics.DirectoryLookups.WithLabelValues("error").Inc()

		return RoleUser, fmt.Errorf("directory lookup for %s: %w", user, err)
	}

	metrics.DirectoryLookups.WithLabelValues("ldap").Inc()

	role := c.roleFromGroups(groups)

	if err := cache.Set(ctx, c.cache, cacheKey(user), role.String(), c.cfg.GetCacheTTL()); err != nil {
		nlog.Logger().Debug().Err(err).Str("user", user).Msg("role cache write failed")
	}

	return role, nil
}

// Invalidate drops a cached role, e.g. after a group membership change.
func (c *Client) Invalidate(ctx context.Context, user string) error {
	return c.cache.Delete(ctx, cacheKey(user))
}

func (c *Client) lookupGroups(ctx context.Context, user string) ([]string, error) {
	if c.breaker == nil {
		return c.search(ctx, c.cfg, user)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.search(ctx, c.cfg, user)
	})
	if err != nil {
		return nil, err
	}

	groups, _ := result.([]string)

	return groups, nil
}

// roleFromGroups maps group DNs to the highest granted role.
func (c *Client) roleFromGroups(groups []string) Role {
	role := RoleUser

	for _, g := range groups {
		switch {
		case strings.EqualFold(g, c.cfg.AdminGroup):
			return RoleAdmin
		case strings.EqualFold(g, c.cfg.ModeratorGroup):
			role = RoleModerator
		}
	}

	return role
}

// ldapSearch binds and fetches the memberOf attribute for a user.
func ldapSearch(ctx context.Context, cfg *configs.DirectoryConfig, user string) ([]string, error) {
	conn, err := ldap.DialURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial ldap: %w", err)
	}
	defer conn.Close()

	conn.SetTimeout(cfg.GetTimeout())

	if cfg.BindDN != "" {
		if err := conn.Bind(cfg.BindDN, cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("bind: %w", err)
		}
	}

	filter := fmt.Sprintf(cfg.UserFilter, ldap.EscapeFilter(user))

	req := ldap.NewSearchRequest(
		cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		1, // one entry is enough
		int(cfg.GetTimeout().Seconds()),
		false,
		filter,
		[]string{"memberOf"},
		nil,
	)

	res, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if len(res.Entries) == 0 {
		return nil, fmt.Errorf("user %s not found in directory", user)
	}

	return res.Entries[0].GetAttributeValues("memberOf"), nil
}
