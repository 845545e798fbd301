package configs

import (
	"time"

	"github.com/spf13/viper"
)

// DirectoryConfig controls identity and role resolution against the
// corporate directory (LDAP/AD). Identity arrives from the auth proxy as a
// request header; group membership determines moderator/admin roles.
type DirectoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// SkipPaths are path prefixes exempt from authentication
	// (e.g. /metrics, /api/v1/health).
	SkipPaths []string `mapstructure:"skip_paths"`
	// DevAllowQuery allows ?user= as a fallback for local development.
	DevAllowQuery bool `mapstructure:"dev_allow_query"`

	// LDAP connection settings.
	URL          string `mapstructure:"url"`
	BindDN       string `mapstructure:"bind_dn"`
	BindPassword string `mapstructure:"bind_password"`
	BaseDN       string `mapstructure:"base_dn"`
	// UserFilter is a template with %s substituted by the employee id.
	UserFilter string `mapstructure:"user_filter"`
	// Group DNs that grant the corresponding role.
	ModeratorGroup string `mapstructure:"moderator_group"`
	AdminGroup     string `mapstructure:"admin_group"`

	TimeoutSeconds  int `mapstructure:"timeout_seconds"  rule:"min=1,max=120"`
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes" rule:"min=1"`
}

// GetTimeout returns the LDAP operation timeout.
func (c *DirectoryConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetCacheTTL returns how long resolved roles stay cached.
func (c *DirectoryConfig) GetCacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

func (c *DirectoryConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("directory.enabled", true)
	v.SetDefault("directory.dev_allow_query", true)
	v.SetDefault("directory.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
	})

	v.SetDefault("directory.url", "ldap://localhost:389")
	v.SetDefault("directory.bind_dn", "")
	v.SetDefault("directory.bind_password", "")
	v.SetDefault("directory.base_dn", "dc=corp,dc=local")
	v.SetDefault("directory.user_filter", "(sAMAccountName=%s)")
	v.SetDefault("directory.moderator_group", "cn=softvault-moderators,ou=groups,dc=corp,dc=local")
	v.SetDefault("directory.admin_group", "cn=softvault-admins,ou=groups,dc=corp,dc=local")

	v.SetDefault("directory.timeout_seconds", 10)
	v.SetDefault("directory.cache_ttl_minutes", 15)
}
