package configs

import "github.com/spf13/viper"

// EventsConfig toggles catalog event publishing, globally and per topic.
type EventsConfig struct {
	Enabled bool                `mapstructure:"enabled"`
	Catalog CatalogEventsConfig `mapstructure:"catalog"`
}

// CatalogEventsConfig toggles events in the catalog domain.
type CatalogEventsConfig struct {
	VersionStored    bool `mapstructure:"version_stored"`
	VersionDuplicate bool `mapstructure:"version_duplicate"`
	VersionFilled    bool `mapstructure:"version_filled"`
	VersionDisabled  bool `mapstructure:"version_disabled"`
	VersionRestored  bool `mapstructure:"version_restored"`
	VersionPurged    bool `mapstructure:"version_purged"`
	ProductCreated   bool `mapstructure:"product_created"`
	CategoryLinked   bool `mapstructure:"category_linked"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	// Lifecycle events double as the audit trail, so they default on.
	v.SetDefault("events.catalog.version_stored", true)
	v.SetDefault("events.catalog.version_disabled", true)
	v.SetDefault("events.catalog.version_restored", true)
	v.SetDefault("events.catalog.version_purged", true)
	v.SetDefault("events.catalog.version_filled", true)
	v.SetDefault("events.catalog.product_created", true)

	// High-volume or low-signal events default off.
	v.SetDefault("events.catalog.version_duplicate", false)
	v.SetDefault("events.catalog.category_linked", false)
}
