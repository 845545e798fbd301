// Topic constants for publish/subscribe.
package queue

// Topic naming: sv.<domain>.<action>, stable and backward compatible.
// Domains: version (catalog version lifecycle), product, category.

const (
	// Version lifecycle.
	TopicVersionStored    = "sv.version.stored"    // blob written and catalog row created
	TopicVersionDuplicate = "sv.version.duplicate" // upload rejected as a known content hash
	TopicVersionFilled    = "sv.version.filled"    // metadata completed, manually or extracted
	TopicVersionDisabled  = "sv.version.disabled"  // version soft-deleted
	TopicVersionRestored  = "sv.version.restored"  // version recovered from disabled
	TopicVersionPurged    = "sv.version.purged"    // version and blob permanently removed

	// Product domain.
	TopicProductCreated = "sv.product.created" // a fill introduced a new product title

	// Category domain.
	TopicCategoryLinked = "sv.category.linked" // category set replaced on a version
)

// Topic groups for batch subscription.
var (
	// VersionTopics collects all version lifecycle topics.
	VersionTopics = []string{
		TopicVersionStored, TopicVersionDuplicate, TopicVersionFilled,
		TopicVersionDisabled, TopicVersionRestored, TopicVersionPurged,
	}

	// CatalogTopics collects every topic the catalog publishes.
	CatalogTopics = append(append([]string{}, VersionTopics...),
		TopicProductCreated, TopicCategoryLinked,
	)
)
