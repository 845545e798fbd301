// Package service implements the catalog business logic: ingest with
// content dedup, metadata filling, lifecycle transitions, browsing and
// statistics.
package service

import (
	"context"

	"github.com/dkozyrev/softvault/pkg/configs"
	ctxPkg "github.com/dkozyrev/softvault/pkg/context"
	"github.com/dkozyrev/softvault/pkg/internal/storage/blob"
	"github.com/dkozyrev/softvault/pkg/internal/storage/db"
	"github.com/dkozyrev/softvault/pkg/internal/storage/mq"
	"github.com/dkozyrev/softvault/pkg/queue"
)

// Service carries the storage clients every catalog service needs. The
// clients come from the request context, injected by the storage
// middleware.
type Service struct {
	dbClient   *db.Client
	blobClient *blob.Client
	mqClient   *mq.Client
}

func newService(c context.Context) *Service {
	return &Service{
		dbClient:   ctxPkg.GetDBClient(c),
		blobClient: ctxPkg.GetBlobClient(c),
		mqClient:   ctxPkg.GetMQClient(c),
	}
}

// eventEnabled consults the per-topic publishing toggles. An unlisted
// topic follows only the global switch.
func eventEnabled(topic string) bool {
	ev := configs.GetConfig().Events
	if !ev.Enabled {
		return false
	}

	switch topic {
	case queue.TopicVersionStored:
		return ev.Catalog.VersionStored
	case queue.TopicVersionDuplicate:
		return ev.Catalog.VersionDuplicate
	case queue.TopicVersionFilled:
		return ev.Catalog.VersionFilled
	case queue.TopicVersionDisabled:
		return ev.Catalog.VersionDisabled
	case queue.TopicVersionRestored:
		return ev.Catalog.VersionRestored
	case queue.TopicVersionPurged:
		return ev.Catalog.VersionPurged
	case queue.TopicProductCreated:
		return ev.Catalog.ProductCreated
	case queue.TopicCategoryLinked:
		return ev.Catalog.CategoryLinked
	}

	return true
}
