// Package jobs registers the background maintenance tasks.
package jobs

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/dkozyrev/softvault/pkg/configs"
	ctxPkg "github.com/dkozyrev/softvault/pkg/context"
	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/storage"
	"github.com/dkozyrev/softvault/pkg/internal/storage/blob"
	"github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/scheduler"
)

// RegisterCronJobs wires the maintenance tasks into the scheduler. Today
// that is the orphan sweep: blobs without a catalog row accumulate when a
// row insert fails after the blob write, and the sweep reports or removes
// them.
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager, blobCfg *configs.BlobConfig) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	if !blobCfg.OrphanSweepEnabled {
		return nil
	}

	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)
	minAge := time.Duration(blobCfg.OrphanMinAgeHours) * time.Hour
	remove := blobCfg.OrphanRemove

	return sched.AddCron(JobOrphanSweep, blobCfg.OrphanSweepCron, func(ctx context.Context) {
		runOrphanSweep(ctx, mgr, minAge, remove)
	}, baseCtx)
}

func runOrphanSweep(ctx context.Context, mgr *storage.Manager, minAge time.Duration, remove bool) {
	l := log.Logger().With().Str("job", JobOrphanSweep).Logger()

	dbc := mgr.GetDBClient()
	blobc := mgr.GetBlobClient()

	if dbc == nil || blobc == nil {
		l.Error().Msg("storage not initialized")
		return
	}

	found, removed, err := SweepOrphans(ctx, dbc.GetDB(), blobc, minAge, remove)
	if err != nil {
		l.Error().Err(err).Msg("orphan sweep failed")
		return
	}

	if found > 0 {
		l.Warn().Int("orphans", found).Int("removed", removed).Msg("orphan sweep finished")
	} else {
		l.Info().Msg("orphan sweep finished, nothing found")
	}
}

// blobDigestPattern pulls the content hash back out of a storage key.
var blobDigestPattern = regexp.MustCompile(`_([0-9a-f]{64})(?:\.[^./]*)?$`)

// SweepOrphans walks the blob store and finds objects without a catalog
// row. Blobs younger than minAge are skipped: they may belong to an upload
// still in flight. When remove is set, orphans are deleted.
func SweepOrphans(ctx context.Context, dbx *gorm.DB, store blob.Store, minAge time.Duration, remove bool) (found, removed int, err error) {
	cutoff := time.Now().Add(-minAge)

	var orphans []string

	err = store.Walk(ctx, func(key string, modTime time.Time) error {
		if modTime.After(cutoff) {
			return nil
		}

		digest := digestFromKey(key)
		if digest == "" {
			// A foreign file under the blob root is an orphan too.
			orphans = append(orphans, key)
			return nil
		}

		var count int64
		if err := dbx.WithContext(ctx).Model(&model.Version{}).Where("content_hash = ?", digest).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			orphans = append(orphans, key)
		}

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	for _, key := range orphans {
		log.Logger().Warn().Str("key", key).Msg("orphaned blob")

		if !remove {
			continue
		}

		if err := store.Delete(ctx, key); err != nil {
			log.Logger().Error().Err(err).Str("key", key).Msg("orphan delete failed")
			continue
		}

		removed++
	}

	return len(orphans), removed, nil
}

func digestFromKey(key string) string {
	m := blobDigestPattern.FindStringSubmatch(path.Base(key))
	if m == nil {
		return ""
	}

	return m[1]
}
