package service

import (
	"context"
	"fmt"

	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/storage/blob"
	nlog "github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/queue"
)

// Lifecycle states as they appear in audit events.
const (
	stateDisabled = "disabled"
	stateRestored = "restored"
	statePurged   = "purged"
)

// LifecycleService moves versions through disable, restore and permanent
// deletion.
type LifecycleService struct{ *Service }

func NewLifecycleService(c context.Context) *LifecycleService {
	return &LifecycleService{newService(c)}
}

// Disable hides a version from regular listings. Already-disabled versions
// disable again without complaint: the end state is what matters. Only a
// real transition publishes an event.
func (s *LifecycleService) Disable(ctx context.Context, id int64, actor string) error {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	var version model.Version
	if err := dbx.First(&version, id).Error; err != nil {
		return fmt.Errorf("version %d: %w", id, err)
	}

	if !version.IsDisabled {
		version.IsDisabled = true
		if err := dbx.Save(&version).Error; err != nil {
			return err
		}

		s.publishLifecycle(queue.TopicVersionDisabled, version.ID, stateDisabled, actor, false)
	}

	return nil
}

// Restore brings a disabled version back into the catalog.
func (s *LifecycleService) Restore(ctx context.Context, id int64, actor string) error {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	var version model.Version
	if err := dbx.First(&version, id).Error; err != nil {
		return fmt.Errorf("version %d: %w", id, err)
	}

	if version.IsDisabled {
		version.IsDisabled = false
		if err := dbx.Save(&version).Error; err != nil {
			return err
		}

		s.publishLifecycle(queue.TopicVersionRestored, version.ID, stateRestored, actor, false)
	}

	return nil
}

// Purge permanently deletes a version: catalog row, extracted properties
// and, when no other version references the content, the blob itself.
// Only disabled versions may be purged; the caller disables first, which
// gives a review window before data is gone.
func (s *LifecycleService) Purge(ctx context.Context, id int64, actor string) error {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	var version model.Version
	if err := dbx.First(&version, id).Error; err != nil {
		return fmt.Errorf("version %d: %w", id, err)
	}

	if !version.IsDisabled {
		return fmt.Errorf("version %d: %w", id, ErrNotDisabled)
	}

	if err := dbx.Where("version_id = ?", id).Delete(&model.VersionProperty{}).Error; err != nil {
		return err
	}

	if err := dbx.Delete(&model.Version{}, id).Error; err != nil {
		return err
	}

	blobRemoved := s.removeBlobIfUnreferenced(ctx, version)

	s.publishLifecycle(queue.TopicVersionPurged, version.ID, statePurged, actor, blobRemoved)

	return nil
}

// ErrNotDisabled guards permanent deletion of versions still visible in
// the catalog.
var ErrNotDisabled = fmt.Errorf("version is not disabled")

// removeBlobIfUnreferenced deletes the stored content unless another
// version still shares the hash. Blob removal is best-effort: a leftover
// blob is reclaimed by the orphan sweep.
func (s *LifecycleService) removeBlobIfUnreferenced(ctx context.Context, version model.Version) bool {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	var remaining int64
	if err := dbx.Model(&model.Version{}).Where("content_hash = ?", version.ContentHash).Count(&remaining).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("hash", version.ContentHash).Msg("reference count failed, keeping blob")
		return false
	}

	if remaining > 0 {
		return false
	}

	key := blob.BuildKey(version.ContentHash, version.StoredName)
	if err := s.blobClient.Delete(ctx, key); err != nil {
		nlog.Logger().Warn().Err(err).Str("key", key).Msg("blob delete failed")
		return false
	}

	return true
}

func (s *LifecycleService) publishLifecycle(topic string, versionID int64, state, actor string, blobRemoved bool) {
	pub := s.mqClient.Publisher()
	if pub == nil || !eventEnabled(topic) {
		return
	}

	err := queue.PublishVersionLifecycle(pub, topic, queue.VersionLifecyclePayload{
		VersionID:   versionID,
		State:       state,
		Actor:       actor,
		BlobRemoved: blobRemoved,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Int64("version_id", versionID).Str("state", state).Msg("publish lifecycle failed")
	}
}
