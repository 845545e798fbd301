package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/dkozyrev/softvault/pkg/internal/extract"
	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/storage/blob"
	"github.com/dkozyrev/softvault/pkg/internal/types"
	nlog "github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/metrics"
	"github.com/dkozyrev/softvault/pkg/queue"
)

// ingestGroup serializes concurrent uploads of identical content so two
// moderators racing with the same file produce exactly one catalog row.
// Package-level: services are created per request.
var ingestGroup singleflight.Group

// UploadedFile is one buffered multipart file. Catalog binaries are small
// enough to hash and parse in memory.
type UploadedFile struct {
	Name string
	Data []byte
}

// IngestService stores uploaded binaries: content-hash dedup, blob write,
// metadata extraction and catalog registration.
type IngestService struct {
	*Service

	extractors *extract.Registry
}

func NewIngestService(c context.Context) *IngestService {
	return &IngestService{Service: newService(c), extractors: extract.NewRegistry()}
}

// storeOutcome is the shared result of one deduplicated store.
type storeOutcome struct {
	versionID int64
	filled    bool
	duplicate bool
}

// StoreBatch processes an upload batch. Files fail independently: one bad
// file never aborts its siblings. Error items are numbered by the file's
// position in the form, starting at 1.
func (s *IngestService) StoreBatch(ctx context.Context, user string, files []UploadedFile) *types.UploadResponse {
	resp := &types.UploadResponse{
		Errors:  []types.UploadErrorItem{},
		Success: []types.UploadSuccessItem{},
	}

	batchID := newBatchID()

	for i, f := range files {
		number := i + 1

		outcome, err := s.storeOne(ctx, user, batchID, f)
		if err != nil {
			resp.Errors = append(resp.Errors, types.UploadErrorItem{Number: number, Msg: errorMessage(err)})
			continue
		}

		resp.Success = append(resp.Success, types.UploadSuccessItem{
			FileVersionID:   outcome.versionID,
			FileVersionName: f.Name,
			IsFilled:        outcome.filled,
		})
	}

	return resp
}

// ingestError pairs an internal cause with the stable message the frontend
// shows.
type ingestError struct {
	msg   string
	cause error
}

func (e *ingestError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}

	return e.msg
}

func errorMessage(err error) string {
	if ie, ok := err.(*ingestError); ok {
		return ie.msg
	}

	return types.MsgCatalogFailure
}

func (s *IngestService) storeOne(ctx context.Context, user, batchID string, f UploadedFile) (storeOutcome, error) {
	if len(f.Data) == 0 {
		metrics.UploadCounter.WithLabelValues("empty").Inc()
		return storeOutcome{}, &ingestError{msg: types.MsgEmptyFile}
	}

	sum := sha256.Sum256(f.Data)
	digest := hex.EncodeToString(sum[:])
	size := int64(len(f.Data))

	// Identical content in flight twice runs the closure once; both
	// callers see the same outcome.
	v, err, _ := ingestGroup.Do(fmt.Sprintf("%s:%d", digest, size), func() (any, error) {
		return s.storeContent(ctx, user, batchID, f, digest, size)
	})
	if err != nil {
		return storeOutcome{}, err
	}

	outcome := v.(storeOutcome)
	if outcome.duplicate {
		metrics.UploadCounter.WithLabelValues("duplicate").Inc()
		return storeOutcome{}, &ingestError{msg: types.MsgDuplicateFile}
	}

	return outcome, nil
}

func (s *IngestService) storeContent(ctx context.Context, user, batchID string, f UploadedFile, digest string, size int64) (storeOutcome, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	// Hash plus size defines duplicate content. Disabled versions still
	// count: the content is in the catalog either way.
	var existing model.Version
	err := dbx.Where("content_hash = ? AND file_size = ?", digest, size).First(&existing).Error

	switch {
	case err == nil:
		s.publishDuplicate(existing, f.Name, digest, size, batchID, user)
		return storeOutcome{versionID: existing.ID, duplicate: true}, nil
	case err != gorm.ErrRecordNotFound:
		metrics.UploadCounter.WithLabelValues("error").Inc()
		return storeOutcome{}, &ingestError{msg: types.MsgCatalogFailure, cause: err}
	}

	key := blob.BuildKey(digest, f.Name)
	if err := s.blobClient.Put(ctx, key, bytes.NewReader(f.Data), size, ""); err != nil {
		metrics.UploadCounter.WithLabelValues("error").Inc()
		return storeOutcome{}, &ingestError{msg: types.MsgStorageFailure, cause: err}
	}

	res := s.extractors.Extract(f.Data, f.Name)

	version := model.Version{
		StoredName:    f.Name,
		ContentHash:   digest,
		FileSize:      size,
		VersionString: res.Number,
		IsFilled:      res.Filled(),
		UploadedBy:    user,
		UploadedAt:    time.Now().UTC(),
	}

	if res.Filled() {
		productID, err := resolveProduct(dbx, res.Title, user, s.mqClient)
		if err != nil {
			// Product resolution trouble downgrades the version to
			// unfilled rather than failing the upload.
			nlog.Logger().Warn().Err(err).Str("title", res.Title).Msg("product resolution failed")

			version.IsFilled = false
		} else {
			version.ProductID = productID
		}
	}

	if err := dbx.Create(&version).Error; err != nil {
		metrics.UploadCounter.WithLabelValues("error").Inc()
		// The blob stays: the orphan sweep reclaims it later.
		return storeOutcome{}, &ingestError{msg: types.MsgCatalogFailure, cause: err}
	}

	s.storeProperties(dbx, version.ID, res.Properties)

	metrics.UploadCounter.WithLabelValues("stored").Inc()
	metrics.UploadBytes.Add(float64(size))

	s.publishStored(version, key, batchID)

	if version.IsFilled {
		s.publishFilled(version, res.Title, false, user)
	}

	return storeOutcome{versionID: version.ID, filled: version.IsFilled}, nil
}

// storeProperties inserts extracted pairs one by one. A failed insert is
// logged and skipped: properties are advisory.
func (s *IngestService) storeProperties(dbx *gorm.DB, versionID int64, props map[string]string) {
	for k, v := range props {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}

		p := model.VersionProperty{VersionID: versionID, Key: k, Value: v}
		if err := dbx.Create(&p).Error; err != nil {
			nlog.Logger().Warn().Err(err).Int64("version_id", versionID).Str("key", k).Msg("property insert failed")
		}
	}
}

func (s *IngestService) publishStored(v model.Version, key, batchID string) {
	pub := s.mqClient.Publisher()
	if pub == nil || !eventEnabled(queue.TopicVersionStored) {
		return
	}

	err := queue.PublishVersionStored(pub, queue.VersionStoredPayload{
		VersionID: v.ID,
		Blob:      queue.BlobRef{Key: key, Hash: v.ContentHash, Size: v.FileSize},
		FileName:  v.StoredName,
		Filled:    v.IsFilled,
		BatchID:   batchID,
		Actor:     v.UploadedBy,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Int64("version_id", v.ID).Msg("publish version stored failed")
	}
}

func (s *IngestService) publishDuplicate(existing model.Version, fileName, digest string, size int64, batchID, actor string) {
	pub := s.mqClient.Publisher()
	if pub == nil || !eventEnabled(queue.TopicVersionDuplicate) {
		return
	}

	err := queue.PublishVersionDuplicate(pub, queue.VersionDuplicatePayload{
		ExistingVersionID: existing.ID,
		Blob:              queue.BlobRef{Key: blob.BuildKey(digest, existing.StoredName), Hash: digest, Size: size},
		FileName:          fileName,
		BatchID:           batchID,
		Actor:             actor,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Int64("version_id", existing.ID).Msg("publish duplicate failed")
	}
}

func (s *IngestService) publishFilled(v model.Version, title string, manual bool, actor string) {
	pub := s.mqClient.Publisher()
	if pub == nil || !eventEnabled(queue.TopicVersionFilled) {
		return
	}

	err := queue.PublishVersionFilled(pub, queue.VersionFilledPayload{
		VersionID: v.ID,
		ProductID: v.ProductID,
		Title:     title,
		Number:    v.VersionString,
		Manual:    manual,
		Actor:     actor,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Int64("version_id", v.ID).Msg("publish filled failed")
	}
}

// newBatchID tags every file of one upload request with a shared,
// lexically sortable id.
func newBatchID() string {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)

	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
