package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/storage/mq"
	"github.com/dkozyrev/softvault/pkg/internal/types"
	nlog "github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/queue"
)

// FillService completes version metadata manually for uploads the
// extractors could not fill.
type FillService struct{ *Service }

func NewFillService(c context.Context) *FillService {
	return &FillService{newService(c)}
}

// Fill applies a batch of manual metadata entries. Items validate
// independently; a failing item reports per-field messages and leaves its
// version untouched.
func (s *FillService) Fill(ctx context.Context, user string, req *types.FillRequest) *types.FillResponse {
	resp := &types.FillResponse{
		Errors:  []types.FillErrorItem{},
		Success: []types.FillSuccessItem{},
	}

	dbx := s.dbClient.GetDB().WithContext(ctx)

	for _, item := range req.Items {
		if errItem, ok := validateFillItem(item); !ok {
			resp.Errors = append(resp.Errors, errItem)
			continue
		}

		if err := s.fillOne(dbx, user, item); err != nil {
			nlog.Logger().Error().Err(err).Int64("version_id", item.ID).Msg("fill failed")
			resp.Errors = append(resp.Errors, types.FillErrorItem{ID: item.ID, MsgVersion: types.MsgVersionUnknown})

			continue
		}

		resp.Success = append(resp.Success, types.FillSuccessItem{ID: item.ID})
	}

	return resp
}

// validateFillItem checks both fields and reports every failing one at
// once, so the form can highlight them together.
func validateFillItem(item types.FillItem) (types.FillErrorItem, bool) {
	errItem := types.FillErrorItem{ID: item.ID}

	if strings.TrimSpace(item.Title) == "" {
		errItem.MsgTitle = types.MsgTitleRequired
	}

	if strings.TrimSpace(item.Version) == "" {
		errItem.MsgVersion = types.MsgVersionRequired
	}

	if errItem.MsgTitle != "" || errItem.MsgVersion != "" {
		return errItem, false
	}

	return types.FillErrorItem{}, true
}

func (s *FillService) fillOne(dbx *gorm.DB, user string, item types.FillItem) error {
	var version model.Version
	if err := dbx.First(&version, item.ID).Error; err != nil {
		return err
	}

	productID, err := resolveProduct(dbx, item.Title, user, s.mqClient)
	if err != nil {
		return err
	}

	version.ProductID = productID
	version.VersionString = strings.TrimSpace(item.Version)
	version.IsFilled = true

	if err := dbx.Save(&version).Error; err != nil {
		return err
	}

	s.publishManualFill(version, strings.TrimSpace(item.Title), user)

	return nil
}

func (s *FillService) publishManualFill(v model.Version, title, actor string) {
	pub := s.mqClient.Publisher()
	if pub == nil || !eventEnabled(queue.TopicVersionFilled) {
		return
	}

	err := queue.PublishVersionFilled(pub, queue.VersionFilledPayload{
		VersionID: v.ID,
		ProductID: v.ProductID,
		Title:     title,
		Number:    v.VersionString,
		Manual:    true,
		Actor:     actor,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Int64("version_id", v.ID).Msg("publish filled failed")
	}
}

// resolveProduct finds or creates the product carrying the given title.
// Titles are unique; matching is exact after trimming.
func resolveProduct(dbx *gorm.DB, title, actor string, mqClient *mq.Client) (int64, error) {
	title = strings.TrimSpace(title)

	var product model.Product

	err := dbx.Where("title = ?", title).First(&product).Error
	if err == nil {
		return product.ID, nil
	}

	if err != gorm.ErrRecordNotFound {
		return 0, err
	}

	product = model.Product{Title: title}
	if err := dbx.Create(&product).Error; err != nil {
		// Lost a create race: another fill inserted the title first.
		if lookupErr := dbx.Where("title = ?", title).First(&product).Error; lookupErr == nil {
			return product.ID, nil
		}

		return 0, err
	}

	if pub := mqClient.Publisher(); pub != nil && eventEnabled(queue.TopicProductCreated) {
		pubErr := queue.PublishProductCreated(pub, queue.ProductCreatedPayload{
			ProductID: product.ID,
			Title:     title,
			Actor:     actor,
		})
		if pubErr != nil {
			nlog.Logger().Warn().Err(pubErr).Int64("product_id", product.ID).Msg("publish product created failed")
		}
	}

	return product.ID, nil
}
