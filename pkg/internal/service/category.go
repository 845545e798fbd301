package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/types"
	nlog "github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/queue"
)

// CategoryService manages the flat category list and product links.
type CategoryService struct{ *Service }

func NewCategoryService(c context.Context) *CategoryService {
	return &CategoryService{newService(c)}
}

// List returns every category, ordered by title.
func (s *CategoryService) List(ctx context.Context) (*types.CategoryListResponse, error) {
	var rows []model.Category
	if err := s.dbClient.GetDB().WithContext(ctx).Order("title").Find(&rows).Error; err != nil {
		return nil, err
	}

	resp := &types.CategoryListResponse{Categories: []types.CategoryInfo{}}
	for _, c := range rows {
		resp.Categories = append(resp.Categories, types.CategoryInfo{ID: c.ID, Title: c.Title})
	}

	return resp, nil
}

// Create adds a category. Titles are unique; creating an existing title
// returns the existing row.
func (s *CategoryService) Create(ctx context.Context, title string) (*types.CategoryInfo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("category title must not be empty")
	}

	dbx := s.dbClient.GetDB().WithContext(ctx)

	var existing model.Category
	if err := dbx.Where("title = ?", title).First(&existing).Error; err == nil {
		return &types.CategoryInfo{ID: existing.ID, Title: existing.Title}, nil
	}

	category := model.Category{Title: title}
	if err := dbx.Create(&category).Error; err != nil {
		return nil, err
	}

	return &types.CategoryInfo{ID: category.ID, Title: category.Title}, nil
}

// Link replaces the category set of a product: the old links go away, the
// given ones come in. An empty set just clears.
func (s *CategoryService) Link(ctx context.Context, actor string, req *types.CategoryLinkRequest) error {
	if req.ProductID <= 0 {
		return fmt.Errorf("product id must be positive")
	}

	for _, cid := range req.CategoryIDs {
		if cid <= 0 {
			return fmt.Errorf("category id must be positive")
		}
	}

	dbx := s.dbClient.GetDB().WithContext(ctx)

	var product model.Product
	if err := dbx.First(&product, req.ProductID).Error; err != nil {
		return fmt.Errorf("product %d: %w", req.ProductID, err)
	}

	err := dbx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", req.ProductID).Delete(&model.ProductCategory{}).Error; err != nil {
			return err
		}

		for _, cid := range req.CategoryIDs {
			link := model.ProductCategory{ProductID: req.ProductID, CategoryID: cid}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.publishLinked(req.ProductID, req.CategoryIDs, actor)

	return nil
}

func (s *CategoryService) publishLinked(productID int64, categoryIDs []int64, actor string) {
	pub := s.mqClient.Publisher()
	if pub == nil || !eventEnabled(queue.TopicCategoryLinked) {
		return
	}

	err := queue.PublishCategoryLinked(pub, queue.CategoryLinkedPayload{
		ProductID:   productID,
		CategoryIDs: categoryIDs,
		Actor:       actor,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Int64("product_id", productID).Msg("publish category linked failed")
	}
}
