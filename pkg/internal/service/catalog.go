package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/storage/blob"
	"github.com/dkozyrev/softvault/pkg/internal/types"
	"github.com/dkozyrev/softvault/pkg/metrics"
)

const (
	defaultPageSize    = 50
	maxPageSize        = 200
	defaultSuggestions = 10
	maxSuggestions     = 50
)

// CatalogService answers the read side: listings, product pages, search,
// autocomplete and downloads.
type CatalogService struct{ *Service }

func NewCatalogService(c context.Context) *CatalogService {
	return &CatalogService{newService(c)}
}

// ListOptions filter a version listing.
type ListOptions struct {
	Page  int
	Limit int
	// IncludeDisabled shows soft-deleted versions; moderator views only.
	IncludeDisabled bool
	// OnlyUnfilled narrows to versions awaiting manual metadata.
	OnlyUnfilled bool
	// ProductID narrows to one product when non-zero.
	ProductID int64
}

// List returns a page of versions, newest uploads first.
func (s *CatalogService) List(ctx context.Context, opts ListOptions) (*types.VersionListResponse, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}

	if opts.Limit <= 0 || opts.Limit > maxPageSize {
		opts.Limit = defaultPageSize
	}

	dbx := s.dbClient.GetDB().WithContext(ctx).Model(&model.Version{})

	if !opts.IncludeDisabled {
		dbx = dbx.Where("is_disabled = ?", false)
	}

	if opts.OnlyUnfilled {
		dbx = dbx.Where("is_filled = ?", false)
	}

	if opts.ProductID > 0 {
		dbx = dbx.Where("product_id = ?", opts.ProductID)
	}

	var total int64
	if err := dbx.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []model.Version
	if err := dbx.Order("uploaded_at DESC, id DESC").
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	titles, err := s.productTitles(ctx, rows)
	if err != nil {
		return nil, err
	}

	versions := make([]types.VersionInfo, 0, len(rows))
	for _, r := range rows {
		versions = append(versions, versionInfo(r, titles[r.ProductID]))
	}

	pages := (total + int64(opts.Limit) - 1) / int64(opts.Limit)

	return &types.VersionListResponse{
		Total:    total,
		Page:     opts.Page,
		Limit:    opts.Limit,
		Pages:    pages,
		Versions: versions,
	}, nil
}

// productTitles resolves the product titles referenced by a page of rows
// in one query.
func (s *CatalogService) productTitles(ctx context.Context, rows []model.Version) (map[int64]string, error) {
	ids := make([]int64, 0, len(rows))
	seen := map[int64]bool{}

	for _, r := range rows {
		if r.ProductID > 0 && !seen[r.ProductID] {
			seen[r.ProductID] = true
			ids = append(ids, r.ProductID)
		}
	}

	titles := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	var products []model.Product
	if err := s.dbClient.GetDB().WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}

	for _, p := range products {
		titles[p.ID] = p.Title
	}

	return titles, nil
}

// ProductView assembles the product page: its versions, the properties of
// the most recent one and the linked categories.
func (s *CatalogService) ProductView(ctx context.Context, productID int64, includeDisabled bool) (*types.ProductViewResponse, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	var product model.Product
	if err := dbx.First(&product, productID).Error; err != nil {
		return nil, fmt.Errorf("product %d: %w", productID, err)
	}

	vq := dbx.Where("product_id = ?", productID)
	if !includeDisabled {
		vq = vq.Where("is_disabled = ?", false)
	}

	var rows []model.Version
	if err := vq.Order("uploaded_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	versions := make([]types.VersionInfo, 0, len(rows))
	for _, r := range rows {
		versions = append(versions, versionInfo(r, product.Title))
	}

	properties := []types.PropertyInfo{}

	if len(rows) > 0 {
		var props []model.VersionProperty
		if err := dbx.Where("version_id = ?", rows[0].ID).Order("prop_key").Find(&props).Error; err != nil {
			return nil, err
		}

		for _, p := range props {
			properties = append(properties, types.PropertyInfo{Key: p.Key, Value: p.Value})
		}
	}

	categories, err := s.productCategories(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &types.ProductViewResponse{
		Product:    types.ProductInfo{ID: product.ID, Title: product.Title},
		Versions:   versions,
		Properties: properties,
		Categories: categories,
	}, nil
}

func (s *CatalogService) productCategories(ctx context.Context, productID int64) ([]types.CategoryInfo, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	var links []model.ProductCategory
	if err := dbx.Where("product_id = ?", productID).Find(&links).Error; err != nil {
		return nil, err
	}

	categories := []types.CategoryInfo{}
	if len(links) == 0 {
		return categories, nil
	}

	ids := make([]int64, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.CategoryID)
	}

	var rows []model.Category
	if err := dbx.Where("id IN ?", ids).Order("title").Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, c := range rows {
		categories = append(categories, types.CategoryInfo{ID: c.ID, Title: c.Title})
	}

	return categories, nil
}

// Search matches products by title substring, case-insensitive.
func (s *CatalogService) Search(ctx context.Context, query string) (*types.SearchResponse, error) {
	query = strings.TrimSpace(query)

	resp := &types.SearchResponse{Query: query, Products: []types.ProductInfo{}}
	if query == "" {
		return resp, nil
	}

	var rows []model.Product
	err := s.dbClient.GetDB().WithContext(ctx).
		Where("LOWER(title) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("title").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, p := range rows {
		resp.Products = append(resp.Products, types.ProductInfo{ID: p.ID, Title: p.Title})
	}

	return resp, nil
}

// Autocomplete returns title suggestions for the search box, prefix
// matches first by virtue of LIKE ordering on the title column.
func (s *CatalogService) Autocomplete(ctx context.Context, query string, limit int) (*types.AutocompleteResponse, error) {
	query = strings.TrimSpace(query)

	if limit <= 0 || limit > maxSuggestions {
		limit = defaultSuggestions
	}

	resp := &types.AutocompleteResponse{Query: query, Suggestions: []types.SuggestionItem{}}
	if query == "" {
		return resp, nil
	}

	var rows []model.Product
	err := s.dbClient.GetDB().WithContext(ctx).
		Where("LOWER(title) LIKE ?", strings.ToLower(query)+"%").
		Order("title").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, p := range rows {
		resp.Suggestions = append(resp.Suggestions, types.SuggestionItem{Value: p.Title, Data: p.ID})
	}

	return resp, nil
}

// Download resolves a version to its blob content. Disabled versions stay
// downloadable: moderators review them before purge.
func (s *CatalogService) Download(ctx context.Context, id int64) (io.ReadCloser, *model.Version, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	var version model.Version
	if err := dbx.First(&version, id).Error; err != nil {
		return nil, nil, fmt.Errorf("version %d: %w", id, err)
	}

	key := blob.BuildKey(version.ContentHash, version.StoredName)

	rc, err := s.blobClient.Open(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", key, err)
	}

	metrics.DownloadCounter.Inc()

	return rc, &version, nil
}

func versionInfo(v model.Version, productTitle string) types.VersionInfo {
	return types.VersionInfo{
		ID:            v.ID,
		ProductID:     v.ProductID,
		ProductTitle:  productTitle,
		StoredName:    v.StoredName,
		VersionString: v.VersionString,
		ContentHash:   v.ContentHash,
		FileSize:      v.FileSize,
		IsFilled:      v.IsFilled,
		IsDisabled:    v.IsDisabled,
		UploadedBy:    v.UploadedBy,
		UploadedAt:    v.UploadedAt,
	}
}
