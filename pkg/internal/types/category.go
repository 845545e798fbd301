package types

// CategoryInfo is one category row.
type CategoryInfo struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// CategoryCreateRequest creates a category.
type CategoryCreateRequest struct {
	Title string `binding:"required" json:"title" rule:"required,min=1,max=255"`
}

// CategoryLinkRequest replaces the category set of a product.
type CategoryLinkRequest struct {
	ProductID   int64   `binding:"required" json:"productId"   rule:"required,gt=0"`
	CategoryIDs []int64 `json:"categoryIds"`
}

// CategoryListResponse lists all categories.
type CategoryListResponse struct {
	Categories []CategoryInfo `json:"categories"`
}
