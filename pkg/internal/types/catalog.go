package types

import "time"

// VersionInfo is one catalog version in listings and product views.
type VersionInfo struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"productId"`
	ProductTitle  string    `json:"productTitle,omitempty"`
	StoredName    string    `json:"storedName"`
	VersionString string    `json:"versionString"`
	ContentHash   string    `json:"contentHash"`
	FileSize      int64     `json:"fileSize"`
	IsFilled      bool      `json:"isFilled"`
	IsDisabled    bool      `json:"isDisabled"`
	UploadedBy    string    `json:"uploadedBy"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// VersionListResponse is a paginated version listing.
type VersionListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
	Pages    int64         `json:"pages"`
	Versions []VersionInfo `json:"versions"`
}

// PropertyInfo is one extracted key/value pair.
type PropertyInfo struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ProductInfo is a product summary row.
type ProductInfo struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// ProductViewResponse is the full product page: versions (disabled ones
// included only for moderators), current version properties, categories.
type ProductViewResponse struct {
	Product    ProductInfo    `json:"product"`
	Versions   []VersionInfo  `json:"versions"`
	Properties []PropertyInfo `json:"properties"`
	Categories []CategoryInfo `json:"categories"`
}

// SuggestionItem is one autocomplete hit: display value plus the product id.
type SuggestionItem struct {
	Value string `json:"value"`
	Data  int64  `json:"data"`
}

// AutocompleteResponse follows the jQuery-autocomplete contract the
// frontend consumes.
type AutocompleteResponse struct {
	Query       string           `json:"query"`
	Suggestions []SuggestionItem `json:"suggestions"`
}

// SearchResponse lists products matching a title query.
type SearchResponse struct {
	Query    string        `json:"query"`
	Products []ProductInfo `json:"products"`
}
