// Package model defines the catalog schema: products, their uploaded
// versions, extracted version properties and categories.
package model

import (
	"time"
)

// Product groups uploaded versions under one title. Created on the first
// filled version carrying an unseen title, never deleted.
type Product struct {
	ID    int64  `gorm:"primaryKey"              json:"id"`
	Title string `gorm:"size:512;uniqueIndex"    json:"title"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Versions []Version `gorm:"foreignKey:ProductID" json:"-"`
}

// Version is one uploaded binary. ProductID stays 0 until the version is
// filled, manually or by metadata extraction.
type Version struct {
	ID int64 `gorm:"primaryKey" json:"id"`
	// ProductID is 0 for versions awaiting manual filling. No foreign key
	// constraint: 0 is a sentinel, not a row.
	ProductID int64 `gorm:"index;default:0" json:"productId"`
	// StoredName is the display/download file name as uploaded.
	StoredName string `gorm:"size:512;index" json:"storedName"`
	// ContentHash is the SHA-256 digest, lowercase hex. Hash+size together
	// define duplicate content.
	ContentHash string `gorm:"size:64;index:idx_content,priority:1" json:"contentHash"`
	FileSize    int64  `gorm:"index:idx_content,priority:2"         json:"fileSize"`
	// VersionString is the product version, extracted or manually entered.
	VersionString string `gorm:"size:255" json:"versionString"`
	// IsFilled means both title and version are known.
	IsFilled bool `gorm:"index" json:"isFilled"`
	// IsDisabled marks a soft-deleted version. Disabled versions are hidden
	// from regular listings and are the only ones eligible for permanent
	// deletion.
	IsDisabled bool `gorm:"index" json:"isDisabled"`
	// UploadedBy is the employee id of the uploading moderator.
	UploadedBy string    `gorm:"size:255;index" json:"uploadedBy"`
	UploadedAt time.Time `gorm:"index"          json:"uploadedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Properties []VersionProperty `gorm:"foreignKey:VersionID" json:"-"`
}

// VersionProperty is one non-promoted key/value pair extracted from a
// binary's version resource. Rows are best-effort: a failed insert is
// logged and never aborts the version.
type VersionProperty struct {
	ID        int64  `gorm:"primaryKey"              json:"id"`
	VersionID int64  `gorm:"index;not null"          json:"versionId"`
	Key       string `gorm:"size:255;column:prop_key" json:"key"`
	Value     string `gorm:"type:text;column:prop_value" json:"value"`
}

// Category tags products for browsing.
type Category struct {
	ID    int64  `gorm:"primaryKey"           json:"id"`
	Title string `gorm:"size:255;uniqueIndex" json:"title"`

	CreatedAt time.Time `json:"createdAt"`
}

// ProductCategory joins products to categories. Re-linking replaces the
// full set for a product.
type ProductCategory struct {
	ID         int64 `gorm:"primaryKey"                                json:"id"`
	ProductID  int64 `gorm:"index:idx_product_category,unique;not null" json:"productId"`
	CategoryID int64 `gorm:"index:idx_product_category,unique;not null" json:"categoryId"`
}

// AllModels lists every table for auto-migration.
func AllModels() []any {
	return []any{
		&Product{},
		&Version{},
		&VersionProperty{},
		&Category{},
		&ProductCategory{},
	}
}
