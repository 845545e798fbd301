package queue

// BlobRef identifies a stored binary by content address.
type BlobRef struct {
	// Key is the content-addressed storage key, e.g. aa/bb/name_hash.exe.
	Key string `json:"key"`
	// Hash is the SHA-256 content digest, lowercase hex.
	Hash string `json:"hash"`
	// Size is the byte length of the blob.
	Size int64 `json:"size"`
	// ContentType is the detected or declared MIME type, if any.
	ContentType string `json:"content_type,omitempty"`
}

// VersionStoredPayload signals a new catalog version: blob written and row
// created, possibly still awaiting manual filling.
type VersionStoredPayload struct {
	VersionID int64   `json:"version_id"`
	Blob      BlobRef `json:"blob"`
	FileName  string  `json:"file_name"`
	Filled    bool    `json:"filled"`
	BatchID   string  `json:"batch_id,omitempty"`
	Actor     string  `json:"actor,omitempty"`
}

// VersionDuplicatePayload signals an upload rejected because the content
// hash and size matched an existing version.
type VersionDuplicatePayload struct {
	ExistingVersionID int64   `json:"existing_version_id"`
	Blob              BlobRef `json:"blob"`
	FileName          string  `json:"file_name"`
	BatchID           string  `json:"batch_id,omitempty"`
	Actor             string  `json:"actor,omitempty"`
}

// VersionFilledPayload signals completed metadata on a version.
type VersionFilledPayload struct {
	VersionID int64  `json:"version_id"`
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Number    string `json:"number"`
	Manual    bool   `json:"manual"`
	Actor     string `json:"actor,omitempty"`
}

// VersionLifecyclePayload covers disabled/restored/purged transitions.
type VersionLifecyclePayload struct {
	VersionID int64  `json:"version_id"`
	State     string `json:"state"`
	Actor     string `json:"actor,omitempty"`
	// BlobRemoved is set on purge when the underlying blob was deleted,
	// i.e. no other version shared the content hash.
	BlobRemoved bool `json:"blob_removed,omitempty"`
}

// ProductCreatedPayload signals a fill that introduced a new product title.
type ProductCreatedPayload struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Actor     string `json:"actor,omitempty"`
}

// CategoryLinkedPayload signals a replaced category set on a product.
type CategoryLinkedPayload struct {
	ProductID   int64   `json:"product_id"`
	CategoryIDs []int64 `json:"category_ids"`
	Actor       string  `json:"actor,omitempty"`
}
