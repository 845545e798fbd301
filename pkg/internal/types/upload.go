// Package types defines the JSON request and response shapes of the HTTP
// API. Field names follow the original wire contract consumed by the
// moderator frontend.
package types

// UploadErrorItem reports one failed file in an upload batch, numbered by
// its position in the multipart form.
type UploadErrorItem struct {
	Number int    `json:"number"`
	Msg    string `json:"msg"`
}

// UploadSuccessItem reports one stored file.
type UploadSuccessItem struct {
	FileVersionID   int64  `json:"fileVersionId"`
	FileVersionName string `json:"fileVersionName"`
	IsFilled        bool   `json:"isFilled"`
}

// UploadResponse is the per-batch upload result. Both slices are always
// present, possibly empty.
type UploadResponse struct {
	Errors  []UploadErrorItem   `json:"errors"`
	Success []UploadSuccessItem `json:"success"`
}

// Upload error messages, kept stable for the frontend.
const (
	MsgDuplicateFile  = "This file is already in the catalog"
	MsgEmptyFile      = "The file is empty"
	MsgStorageFailure = "Failed to store the file"
	MsgCatalogFailure = "Failed to register the file"
)
