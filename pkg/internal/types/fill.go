package types

// FillItem is one manual metadata entry: a version id with the product
// title and version number supplied by the moderator.
type FillItem struct {
	ID      int64  `json:"id"      rule:"required,gt=0"`
	Title   string `json:"title"`
	Version string `json:"version"`
}

// FillRequest is a batch of manual fills.
type FillRequest struct {
	Items []FillItem `binding:"required" json:"items"`
}

// FillErrorItem reports per-field validation problems for one item. Only
// the failing fields carry a message.
type FillErrorItem struct {
	ID         int64  `json:"id"`
	MsgTitle   string `json:"msgTitle,omitempty"`
	MsgVersion string `json:"msgVersion,omitempty"`
}

// FillSuccessItem acknowledges one filled version.
type FillSuccessItem struct {
	ID int64 `json:"id"`
}

// FillResponse is the per-batch fill result.
type FillResponse struct {
	Errors  []FillErrorItem   `json:"errors"`
	Success []FillSuccessItem `json:"success"`
}

// Fill validation messages.
const (
	MsgTitleRequired   = "Product title must not be empty"
	MsgVersionRequired = "Version number must not be empty"
	MsgVersionUnknown  = "Unknown file version"
)
