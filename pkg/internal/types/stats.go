package types

// StatsResponse carries the admin dashboard counters.
type StatsResponse struct {
	Products   int64 `json:"products"`
	Versions   int64 `json:"versions"`
	Categories int64 `json:"categories"`
	// Disabled counts soft-deleted versions awaiting restore or purge.
	Disabled int64 `json:"disabled"`
	// Unfilled counts versions still awaiting manual metadata.
	Unfilled int64 `json:"unfilled"`
	// TotalBytes sums the sizes of all active versions.
	TotalBytes int64 `json:"totalBytes"`
}
