package jobs

// Job names, referenced by the status endpoint.
const (
	JobOrphanSweep = "blob.orphan_sweep"
)
