package syncer

import "errors"

var (
	// ErrSyncInProgress rejects a second drain while one is in flight; two
	// concurrent drains of the same unsynced set would double-upload.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrOffline is returned before the store is touched when no network
	// connectivity is observable.
	ErrOffline = errors.New("no network connectivity")
)

// Result is the structured outcome of one sync run. Partial success is a
// legitimate outcome: SyncedCount counts the batches committed before a
// failure, and those commits are never rolled back.
type Result struct {
	Success     bool   `json:"success"`
	SyncedCount int    `json:"synced_count"`
	Error       string `json:"error,omitempty"`
}
