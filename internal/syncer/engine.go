package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/wernerjr/gpstracker/internal/config"
	"github.com/wernerjr/gpstracker/internal/store"
)

const (
	RetentionMark   = "mark"
	RetentionDelete = "delete"
)

// Engine drains the unsynced record set against the remote store in bounded
// batches. Sync runs on demand, never concurrently with itself, and mutates
// the local store only after a batch's remote commit succeeded, so a failure
// mid-sequence leaves a smaller unsynced tail rather than lost or duplicated
// data. Records carry a guid so the remote can deduplicate re-uploads caused
// by a crash between commit and local mark.
type Engine struct {
	store       *store.Store
	remote      Remote
	collection  string
	batchSize   int
	maxAttempts int
	backoff     time.Duration
	retention   string

	sleep func(time.Duration)
	mu    sync.Mutex
}

func NewEngine(st *store.Store, remote Remote, cfg config.Config) *Engine {
	if cfg.SyncBatchSize < 1 {
		cfg.SyncBatchSize = 500
	}
	if cfg.SyncMaxAttempts < 1 {
		cfg.SyncMaxAttempts = 3
	}
	if cfg.SyncBackoffMs < 1 {
		cfg.SyncBackoffMs = 1000
	}
	if cfg.SyncRetention != RetentionDelete {
		cfg.SyncRetention = RetentionMark
	}
	if cfg.RemoteCollection == "" {
		cfg.RemoteCollection = "locations"
	}
	return &Engine{
		store:       st,
		remote:      remote,
		collection:  cfg.RemoteCollection,
		batchSize:   cfg.SyncBatchSize,
		maxAttempts: cfg.SyncMaxAttempts,
		backoff:     time.Duration(cfg.SyncBackoffMs) * time.Millisecond,
		retention:   cfg.SyncRetention,
		sleep:       time.Sleep,
	}
}

// Sync uploads every unsynced record. A second call while one is in flight
// is rejected immediately rather than queued.
func (e *Engine) Sync(ctx context.Context) Result {
	if !e.mu.TryLock() {
		return Result{Success: false, Error: ErrSyncInProgress.Error()}
	}
	defer e.mu.Unlock()

	if !e.remote.Online(ctx) {
		return Result{Success: false, Error: ErrOffline.Error()}
	}

	recs, err := e.store.GetAllUnsynced(ctx)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	if len(recs) == 0 {
		return Result{Success: true}
	}

	synced := 0
	for start := 0; start < len(recs); start += e.batchSize {
		end := min(start+e.batchSize, len(recs))
		if err := e.commitBatch(ctx, recs[start:end]); err != nil {
			return Result{Success: false, SyncedCount: synced, Error: err.Error()}
		}
		synced += end - start
	}
	return Result{Success: true, SyncedCount: synced}
}

// commitBatch retries the same batch with exponential backoff and applies
// the retention policy only after the remote commit succeeds.
func (e *Engine) commitBatch(ctx context.Context, batch []store.LocationRecord) error {
	docs := make([]map[string]any, 0, len(batch))
	ids := make([]int64, 0, len(batch))
	for _, rec := range batch {
		docs = append(docs, map[string]any{
			"guid":       rec.GUID,
			"session_id": rec.SessionID,
			"latitude":   rec.Latitude,
			"longitude":  rec.Longitude,
			"accuracy_m": rec.AccuracyM,
			"speed_kmh":  rec.SpeedKmh,
			"timestamp":  rec.RecordedAt.UnixMilli(),
		})
		ids = append(ids, rec.ID)
	}

	delay := e.backoff
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		lastErr = e.remote.CommitBatch(ctx, e.collection, docs)
		if lastErr == nil {
			if e.retention == RetentionDelete {
				return e.store.DeleteRecords(ctx, ids)
			}
			return e.store.MarkAsSynced(ctx, ids)
		}
		if attempt < e.maxAttempts {
			e.sleep(delay)
			delay *= 2
		}
	}
	return lastErr
}
