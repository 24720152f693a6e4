package metrics

import "sync/atomic"

type SyncMetrics struct {
	InsertedCount  atomic.Int32
	UpdatedCount   atomic.Int32
	UnchangedCount atomic.Int32
	SkippedCount   atomic.Int32
	FailedCount    atomic.Int32
	ProcessedPages atomic.Int32
}
