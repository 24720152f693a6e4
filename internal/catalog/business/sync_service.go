package business

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"catalogsync_api/internal/catalog/business/normalize"
	"catalogsync_api/internal/catalog/models"
	"catalogsync_api/internal/catalog/storage/repositories"
	"catalogsync_api/metrics"
	"catalogsync_api/pkg/logger"
)

const (
	DefaultPageSize          = 50
	DefaultRequestsPerSecond = 2
)

// ProductLister is the source adapter contract: one page of raw records plus
// the cursor for the next page. An empty cursor terminates the sequence.
type ProductLister interface {
	ListProducts(ctx context.Context, pageSize int, cursor string) ([]json.RawMessage, string, error)
}

// ProductStore is the reconciliation contract the orchestrator needs.
type ProductStore interface {
	Upsert(ctx context.Context, product *models.Product) (repositories.Outcome, error)
}

type Config struct {
	PageSize          int
	RequestsPerSecond int
}

// SyncReport aggregates the outcomes of one sync run.
type SyncReport struct {
	RunID     uuid.UUID `json:"runId"`
	Inserted  int       `json:"inserted"`
	Updated   int       `json:"updated"`
	Unchanged int       `json:"unchanged"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Pages     int       `json:"pages"`
	StartedAt time.Time `json:"startedAt"`
	// Duration is nanoseconds internally; the API reports seconds.
	Duration        time.Duration `json:"-"`
	DurationSeconds float64       `json:"durationSeconds"`
}

func (r *SyncReport) Total() int {
	return r.Inserted + r.Updated + r.Unchanged + r.Skipped + r.Failed
}

// SyncService drives paginated fetch -> normalize -> reconcile cycles.
type SyncService struct {
	lister      ProductLister
	store       ProductStore
	limiter     *rate.Limiter
	pageSize    int
	log         logger.Logger
	syncMetrics *metrics.SyncMetrics
}

func NewSyncService(lister ProductLister, store ProductStore, writer io.Writer, cfg Config) *SyncService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	return &SyncService{
		lister:      lister,
		store:       store,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond),
		pageSize:    cfg.PageSize,
		log:         logger.NewLogger(writer, "[SyncService]"),
		syncMetrics: &metrics.SyncMetrics{},
	}
}

// Run executes one full sync. A fetch error terminates the run early and is
// returned alongside the partial report; everything upserted before the
// failure stays committed. Per-record failures never abort the run.
func (s *SyncService) Run(ctx context.Context) (*SyncReport, error) {
	report := &SyncReport{RunID: uuid.New(), StartedAt: time.Now()}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
		report.DurationSeconds = report.Duration.Seconds()
		metrics.RecordSyncRun(report.Duration)
		s.log.Log("Run %s finished: inserted=%d updated=%d unchanged=%d skipped=%d failed=%d pages=%d",
			report.RunID, report.Inserted, report.Updated, report.Unchanged, report.Skipped, report.Failed, report.Pages)
	}()

	s.log.Log("Starting sync run %s (page size %d)", report.RunID, s.pageSize)

	cursor := ""
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("rate limiter interrupted: %w", err)
		}

		records, nextCursor, err := s.lister.ListProducts(ctx, s.pageSize, cursor)
		if err != nil {
			return report, fmt.Errorf("fetch failed, run stopped: %w", err)
		}

		for _, raw := range records {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			default:
			}
			s.processRecord(ctx, raw, report)
		}

		report.Pages++
		s.syncMetrics.ProcessedPages.Add(1)

		if nextCursor == "" {
			return report, nil
		}
		cursor = nextCursor
	}
}

func (s *SyncService) processRecord(ctx context.Context, raw json.RawMessage, report *SyncReport) {
	product := normalize.Normalize(raw)

	if !product.HasSKU() {
		report.Skipped++
		s.syncMetrics.SkippedCount.Add(1)
		metrics.RecordSyncOutcome("skipped")
		return
	}

	outcome, err := s.store.Upsert(ctx, &product)
	if err != nil {
		report.Failed++
		s.syncMetrics.FailedCount.Add(1)
		metrics.RecordSyncOutcome("failed")
		s.log.Log("Upsert failed for sku %q: %s", product.SKU, err)
		return
	}

	switch outcome {
	case repositories.OutcomeInserted:
		report.Inserted++
		s.syncMetrics.InsertedCount.Add(1)
	case repositories.OutcomeUpdated:
		report.Updated++
		s.syncMetrics.UpdatedCount.Add(1)
	case repositories.OutcomeUnchanged:
		report.Unchanged++
		s.syncMetrics.UnchangedCount.Add(1)
	}
	metrics.RecordSyncOutcome(string(outcome))
}

func (s *SyncService) Metrics() *metrics.SyncMetrics {
	return s.syncMetrics
}
