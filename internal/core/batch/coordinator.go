package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

// FetchStorer is the slice of the fetch worker the coordinator needs.
type FetchStorer interface {
	FetchAndStore(ctx context.Context, link models.PdfLink) (*models.StoredDocument, error)
}

// SyncTrigger starts an index sync after a batch lands at least one
// document. Failures here never touch the stored documents.
type SyncTrigger interface {
	TriggerSync(ctx context.Context) (*models.IngestionJob, error)
}

// Coordinator drives one bounded-concurrency batch at a time over a list
// of PDF links and feeds every per-item outcome into the shared Tracker.
type Coordinator struct {
	fetcher     FetchStorer
	sync        SyncTrigger
	tracker     *Tracker
	concurrency int
	maxItems    int
	logger      *slog.Logger

	mu          sync.Mutex
	cancel      context.CancelFunc
	cancelBatch string // batch the stored cancel func belongs to
}

func NewCoordinator(fetcher FetchStorer, sync SyncTrigger, tracker *Tracker, concurrency, maxItems int, logger *slog.Logger) *Coordinator {
	if concurrency < 1 {
		concurrency = 3
	}
	if maxItems < 1 {
		maxItems = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		fetcher:     fetcher,
		sync:        sync,
		tracker:     tracker,
		concurrency: concurrency,
		maxItems:    maxItems,
		logger:      logger,
	}
}

// Start claims the status record and launches the batch in the background,
// returning the initial snapshot so the handler can reply 202 immediately.
// ErrBusy comes back untouched if a batch is already running. maxItems <= 0
// falls back to the configured ceiling; the ceiling always applies.
func (c *Coordinator) Start(links []models.PdfLink, maxItems int) (models.ProcessingStatus, error) {
	limit := c.maxItems
	if maxItems > 0 && maxItems < limit {
		limit = maxItems
	}

	note := ""
	if len(links) > limit {
		note = fmt.Sprintf("truncated from %d to %d links", len(links), limit)
		links = links[:limit]
	}

	batchID := uuid.NewString()
	if err := c.tracker.Begin(batchID, len(links), note); err != nil {
		return models.ProcessingStatus{}, err
	}

	if len(links) == 0 {
		// Nothing to do: terminal immediately, no network calls.
		c.tracker.Finish("No PDF links to process")
		return c.tracker.Snapshot(), nil
	}

	// The batch must outlive the HTTP request that started it.
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.cancelBatch = batchID
	c.mu.Unlock()

	go c.run(ctx, cancel, batchID, links)

	return c.tracker.Snapshot(), nil
}

// Cancel stops the running batch: no new fetches are issued and in-flight
// completions are ignored once the status leaves Running.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Coordinator) run(ctx context.Context, cancel context.CancelFunc, batchID string, links []models.PdfLink) {
	defer func() {
		// Release only this batch's slot: the next batch may have replaced
		// c.cancel while the sync trigger below was still in flight, and
		// cancelling that one would abort a batch nobody asked to stop.
		c.mu.Lock()
		if c.cancelBatch == batchID {
			c.cancel = nil
			c.cancelBatch = ""
		}
		c.mu.Unlock()
		cancel()
	}()

	pool, err := ants.NewPool(c.concurrency)
	if err != nil {
		c.tracker.Fail(fmt.Sprintf("worker pool: %v", err))
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}

		link := link
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			doc, err := c.fetcher.FetchAndStore(ctx, link)
			switch {
			case ctx.Err() != nil:
				// Cancelled while in flight; the tracker ignores late
				// records anyway, but don't count it as a failure.
			case err != nil:
				c.logger.Warn("pdf failed", "batch_id", batchID, "url", link.URL, "error", err)
				c.tracker.RecordFailure(link.URL, err)
			default:
				c.logger.Info("pdf stored", "batch_id", batchID, "url", link.URL, "key", doc.StorageKey)
				c.tracker.RecordSuccess(link.URL)
			}
		})
		if submitErr != nil {
			wg.Done()
			c.tracker.RecordFailure(link.URL, submitErr)
		}
	}
	wg.Wait()

	var final models.ProcessingStatus
	if ctx.Err() != nil {
		// Cancelled: anything already stored still counts.
		final = c.tracker.FinishCancelled("Batch cancelled")
	} else {
		snap := c.tracker.Snapshot()
		final = c.tracker.Finish(fmt.Sprintf("Processing completed: %d successful, %d failed",
			snap.Processed, snap.Failed))
	}

	c.logger.Info("batch finished",
		"batch_id", batchID,
		"status", final.Status,
		"processed", final.Processed,
		"failed", final.Failed)

	// Storage and indexing stay decoupled: documents are durable now, so a
	// sync failure is only logged and a later manual sync can recover.
	if final.Processed > 0 && ctx.Err() == nil {
		if job, err := c.sync.TriggerSync(context.Background()); err != nil {
			c.logger.Error("index sync failed to start", "batch_id", batchID, "error", err)
		} else {
			c.logger.Info("index sync started", "batch_id", batchID, "job_id", job.JobID)
		}
	}
}
