package retrieval

import (
	"sync"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

// JobHolder keeps the most recent ingestion job by recency of submission.
// Job IDs are opaque, so "latest" means "last one we started or refreshed",
// never an ordering of IDs.
type JobHolder struct {
	mu  sync.Mutex
	job *models.IngestionJob
}

func NewJobHolder() *JobHolder {
	return &JobHolder{}
}

// Set replaces the tracked job. A nil job is ignored.
func (h *JobHolder) Set(job *models.IngestionJob) {
	if job == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.job = job
}

// Latest returns a copy of the tracked job, or nil if none was started yet.
func (h *JobHolder) Latest() *models.IngestionJob {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.job == nil {
		return nil
	}
	cp := *h.job
	return &cp
}
