package batch

import (
	"fmt"
	"sync"
	"time"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

// Tracker owns the single process-wide ProcessingStatus record. All
// mutation goes through its methods under one mutex; callers only ever see
// snapshots. The lock is never held across I/O.
type Tracker struct {
	mu     sync.Mutex
	status models.ProcessingStatus
	note   string // sticky annotation, e.g. "truncated to 50 links"
}

func NewTracker() *Tracker {
	return &Tracker{
		status: models.ProcessingStatus{Status: models.BatchIdle},
	}
}

// Begin claims the record for a new batch. It fails with ErrBusy while a
// batch is running, leaving the running batch's status untouched; otherwise
// the record is reset and Total is fixed for the batch's lifetime. The note
// (e.g. a truncation notice) stays attached to every message of the batch.
func (t *Tracker) Begin(batchID string, total int, note string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Status == models.BatchRunning {
		return core.ErrBusy
	}

	t.note = note
	message := fmt.Sprintf("Starting processing of %d PDFs", total)
	if note != "" {
		message += " (" + note + ")"
	}

	t.status = models.ProcessingStatus{
		Status:    models.BatchRunning,
		BatchID:   batchID,
		Total:     total,
		Message:   message,
		Errors:    []string{},
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

// RecordSuccess counts one completed item. Calls arriving after the batch
// left Running (cancellation raced an in-flight fetch) are ignored.
func (t *Tracker) RecordSuccess(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Status != models.BatchRunning {
		return
	}
	t.status.Processed++
	t.status.CurrentURL = url
	t.touch()
}

// RecordFailure counts one failed item and appends it to the error list.
// Like RecordSuccess, it is a no-op once the batch is no longer running.
func (t *Tracker) RecordFailure(url string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Status != models.BatchRunning {
		return
	}
	t.status.Failed++
	t.status.CurrentURL = url
	t.status.Errors = append(t.status.Errors, fmt.Sprintf("%s: %v", url, err))
	t.touch()
}

// Finish moves the batch to its terminal state based on the counts:
// zero failures -> completed, zero successes of a non-empty batch ->
// failed, otherwise completed with errors.
func (t *Tracker) Finish(message string) models.ProcessingStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Status != models.BatchRunning {
		return t.status
	}

	switch {
	case t.status.Failed == 0:
		t.status.Status = models.BatchCompleted
	case t.status.Processed == 0 && t.status.Total > 0:
		t.status.Status = models.BatchFailed
	default:
		t.status.Status = models.BatchCompletedWithErrors
	}
	t.status.CurrentURL = ""
	if t.note != "" {
		message += " (" + t.note + ")"
	}
	t.status.Message = message
	t.status.UpdatedAt = time.Now().UTC()
	return t.status
}

// FinishCancelled moves a cancelled batch to its terminal state. A batch
// with nothing stored is failed; one with partial progress ends
// completed_with_errors so pollers can tell it apart from a clean run.
func (t *Tracker) FinishCancelled(message string) models.ProcessingStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Status != models.BatchRunning {
		return t.status
	}

	if t.status.Processed == 0 {
		t.status.Status = models.BatchFailed
	} else {
		t.status.Status = models.BatchCompletedWithErrors
	}
	t.status.CurrentURL = ""
	if t.note != "" {
		message += " (" + t.note + ")"
	}
	t.status.Message = message
	t.status.UpdatedAt = time.Now().UTC()
	return t.status
}

// Fail marks the whole batch failed before or during execution, e.g. when
// link extraction blew up after the record was claimed.
func (t *Tracker) Fail(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Status != models.BatchRunning {
		return
	}
	t.status.Status = models.BatchFailed
	t.status.CurrentURL = ""
	if t.note != "" {
		message += " (" + t.note + ")"
	}
	t.status.Message = message
	t.touch()
}

// Clear resets the record to idle. Clearing a running batch would let a
// second writer in, so that is rejected with ErrBusy.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Status == models.BatchRunning {
		return core.ErrBusy
	}
	t.status = models.ProcessingStatus{Status: models.BatchIdle, UpdatedAt: time.Now().UTC()}
	return nil
}

// Snapshot returns a copy of the current record.
func (t *Tracker) Snapshot() models.ProcessingStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.status
	snap.Errors = append([]string(nil), t.status.Errors...)
	return snap
}

func (t *Tracker) touch() {
	t.status.UpdatedAt = time.Now().UTC()
	if t.status.Status == models.BatchRunning {
		message := fmt.Sprintf("Processed %d/%d PDFs",
			t.status.Processed+t.status.Failed, t.status.Total)
		if t.note != "" {
			message += " (" + t.note + ")"
		}
		t.status.Message = message
	}
}
