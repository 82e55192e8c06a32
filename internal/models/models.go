package models

import (
	"time"
)

// PdfLink is one PDF reference discovered on a web page.
// URL is always absolute (relative hrefs are resolved against the page URL).
type PdfLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// StoredDocument describes one PDF persisted in the object store.
type StoredDocument struct {
	StorageKey   string    `json:"storage_key"`
	Filename     string    `json:"filename"`
	SourceURL    string    `json:"source_url"`
	UploadedAt   time.Time `json:"uploaded_at"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified,omitzero"`
}

// BatchStatus is the lifecycle state of the single processing batch.
type BatchStatus string

const (
	BatchIdle                BatchStatus = "idle"
	BatchRunning             BatchStatus = "running"
	BatchCompleted           BatchStatus = "completed"
	BatchCompletedWithErrors BatchStatus = "completed_with_errors"
	BatchFailed              BatchStatus = "failed"
)

// Terminal reports whether the batch has finished (successfully or not).
func (s BatchStatus) Terminal() bool {
	return s == BatchCompleted || s == BatchCompletedWithErrors || s == BatchFailed
}

// ProcessingStatus is the process-wide progress record for the current
// (or most recent) ingestion batch. CurrentURL is the most recently
// completed item, not positional progress: workers finish out of order.
type ProcessingStatus struct {
	Status     BatchStatus `json:"status"`
	BatchID    string      `json:"batch_id,omitempty"`
	Total      int         `json:"total"`
	Processed  int         `json:"processed"`
	Failed     int         `json:"failed"`
	Message    string      `json:"message"`
	CurrentURL string      `json:"current_url,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// JobStatus mirrors the ingestion job states reported by the retrieval
// service. Transitions only move forward: STARTING -> IN_PROGRESS ->
// COMPLETE | FAILED.
type JobStatus string

const (
	JobStarting   JobStatus = "STARTING"
	JobInProgress JobStatus = "IN_PROGRESS"
	JobComplete   JobStatus = "COMPLETE"
	JobFailed     JobStatus = "FAILED"
)

// IngestionJob is one asynchronous index-sync run against the corpus.
type IngestionJob struct {
	JobID            string     `json:"job_id"`
	Status           JobStatus  `json:"status"`
	DocumentsScanned int64      `json:"documents_scanned"`
	DocumentsIndexed int64      `json:"documents_indexed"`
	DocumentsFailed  int64      `json:"documents_failed"`
	StartedAt        time.Time  `json:"started_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// Passage is a retrieved text excerpt with its source and similarity score.
type Passage struct {
	URI     string  `json:"uri"`
	Excerpt string  `json:"excerpt"`
	Score   float64 `json:"score"`
}

// Generation is the raw output of the retrieval service's generate call.
type Generation struct {
	Text              string
	Blocked           bool
	GuardrailsApplied bool
}

// Source is one cited passage in an Answer.
type Source struct {
	URI     string  `json:"uri"`
	Excerpt string  `json:"excerpt"`
	Score   float64 `json:"score"`
}

// Answer is the response to a question. Empty Sources with zero Confidence
// is a normal terminal state, not an error.
type Answer struct {
	Text              string   `json:"answer"`
	Sources           []Source `json:"sources"`
	Confidence        float64  `json:"confidence"`
	GuardrailsApplied bool     `json:"guardrails_applied"`
	ProcessingTimeMs  int64    `json:"processing_time_ms"`
}

// StorageStats summarizes the document prefix of the object store.
type StorageStats struct {
	DocumentCount  int   `json:"document_count"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}

// Availability markers used by DetailedStatus when a collaborator cannot
// be reached; the rest of the view is still returned.
const (
	ServiceAvailable   = "available"
	ServiceUnavailable = "unavailable"
)

// DetailedStatus is the unified poll view: storage stats, batch progress,
// the most recent sync job, and corpus readiness.
type DetailedStatus struct {
	Storage     StorageStats     `json:"storage"`
	Processing  ProcessingStatus `json:"processing"`
	SyncJob     *IngestionJob    `json:"sync_job,omitempty"`
	CorpusReady bool             `json:"corpus_ready"`
	Retrieval   string           `json:"retrieval"`
}
