package core

import (
	"context"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

// DocumentPrefix is where ingested PDFs live inside the bucket. The
// retrieval service's data source points at the same prefix.
const DocumentPrefix = "documents/"

// ObjectStore defines the durable blob storage the ingestion path writes
// to. It's abstract so S3 can be swapped for MinIO, GCS, etc.
type ObjectStore interface {
	// Put writes one object atomically: after an error the object does
	// not exist, after success it is fully visible.
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error

	// Stats counts documents under DocumentPrefix and sums their sizes.
	Stats(ctx context.Context) (models.StorageStats, error)

	// List returns every stored document with its metadata.
	List(ctx context.Context) ([]models.StoredDocument, error)

	// DeleteAll removes everything under DocumentPrefix and reports how
	// many objects were deleted.
	DeleteAll(ctx context.Context) (int, error)

	// Ping verifies the bucket is reachable.
	Ping(ctx context.Context) error
}

// Retriever is the managed retrieval-and-generation service: it indexes
// the object-store prefix asynchronously and answers queries against the
// resulting corpus.
type Retriever interface {
	// StartSync asks the service to (re)index the storage prefix and
	// returns the resulting job handle.
	StartSync(ctx context.Context) (*models.IngestionJob, error)

	// SyncJobStatus fetches the current state of a previously started job.
	SyncJobStatus(ctx context.Context, jobID string) (*models.IngestionJob, error)

	// CorpusReady reports whether the corpus can serve queries.
	CorpusReady(ctx context.Context) (bool, error)

	// RetrievePassages returns the top-ranked passages for a question.
	// An empty slice is a normal outcome, not an error.
	RetrievePassages(ctx context.Context, question string, maxResults int32) ([]models.Passage, error)

	// GenerateAnswer produces a grounded answer, optionally passing the
	// exchange through the content-safety guardrail.
	GenerateAnswer(ctx context.Context, question string, maxResults int32, useGuardrails bool) (*models.Generation, error)

	// Ping verifies the corpus handle is reachable.
	Ping(ctx context.Context) error
}
