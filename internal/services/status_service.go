package services

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/batch"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/retrieval"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

// StatusService composes the unified poll view and owns sync triggering.
// Polls are pull-based, side-effect free towards the batch state, and
// idempotent: with no intervening mutation two calls return the same view.
type StatusService struct {
	store     core.ObjectStore
	retriever core.Retriever
	jobs      *retrieval.JobHolder
	tracker   *batch.Tracker
	logger    *slog.Logger
}

func NewStatusService(store core.ObjectStore, retriever core.Retriever, jobs *retrieval.JobHolder, tracker *batch.Tracker, logger *slog.Logger) *StatusService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusService{
		store:     store,
		retriever: retriever,
		jobs:      jobs,
		tracker:   tracker,
		logger:    logger,
	}
}

// TriggerSync starts an index sync and remembers the job handle as the
// latest one. Stored documents are never touched on failure.
func (s *StatusService) TriggerSync(ctx context.Context) (*models.IngestionJob, error) {
	job, err := s.retriever.StartSync(ctx)
	if err != nil {
		return nil, err
	}
	s.jobs.Set(job)
	return job, nil
}

// DetailedStatus gathers storage stats, the latest sync job, and corpus
// readiness concurrently. Storage failures fail the call (there is nothing
// useful to report without them); retrieval failures degrade to an
// unavailable marker with the storage portion intact.
func (s *StatusService) DetailedStatus(ctx context.Context) (*models.DetailedStatus, error) {
	out := &models.DetailedStatus{
		Processing: s.tracker.Snapshot(),
		Retrieval:  models.ServiceAvailable,
	}

	// Each of these is written by exactly one goroutine below.
	var (
		jobDown   bool
		readyDown bool
		job       *models.IngestionJob
		ready     bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.store.Stats(gctx)
		if err != nil {
			return err
		}
		out.Storage = stats
		return nil
	})

	g.Go(func() error {
		latest := s.jobs.Latest()
		if latest == nil {
			return nil
		}
		refreshed, err := s.retriever.SyncJobStatus(gctx, latest.JobID)
		if err != nil {
			// Degrade: report the last known job state.
			s.logger.Warn("sync job refresh failed", "job_id", latest.JobID, "error", err)
			jobDown = true
			job = latest
			return nil
		}
		s.jobs.Set(refreshed)
		job = refreshed
		return nil
	})

	g.Go(func() error {
		ok, err := s.retriever.CorpusReady(gctx)
		if err != nil {
			s.logger.Warn("corpus readiness check failed", "error", err)
			readyDown = true
			return nil
		}
		ready = ok
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.SyncJob = job
	out.CorpusReady = ready
	if jobDown || readyDown {
		out.Retrieval = models.ServiceUnavailable
		out.CorpusReady = false
	}
	return out, nil
}
