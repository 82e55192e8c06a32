package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/batch"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/retrieval"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

// fakeObjectStore serves canned stats for the status view.
type fakeObjectStore struct {
	stats    models.StorageStats
	statsErr error
}

func (s *fakeObjectStore) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	return nil
}
func (s *fakeObjectStore) Stats(ctx context.Context) (models.StorageStats, error) {
	return s.stats, s.statsErr
}
func (s *fakeObjectStore) List(ctx context.Context) ([]models.StoredDocument, error) {
	return nil, nil
}
func (s *fakeObjectStore) DeleteAll(ctx context.Context) (int, error) { return 0, nil }
func (s *fakeObjectStore) Ping(ctx context.Context) error             { return nil }

func newStatusFixture(store *fakeObjectStore, r *fakeRetriever) (*StatusService, *retrieval.JobHolder, *batch.Tracker) {
	jobs := retrieval.NewJobHolder()
	tracker := batch.NewTracker()
	return NewStatusService(store, r, jobs, tracker, nil), jobs, tracker
}

func TestDetailedStatusComposesAllParts(t *testing.T) {
	store := &fakeObjectStore{stats: models.StorageStats{DocumentCount: 7, TotalSizeBytes: 1024}}
	updated := time.Now().UTC()
	r := &fakeRetriever{
		ready: true,
		jobStatus: &models.IngestionJob{
			JobID:            "job-9",
			Status:           models.JobComplete,
			DocumentsScanned: 7,
			DocumentsIndexed: 7,
			UpdatedAt:        &updated,
		},
	}
	svc, jobs, _ := newStatusFixture(store, r)
	jobs.Set(&models.IngestionJob{JobID: "job-9", Status: models.JobInProgress})

	status, err := svc.DetailedStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, status.Storage.DocumentCount)
	assert.Equal(t, int64(1024), status.Storage.TotalSizeBytes)
	assert.True(t, status.CorpusReady)
	assert.Equal(t, models.ServiceAvailable, status.Retrieval)
	require.NotNil(t, status.SyncJob)
	assert.Equal(t, models.JobComplete, status.SyncJob.Status)

	// The refreshed job becomes the remembered latest.
	assert.Equal(t, models.JobComplete, jobs.Latest().Status)
}

func TestDetailedStatusDegradesWhenRetrievalUnreachable(t *testing.T) {
	store := &fakeObjectStore{stats: models.StorageStats{DocumentCount: 3, TotalSizeBytes: 99}}
	r := &fakeRetriever{
		statusErr: &core.SyncUnavailableError{Err: errors.New("dial timeout")},
		readyErr:  &core.SyncUnavailableError{Err: errors.New("dial timeout")},
	}
	svc, jobs, _ := newStatusFixture(store, r)
	jobs.Set(&models.IngestionJob{JobID: "job-1", Status: models.JobInProgress})

	status, err := svc.DetailedStatus(context.Background())
	require.NoError(t, err, "retrieval outage must not fail the whole call")

	assert.Equal(t, 3, status.Storage.DocumentCount)
	assert.Equal(t, models.ServiceUnavailable, status.Retrieval)
	assert.False(t, status.CorpusReady)
	// Last known job state is still reported.
	require.NotNil(t, status.SyncJob)
	assert.Equal(t, "job-1", status.SyncJob.JobID)
}

func TestDetailedStatusStorageFailureFailsTheCall(t *testing.T) {
	store := &fakeObjectStore{statsErr: &core.StorageError{Err: errors.New("no such bucket")}}
	svc, _, _ := newStatusFixture(store, &fakeRetriever{ready: true})

	_, err := svc.DetailedStatus(context.Background())
	var storageErr *core.StorageError
	require.True(t, errors.As(err, &storageErr))
}

func TestDetailedStatusIsIdempotent(t *testing.T) {
	store := &fakeObjectStore{stats: models.StorageStats{DocumentCount: 2, TotalSizeBytes: 10}}
	r := &fakeRetriever{ready: true}
	svc, _, _ := newStatusFixture(store, r)

	first, err := svc.DetailedStatus(context.Background())
	require.NoError(t, err)
	second, err := svc.DetailedStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Storage, second.Storage)
	assert.Equal(t, first.CorpusReady, second.CorpusReady)
	assert.Equal(t, first.SyncJob, second.SyncJob)
	assert.Equal(t, first.Retrieval, second.Retrieval)
}

func TestDetailedStatusWithoutAnySyncJob(t *testing.T) {
	store := &fakeObjectStore{}
	svc, _, _ := newStatusFixture(store, &fakeRetriever{ready: false})

	status, err := svc.DetailedStatus(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status.SyncJob)
	assert.False(t, status.CorpusReady)
	assert.Equal(t, models.ServiceAvailable, status.Retrieval)
}

func TestTriggerSyncRemembersLatestJob(t *testing.T) {
	r := &fakeRetriever{job: &models.IngestionJob{JobID: "job-42", Status: models.JobStarting}}
	svc, jobs, _ := newStatusFixture(&fakeObjectStore{}, r)

	job, err := svc.TriggerSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "job-42", job.JobID)
	assert.Equal(t, "job-42", jobs.Latest().JobID)
}

func TestTriggerSyncSurfacesOutageWithoutJob(t *testing.T) {
	r := &fakeRetriever{startErr: &core.SyncUnavailableError{Err: errors.New("down")}}
	svc, jobs, _ := newStatusFixture(&fakeObjectStore{}, r)

	_, err := svc.TriggerSync(context.Background())
	var syncErr *core.SyncUnavailableError
	require.True(t, errors.As(err, &syncErr))
	assert.Nil(t, jobs.Latest())
}
