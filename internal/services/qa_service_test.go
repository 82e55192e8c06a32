package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

// fakeRetriever scripts the retrieval service for tests.
type fakeRetriever struct {
	passages    []models.Passage
	retrieveErr error

	generation  *models.Generation
	generateErr error

	job       *models.IngestionJob
	startErr  error
	jobStatus *models.IngestionJob
	statusErr error
	ready     bool
	readyErr  error

	lastMaxResults int32
	generateCalls  int
}

func (f *fakeRetriever) StartSync(ctx context.Context) (*models.IngestionJob, error) {
	return f.job, f.startErr
}

func (f *fakeRetriever) SyncJobStatus(ctx context.Context, jobID string) (*models.IngestionJob, error) {
	return f.jobStatus, f.statusErr
}

func (f *fakeRetriever) CorpusReady(ctx context.Context) (bool, error) {
	return f.ready, f.readyErr
}

func (f *fakeRetriever) RetrievePassages(ctx context.Context, question string, maxResults int32) ([]models.Passage, error) {
	f.lastMaxResults = maxResults
	return f.passages, f.retrieveErr
}

func (f *fakeRetriever) GenerateAnswer(ctx context.Context, question string, maxResults int32, useGuardrails bool) (*models.Generation, error) {
	f.generateCalls++
	return f.generation, f.generateErr
}

func (f *fakeRetriever) Ping(ctx context.Context) error { return nil }

func TestAskReturnsAnswerWithSourcesAndConfidence(t *testing.T) {
	r := &fakeRetriever{
		passages: []models.Passage{
			{URI: "s3://bucket/documents/1_a.pdf", Excerpt: "Foster care placement requires...", Score: 0.91},
			{URI: "s3://bucket/documents/2_b.pdf", Excerpt: "Secondary source", Score: 0.62},
		},
		generation: &models.Generation{Text: "Placement requires a licensed home.", GuardrailsApplied: true},
	}
	qa := NewQAService(r, 5, nil)

	ans, err := qa.Ask(context.Background(), "What does placement require?", 5, true)
	require.NoError(t, err)

	assert.Equal(t, "Placement requires a licensed home.", ans.Text)
	require.Len(t, ans.Sources, 2)
	assert.Equal(t, "s3://bucket/documents/1_a.pdf", ans.Sources[0].URI)
	assert.InDelta(t, 0.91, ans.Confidence, 1e-9)
	assert.True(t, ans.GuardrailsApplied)
	assert.GreaterOrEqual(t, ans.ProcessingTimeMs, int64(0))
}

func TestAskNoPassagesIsZeroConfidenceAnswerNotError(t *testing.T) {
	r := &fakeRetriever{passages: []models.Passage{}}
	qa := NewQAService(r, 5, nil)

	ans, err := qa.Ask(context.Background(), "Anything about llamas?", 5, true)
	require.NoError(t, err)

	assert.Equal(t, NoMatchMessage, ans.Text)
	assert.Empty(t, ans.Sources)
	assert.NotNil(t, ans.Sources)
	assert.Zero(t, ans.Confidence)
	// No generation call when there is nothing to ground on.
	assert.Equal(t, 0, r.generateCalls)
}

func TestAskGuardrailBlockSubstitutesRefusal(t *testing.T) {
	r := &fakeRetriever{
		passages:   []models.Passage{{URI: "s3://b/k", Excerpt: "text", Score: 0.8}},
		generation: &models.Generation{Text: "", Blocked: true, GuardrailsApplied: true},
	}
	qa := NewQAService(r, 5, nil)

	ans, err := qa.Ask(context.Background(), "Give me medical advice", 5, true)
	require.NoError(t, err)

	assert.Equal(t, RefusalMessage, ans.Text)
	assert.Empty(t, ans.Sources)
	assert.Zero(t, ans.Confidence)
	assert.True(t, ans.GuardrailsApplied)
}

func TestAskValidatesQuestion(t *testing.T) {
	qa := NewQAService(&fakeRetriever{}, 5, nil)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := qa.Ask(context.Background(), q, 5, false)
		var vErr *core.ValidationError
		require.Truef(t, errors.As(err, &vErr), "expected validation error for %q", q)
	}
}

func TestAskClampsMaxResults(t *testing.T) {
	r := &fakeRetriever{passages: []models.Passage{}}
	qa := NewQAService(r, 5, nil)

	_, err := qa.Ask(context.Background(), "q", 100, false)
	require.NoError(t, err)
	assert.Equal(t, int32(20), r.lastMaxResults)

	_, err = qa.Ask(context.Background(), "q", 0, false)
	require.NoError(t, err)
	assert.Equal(t, int32(5), r.lastMaxResults)

	_, err = qa.Ask(context.Background(), "q", -3, false)
	require.NoError(t, err)
	assert.Equal(t, int32(5), r.lastMaxResults)
}

func TestAskSurfacesRetrievalOutage(t *testing.T) {
	r := &fakeRetriever{retrieveErr: &core.SyncUnavailableError{Err: errors.New("dial timeout")}}
	qa := NewQAService(r, 5, nil)

	_, err := qa.Ask(context.Background(), "q", 5, false)
	var syncErr *core.SyncUnavailableError
	require.True(t, errors.As(err, &syncErr))
}

func TestAskTruncatesLongExcerpts(t *testing.T) {
	long := strings.Repeat("x", 500)
	r := &fakeRetriever{
		passages:   []models.Passage{{URI: "s3://b/k", Excerpt: long, Score: 0.7}},
		generation: &models.Generation{Text: "ok"},
	}
	qa := NewQAService(r, 5, nil)

	ans, err := qa.Ask(context.Background(), "q", 5, false)
	require.NoError(t, err)
	require.Len(t, ans.Sources, 1)
	assert.Len(t, ans.Sources[0].Excerpt, excerptLimit+3)
	assert.True(t, strings.HasSuffix(ans.Sources[0].Excerpt, "..."))
}

func TestAskTruncatesExcerptsOnRuneBoundary(t *testing.T) {
	// One leading ASCII byte puts every two-byte rune on an odd offset, so
	// a byte-indexed cut at excerptLimit would land mid-rune.
	long := "a" + strings.Repeat("é", excerptLimit)
	r := &fakeRetriever{
		passages:   []models.Passage{{URI: "s3://b/k", Excerpt: long, Score: 0.7}},
		generation: &models.Generation{Text: "ok"},
	}
	qa := NewQAService(r, 5, nil)

	ans, err := qa.Ask(context.Background(), "q", 5, false)
	require.NoError(t, err)
	require.Len(t, ans.Sources, 1)

	got := ans.Sources[0].Excerpt
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), excerptLimit+3)
}

func TestAskClampsConfidenceToUnitRange(t *testing.T) {
	r := &fakeRetriever{
		passages:   []models.Passage{{URI: "s3://b/k", Excerpt: "t", Score: 1.7}},
		generation: &models.Generation{Text: "ok"},
	}
	qa := NewQAService(r, 5, nil)

	ans, err := qa.Ask(context.Background(), "q", 5, false)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ans.Confidence)
}
