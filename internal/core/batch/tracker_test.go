package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

func TestTrackerBeginRejectsSecondBatch(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Begin("b1", 3, ""))

	err := tr.Begin("b2", 5, "")
	require.ErrorIs(t, err, core.ErrBusy)

	// The running batch's record is untouched.
	snap := tr.Snapshot()
	assert.Equal(t, "b1", snap.BatchID)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, models.BatchRunning, snap.Status)
}

func TestTrackerCountsAndTerminalStatuses(t *testing.T) {
	cases := []struct {
		name      string
		total     int
		successes int
		failures  int
		want      models.BatchStatus
	}{
		{"all succeed", 3, 3, 0, models.BatchCompleted},
		{"partial", 3, 2, 1, models.BatchCompletedWithErrors},
		{"all fail", 3, 0, 3, models.BatchFailed},
		{"empty batch", 0, 0, 0, models.BatchCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker()
			require.NoError(t, tr.Begin("b", tc.total, ""))

			for i := 0; i < tc.successes; i++ {
				tr.RecordSuccess("https://example.org/ok.pdf")
			}
			for i := 0; i < tc.failures; i++ {
				tr.RecordFailure("https://example.org/bad.pdf", errors.New("timeout"))
			}

			final := tr.Finish("done")
			assert.Equal(t, tc.want, final.Status)
			assert.Equal(t, tc.total, final.Total)
			assert.Equal(t, tc.successes+tc.failures, final.Processed+final.Failed)
			assert.Len(t, final.Errors, tc.failures)
		})
	}
}

func TestTrackerIgnoresLateRecordsAfterTerminal(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Begin("b", 2, ""))
	tr.RecordSuccess("https://example.org/a.pdf")
	tr.Finish("cancelled")

	// A straggling in-flight completion must not mutate the record.
	tr.RecordSuccess("https://example.org/late.pdf")
	tr.RecordFailure("https://example.org/late2.pdf", errors.New("late"))

	snap := tr.Snapshot()
	assert.Equal(t, 1, snap.Processed)
	assert.Equal(t, 0, snap.Failed)
}

func TestTrackerClearWhileRunningIsBusy(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Begin("b", 1, ""))

	require.ErrorIs(t, tr.Clear(), core.ErrBusy)

	tr.Finish("done")
	require.NoError(t, tr.Clear())
	assert.Equal(t, models.BatchIdle, tr.Snapshot().Status)
}

func TestTrackerFinishCancelledStatusReflectsProgress(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Begin("b1", 3, ""))
	tr.RecordSuccess("https://example.org/a.pdf")

	final := tr.FinishCancelled("Batch cancelled")
	assert.Equal(t, models.BatchCompletedWithErrors, final.Status)
	assert.Equal(t, "Batch cancelled", final.Message)

	tr2 := NewTracker()
	require.NoError(t, tr2.Begin("b2", 3, ""))

	final2 := tr2.FinishCancelled("Batch cancelled")
	assert.Equal(t, models.BatchFailed, final2.Status)
}

func TestTrackerNoteSticksToMessages(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Begin("b", 2, "truncated from 10 to 2 links"))
	assert.Contains(t, tr.Snapshot().Message, "truncated from 10 to 2 links")

	tr.RecordSuccess("https://example.org/a.pdf")
	assert.Contains(t, tr.Snapshot().Message, "truncated from 10 to 2 links")

	tr.RecordSuccess("https://example.org/b.pdf")
	final := tr.Finish("Processing completed: 2 successful, 0 failed")
	assert.Contains(t, final.Message, "truncated from 10 to 2 links")
}

func TestTrackerSnapshotIsACopy(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Begin("b", 2, ""))
	tr.RecordFailure("https://example.org/x.pdf", errors.New("boom"))

	snap := tr.Snapshot()
	snap.Errors[0] = "mutated"
	assert.NotEqual(t, "mutated", tr.Snapshot().Errors[0])
}
