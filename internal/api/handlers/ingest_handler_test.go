package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/batch"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/extractor"
)

func TestProcessAndUploadRejectsBusyBeforeFetchingPage(t *testing.T) {
	var hits atomic.Int32
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`<a href="/a.pdf">A</a>`))
	}))
	defer page.Close()

	tracker := batch.NewTracker()
	require.NoError(t, tracker.Begin("running-batch", 3, ""))

	coordinator := batch.NewCoordinator(nil, nil, tracker, 1, 50, nil)
	h := NewIngestHandler(extractor.New(5*time.Second, nil), coordinator, tracker)

	req := httptest.NewRequest(http.MethodPost, "/api/process-and-upload-pdfs",
		strings.NewReader(`{"url":"`+page.URL+`"}`))
	rec := httptest.NewRecorder()
	h.ProcessAndUploadPdfs(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int32(0), hits.Load(), "page must not be fetched while a batch is running")
}
