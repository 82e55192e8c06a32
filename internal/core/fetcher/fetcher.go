package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// maxAttempts bounds download retries: an unbounded retry on one slow host
// would stall the whole batch.
const maxAttempts = 3

// keySeq disambiguates storage keys generated within the same nanosecond.
var keySeq atomic.Uint64

// Fetcher downloads one PDF and uploads it to the object store. It touches
// no shared state; progress accounting belongs to the batch coordinator.
type Fetcher struct {
	client *http.Client
	store  core.ObjectStore
	logger *slog.Logger
}

func New(store core.ObjectStore, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		store:  store,
		logger: logger,
	}
}

// FetchAndStore downloads the PDF with bounded retry and writes it under a
// freshly generated collision-free key. Every failure comes back as a typed
// error carrying the URL; nothing panics or escapes untyped.
func (f *Fetcher) FetchAndStore(ctx context.Context, link models.PdfLink) (*models.StoredDocument, error) {
	data, err := f.download(ctx, link.URL)
	if err != nil {
		return nil, err
	}

	key := StorageKey(link.URL, time.Now().UTC())
	uploadedAt := time.Now().UTC()

	metadata := map[string]string{
		"source_url":  link.URL,
		"uploaded_at": uploadedAt.Format(time.RFC3339),
	}
	if link.Title != "" {
		metadata["title"] = link.Title
	}

	if err := f.store.Put(ctx, key, data, "application/pdf", metadata); err != nil {
		return nil, err
	}

	f.logger.Info("stored pdf", "url", link.URL, "key", key, "size", len(data))

	return &models.StoredDocument{
		StorageKey: key,
		Filename:   path.Base(key),
		SourceURL:  link.URL,
		UploadedAt: uploadedAt,
		SizeBytes:  int64(len(data)),
	}, nil
}

// download fetches the PDF bytes, retrying transport errors and 429/5xx
// responses with exponential backoff. 4xx responses are terminal.
func (f *Fetcher) download(ctx context.Context, pdfURL string) ([]byte, error) {
	var data []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, maxAttempts-1), ctx))
	if err != nil {
		return nil, &core.FetchError{URL: pdfURL, Err: err}
	}
	return data, nil
}

// StorageKey builds `documents/<unix-nanos>-<seq>_<filename>.pdf`. The
// timestamp keeps keys sortable by ingestion time; the sequence keeps two
// concurrent fetches of identically named files from ever colliding, so a
// re-ingested URL never overwrites an existing object.
func StorageKey(rawURL string, now time.Time) string {
	name := "document.pdf"
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "." && base != "/" {
			name = base
		}
	}
	name = sanitizeFilename(name)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}

	return fmt.Sprintf("%s%d-%d_%s", core.DocumentPrefix, now.UnixNano(), keySeq.Add(1), name)
}

// sanitizeFilename keeps keys S3- and URL-friendly.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if strings.Trim(out, "._-") == "" {
		return "document.pdf"
	}
	return out
}
