package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

// Some origin servers refuse requests without a browser user agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Extractor discovers PDF links on a web page. It looks at anchor hrefs,
// embedded object/embed elements, and data-download-url attributes used by
// dynamic download widgets.
type Extractor struct {
	client *http.Client
	logger *slog.Logger
}

func New(timeout time.Duration, logger *slog.Logger) *Extractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// ExtractLinks fetches pageURL and returns the distinct absolute PDF URLs
// it references, in document order. Zero links is a normal outcome and
// returns an empty slice, not an error.
func (e *Extractor) ExtractLinks(ctx context.Context, pageURL string) ([]models.PdfLink, error) {
	base, err := parsePageURL(pageURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, &core.FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &core.FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.FetchError{URL: pageURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &core.ParseError{URL: pageURL, Err: err}
	}

	links := []models.PdfLink{}
	seen := map[string]bool{}

	add := func(rawHref, title string) {
		abs := resolvePDF(base, rawHref)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		if title == "" {
			title = fmt.Sprintf("Document %d", len(links)+1)
		}
		links = append(links, models.PdfLink{URL: abs, Title: title})
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			title, _ = sel.Attr("title")
		}
		add(href, title)
	})

	// Embedded viewers reference the PDF through data/src instead of href.
	doc.Find(`object[type="application/pdf"], embed[type="application/pdf"]`).Each(func(_ int, sel *goquery.Selection) {
		if data, ok := sel.Attr("data"); ok {
			add(data, "")
		}
		if src, ok := sel.Attr("src"); ok {
			add(src, "")
		}
	})

	doc.Find("[data-download-url]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("data-download-url")
		title, _ := sel.Attr("data-title")
		if title == "" {
			title = strings.TrimSpace(sel.Text())
		}
		add(href, title)
	})

	e.logger.Info("extracted pdf links", "page", pageURL, "count", len(links))
	return links, nil
}

func parsePageURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, &core.ValidationError{Field: "url", Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &core.ValidationError{Field: "url", Reason: "must be an absolute http(s) URL"}
	}
	if u.Host == "" {
		return nil, &core.ValidationError{Field: "url", Reason: "missing host"}
	}
	return u, nil
}

// resolvePDF resolves href against base and returns the absolute URL if it
// points at a PDF, or "" otherwise.
func resolvePDF(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	if !strings.HasSuffix(strings.ToLower(abs.Path), ".pdf") {
		return ""
	}
	return abs.String()
}
