package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsradar/internal/ports"
)

// Containers commonly wrapping the readable body of an article page.
var containerPatterns = []string{"post-content", "entry-content", "article-body", "content"}

// Extractor fetches an article page and isolates its readable text.
// Every failure path returns an empty string; extraction never aborts
// a pipeline run.
type Extractor struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.ContentExtractor = (*Extractor)(nil)

// New wires an HTTP client; a nil client gets a 10s timeout.
func New(client *http.Client, logger *slog.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Extractor{client: client, logger: logger}
}

// Extract fetches the linked page and applies a readability heuristic.
// Links whose root domain differs from the feed's own domain are
// skipped without any network call.
func (e *Extractor) Extract(ctx context.Context, link, sourceDomain string) string {
	if !sameRootDomain(link, sourceDomain) {
		e.debug("off-domain link skipped", "link", link, "source_domain", sourceDomain)
		return ""
	}

	doc, err := e.fetchDocument(ctx, link)
	if err != nil {
		e.debug("article fetch failed", "link", link, "error", err)
		return ""
	}

	return readableText(doc)
}

func (e *Extractor) fetchDocument(ctx context.Context, link string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "newsradar/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article returned %s", resp.Status)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// readableText picks the densest content block of the document.
func readableText(doc *goquery.Document) string {
	doc.Find("script, style").Remove()

	selectors := []string{"article", "main"}
	for _, pattern := range containerPatterns {
		selectors = append(selectors,
			"div[class*='"+pattern+"']",
			"div[id*='"+pattern+"']",
		)
	}

	var best string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := collapseWhitespace(sel.Text())
			if len(text) > len(best) {
				best = text
			}
		})
	}

	if best != "" {
		return best
	}

	if body := doc.Find("body"); body.Length() > 0 {
		return collapseWhitespace(body.Text())
	}

	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// sameRootDomain compares the last two DNS labels of both hosts.
// Arguments may be full URLs or bare hostnames.
func sameRootDomain(link, sourceDomain string) bool {
	linkRoot := rootDomain(hostOf(link))
	sourceRoot := rootDomain(hostOf(sourceDomain))
	return linkRoot != "" && linkRoot == sourceRoot
}

func hostOf(raw string) string {
	if strings.Contains(raw, "://") {
		if parsed, err := url.Parse(raw); err == nil {
			return parsed.Hostname()
		}
		return ""
	}
	return strings.TrimSuffix(raw, "/")
}

func rootDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
