package ports

import (
	"context"
	"time"

	"newsradar/internal/domain"
)

// FeedFetcher retrieves a raw feed document over HTTP.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FeedParser turns a raw RSS/Atom document into article stubs.
type FeedParser interface {
	Parse(raw, sourceName string) ([]domain.ArticleStub, error)
}

// ContentExtractor isolates the readable text behind an article link.
// Extraction is best-effort and never fails the pipeline; any problem
// yields an empty string.
type ContentExtractor interface {
	Extract(ctx context.Context, link, sourceDomain string) string
}

// RelevanceScorer asks the external oracle how relevant a text is.
type RelevanceScorer interface {
	Score(ctx context.Context, text string) (domain.Relevance, error)
}

// Summarizer produces a short delivery summary for an article text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ArticleStore persists article records for dedup/throttling.
type ArticleStore interface {
	Get(ctx context.Context, id string) (domain.ArticleRecord, error)
	Put(ctx context.Context, record domain.ArticleRecord) error
	Query(ctx context.Context, minScore int) ([]domain.ArticleRecord, error)
	Delete(ctx context.Context, id string) error
}

// Notifier is the delivery surface for selected articles.
type Notifier interface {
	PublishArticle(ctx context.Context, article domain.Article) error
	PublishNoNews(ctx context.Context) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
