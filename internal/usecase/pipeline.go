package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"newsradar/internal/domain"
	"newsradar/internal/ports"
)

const summaryPreviewLen = 500

// Source is one configured syndication endpoint.
type Source struct {
	Name string
	URL  string
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Fetcher    ports.FeedFetcher
	Parser     ports.FeedParser
	Extractor  ports.ContentExtractor
	Scorer     ports.RelevanceScorer
	Summarizer ports.Summarizer
	Store      ports.ArticleStore
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// PipelineSettings carries the run policies.
type PipelineSettings struct {
	Sources            []Source
	ScoreThreshold     int
	PostCap            int
	MaxPerSource       int
	ExtractConcurrency int64
}

// Pipeline composes fetch, parse, extract, score, filter, throttle,
// and delivery across all configured sources.
type Pipeline struct {
	fetcher    ports.FeedFetcher
	parser     ports.FeedParser
	extractor  ports.ContentExtractor
	scorer     ports.RelevanceScorer
	summarizer ports.Summarizer
	store      ports.ArticleStore
	notifier   ports.Notifier
	throttler  *Throttler
	logger     *slog.Logger

	sources      []Source
	threshold    int
	maxPerSource int
	extractSem   *semaphore.Weighted
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps, settings PipelineSettings) *Pipeline {
	if settings.ScoreThreshold <= 0 {
		settings.ScoreThreshold = 50
	}
	if settings.MaxPerSource <= 0 {
		settings.MaxPerSource = 3
	}
	if settings.ExtractConcurrency <= 0 {
		settings.ExtractConcurrency = 4
	}

	return &Pipeline{
		fetcher:      deps.Fetcher,
		parser:       deps.Parser,
		extractor:    deps.Extractor,
		scorer:       deps.Scorer,
		summarizer:   deps.Summarizer,
		store:        deps.Store,
		notifier:     deps.Notifier,
		throttler:    NewThrottler(deps.Store, settings.PostCap),
		logger:       deps.Logger,
		sources:      settings.Sources,
		threshold:    settings.ScoreThreshold,
		maxPerSource: settings.MaxPerSource,
		extractSem:   semaphore.NewWeighted(settings.ExtractConcurrency),
	}
}

// Run executes one full pipeline pass. Failures are contained at the
// source or article granularity; only delivery-surface errors abort.
func (p *Pipeline) Run(ctx context.Context) error {
	articles := p.collect(ctx)
	p.info("collection finished", "articles", len(articles))

	scored := p.scoreAll(ctx, articles)
	p.logSourceTotals(scored)

	var relevant []domain.Article
	for _, article := range scored {
		if article.Score > p.threshold {
			relevant = append(relevant, article)
		}
	}
	p.info("relevance filter applied", "relevant", len(relevant), "threshold", p.threshold)

	return p.deliver(ctx, relevant)
}

// collect fans one worker out per source and gathers their articles.
// A failing source contributes nothing and does not affect siblings.
func (p *Pipeline) collect(ctx context.Context) []domain.Article {
	results := make(chan []domain.Article, len(p.sources))

	var wg sync.WaitGroup
	for _, src := range p.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			articles, err := p.collectSource(ctx, src)
			if err != nil {
				p.warn("source skipped", "source", src.Name, "error", err)
				return
			}
			results <- articles
		}(src)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var combined []domain.Article
	for batch := range results {
		combined = append(combined, batch...)
	}

	return combined
}

func (p *Pipeline) collectSource(ctx context.Context, src Source) ([]domain.Article, error) {
	raw, err := p.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.URL, err)
	}

	stubs, err := p.parser.Parse(raw, src.Name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name, err)
	}

	sortByPubDateDesc(stubs)
	if len(stubs) > p.maxPerSource {
		stubs = stubs[:p.maxPerSource]
	}

	sourceDomain := hostOf(src.URL)
	articles := make([]domain.Article, len(stubs))

	var wg sync.WaitGroup
	for i, stub := range stubs {
		wg.Add(1)
		go func(i int, stub domain.ArticleStub) {
			defer wg.Done()

			article := domain.Article{ArticleStub: stub, Source: src.Name}
			if p.extractor != nil && p.extractSem.Acquire(ctx, 1) == nil {
				article.FullText = p.extractor.Extract(ctx, stub.Link, sourceDomain)
				p.extractSem.Release(1)
			}
			article.Summary = previewSummary(article.FullText)

			articles[i] = article
		}(i, stub)
	}
	wg.Wait()

	p.debug("source collected", "source", src.Name, "articles", len(articles))
	return articles, nil
}

// scoreAll scores every article concurrently; the scorer applies its
// own global semaphore, so fan-out here is unbounded. Articles whose
// scoring fails with a transport error are excluded from the result.
func (p *Pipeline) scoreAll(ctx context.Context, articles []domain.Article) []domain.Article {
	if p.scorer == nil || len(articles) == 0 {
		return nil
	}

	scored := make([]domain.Article, len(articles))
	kept := make([]bool, len(articles))

	var wg sync.WaitGroup
	for i := range articles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			article := articles[i]
			relevance, err := p.scorer.Score(ctx, article.FullText)
			if err != nil {
				p.warn("article unscored", "title", article.Title, "error", err)
				return
			}

			article.Score = relevance.Score
			article.Explanation = relevance.Explanation
			scored[i] = article
			kept[i] = true
		}(i)
	}
	wg.Wait()

	var result []domain.Article
	for i, ok := range kept {
		if ok {
			result = append(result, scored[i])
		}
	}

	return result
}

// deliver applies the throttle gate, summarizes, persists, and posts
// each surviving article. An empty deliverable set is announced
// explicitly so operators can tell "found nothing" from "did not run".
func (p *Pipeline) deliver(ctx context.Context, relevant []domain.Article) error {
	var delivered int
	for _, article := range relevant {
		ok, record, err := p.throttler.ShouldDeliver(ctx, article)
		if err != nil {
			p.warn("throttle check failed", "title", article.Title, "error", err)
			continue
		}
		if !ok {
			p.debug("article suppressed", "title", article.Title, "times_posted", record.TimesPosted)
			continue
		}

		article.Summary = p.summarize(ctx, article)

		if p.notifier != nil {
			if err := p.notifier.PublishArticle(ctx, article); err != nil {
				return fmt.Errorf("deliver article %q: %w", article.Title, err)
			}
		}
		delivered++

		record.TimesPosted++
		record.RelevanceScore = article.Score
		record.Explanation = article.Explanation
		if p.store != nil {
			if err := p.store.Put(ctx, record); err != nil {
				p.warn("record not persisted", "id", record.ID, "error", err)
			}
		}
	}

	p.info("delivery finished", "delivered", delivered)

	if p.store != nil {
		if records, err := p.store.Query(ctx, p.threshold+1); err == nil {
			p.debug("relevant records on file", "count", len(records))
		}
	}

	if delivered == 0 && p.notifier != nil {
		if err := p.notifier.PublishNoNews(ctx); err != nil {
			return fmt.Errorf("announce empty result: %w", err)
		}
	}

	return nil
}

func (p *Pipeline) summarize(ctx context.Context, article domain.Article) string {
	if p.summarizer == nil || article.FullText == "" {
		return article.Summary
	}

	summary, err := p.summarizer.Summarize(ctx, article.FullText)
	if err != nil || summary == "" {
		p.debug("summarizer fallback", "title", article.Title, "error", err)
		return article.Summary
	}

	return summary
}

// logSourceTotals sums every scored article's score per source,
// including ones below the threshold.
func (p *Pipeline) logSourceTotals(scored []domain.Article) {
	totals := make(map[string]int)
	for _, article := range scored {
		totals[article.Source] += article.Score
	}
	for source, total := range totals {
		p.info("source score total", "source", source, "total_score", total)
	}
}

func previewSummary(fullText string) string {
	if fullText == "" {
		return ""
	}
	if len(fullText) <= summaryPreviewLen {
		return fullText
	}
	return truncateAtRune(fullText, summaryPreviewLen) + "..."
}

// truncateAtRune cuts s to at most limit bytes without splitting a
// multi-byte rune at the cut point.
func truncateAtRune(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// pubDateLayouts covers the date shapes the configured feeds emit.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02 15:04:05",
}

func parsePubDate(value string) (time.Time, bool) {
	for _, layout := range pubDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// sortByPubDateDesc orders newest first. Stubs with unparseable dates
// sort strictly after dated ones and keep their relative document
// order among themselves.
func sortByPubDateDesc(stubs []domain.ArticleStub) {
	sort.SliceStable(stubs, func(i, j int) bool {
		a, okA := parsePubDate(stubs[i].PubDate)
		b, okB := parsePubDate(stubs[j].PubDate)
		if okA != okB {
			return okA
		}
		if !okA {
			return false
		}
		return a.After(b)
	})
}

func hostOf(raw string) string {
	if parsed, err := url.Parse(raw); err == nil {
		return parsed.Hostname()
	}
	return ""
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
