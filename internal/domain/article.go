package domain

import "errors"

// ErrRecordNotFound is returned by stores when no record exists for an id.
var ErrRecordNotFound = errors.New("article record not found")

// ArticleStub is the minimal parsed feed entry before content extraction.
type ArticleStub struct {
	Title   string
	Link    string
	PubDate string
	Creator string
}

// Article carries a stub through extraction and scoring.
type Article struct {
	ArticleStub
	Source      string
	FullText    string
	Summary     string
	Score       int
	Explanation string
}

// Relevance is the parsed answer of the scoring oracle.
type Relevance struct {
	Score       int
	Explanation string
}

// ArticleRecord is persisted for deduplication and delivery throttling.
type ArticleRecord struct {
	ID             string
	Title          string
	Link           string
	PubDate        string
	TimesPosted    int
	RelevanceScore int
	Explanation    string
}

// RecordID derives the dedup key from title and link. Articles sharing
// both fields collide on purpose.
func RecordID(title, link string) string {
	return title + "-" + link
}
