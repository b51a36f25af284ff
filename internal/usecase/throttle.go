package usecase

import (
	"context"
	"errors"
	"fmt"

	"newsradar/internal/domain"
	"newsradar/internal/ports"
)

// Throttler decides whether an article may be delivered, based on its
// persisted record. It never writes; callers persist the incremented
// record only after an actual delivery.
type Throttler struct {
	store ports.ArticleStore
	cap   int
}

// NewThrottler wires the record store; cap defaults to 3.
func NewThrottler(store ports.ArticleStore, cap int) *Throttler {
	if cap <= 0 {
		cap = 3
	}
	return &Throttler{store: store, cap: cap}
}

// ShouldDeliver looks the article's record up by its deterministic id.
// Unknown articles and articles below the post cap are eligible;
// articles at or above the cap are suppressed regardless of score.
func (t *Throttler) ShouldDeliver(ctx context.Context, article domain.Article) (bool, domain.ArticleRecord, error) {
	id := domain.RecordID(article.Title, article.Link)

	if t.store == nil {
		return true, newRecord(id, article), nil
	}

	record, err := t.store.Get(ctx, id)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return true, newRecord(id, article), nil
	}
	if err != nil {
		return false, domain.ArticleRecord{}, fmt.Errorf("look up record %s: %w", id, err)
	}

	if record.TimesPosted >= t.cap {
		return false, record, nil
	}

	return true, record, nil
}

func newRecord(id string, article domain.Article) domain.ArticleRecord {
	return domain.ArticleRecord{
		ID:             id,
		Title:          article.Title,
		Link:           article.Link,
		PubDate:        article.PubDate,
		TimesPosted:    0,
		RelevanceScore: article.Score,
		Explanation:    article.Explanation,
	}
}
