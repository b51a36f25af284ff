package usecase

import (
	"context"
	"testing"

	"newsradar/internal/domain"
)

func sampleArticle() domain.Article {
	return domain.Article{
		ArticleStub: domain.ArticleStub{
			Title:   "AI Update",
			Link:    "https://example.com/ai-update",
			PubDate: "Mon, 06 Jan 2025 10:00:00 +0000",
			Creator: "Jane Doe",
		},
		Source:      "Example Wire",
		Score:       80,
		Explanation: "strong ML focus",
	}
}

func TestShouldDeliverUnknownArticleIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	throttler := NewThrottler(store, 3)
	ctx := context.Background()
	article := sampleArticle()

	for i := 0; i < 2; i++ {
		ok, record, err := throttler.ShouldDeliver(ctx, article)
		if err != nil {
			t.Fatalf("ShouldDeliver returned error: %v", err)
		}
		if !ok {
			t.Fatalf("call %d: expected unknown article to be deliverable", i+1)
		}
		if record.ID != domain.RecordID(article.Title, article.Link) {
			t.Fatalf("unexpected record id: %q", record.ID)
		}
		if record.TimesPosted != 0 {
			t.Fatalf("fresh record should start at 0, got %d", record.TimesPosted)
		}
	}
}

func TestShouldDeliverRespectsPostCap(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	throttler := NewThrottler(store, 3)
	ctx := context.Background()
	article := sampleArticle()
	id := domain.RecordID(article.Title, article.Link)

	_ = store.Put(ctx, domain.ArticleRecord{ID: id, Title: article.Title, Link: article.Link, TimesPosted: 2})

	ok, record, err := throttler.ShouldDeliver(ctx, article)
	if err != nil {
		t.Fatalf("ShouldDeliver returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected article below cap to be deliverable")
	}
	if record.TimesPosted != 2 {
		t.Fatalf("unexpected times_posted: %d", record.TimesPosted)
	}

	_ = store.Put(ctx, domain.ArticleRecord{ID: id, Title: article.Title, Link: article.Link, TimesPosted: 3})

	ok, _, err = throttler.ShouldDeliver(ctx, article)
	if err != nil {
		t.Fatalf("ShouldDeliver returned error: %v", err)
	}
	if ok {
		t.Fatal("expected article at cap to be suppressed")
	}
}

func TestRecordID(t *testing.T) {
	t.Parallel()

	if got := domain.RecordID("AI Update", "https://example.com/a"); got != "AI Update-https://example.com/a" {
		t.Fatalf("unexpected record id: %q", got)
	}
}
