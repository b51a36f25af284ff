package usecase

import (
	"context"
	"sync"

	"newsradar/internal/domain"
	"newsradar/internal/ports"
)

// memStore is an in-memory ArticleStore for pipeline tests.
type memStore struct {
	mu      sync.Mutex
	records map[string]domain.ArticleRecord
}

var _ ports.ArticleStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{records: map[string]domain.ArticleRecord{}}
}

func (s *memStore) Get(_ context.Context, id string) (domain.ArticleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return domain.ArticleRecord{}, domain.ErrRecordNotFound
	}
	return record, nil
}

func (s *memStore) Put(_ context.Context, record domain.ArticleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = record
	return nil
}

func (s *memStore) Query(_ context.Context, minScore int) ([]domain.ArticleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []domain.ArticleRecord
	for _, record := range s.records {
		if record.RelevanceScore >= minScore {
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

// fakeScorer returns a fixed relevance or error for every text.
type fakeScorer struct {
	relevance domain.Relevance
	err       error
}

func (f *fakeScorer) Score(context.Context, string) (domain.Relevance, error) {
	if f.err != nil {
		return domain.Relevance{}, f.err
	}
	return f.relevance, nil
}

// fakeNotifier records everything published.
type fakeNotifier struct {
	mu        sync.Mutex
	delivered []domain.Article
	noNews    bool
}

func (f *fakeNotifier) PublishArticle(_ context.Context, article domain.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.delivered = append(f.delivered, article)
	return nil
}

func (f *fakeNotifier) PublishNoNews(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.noNews = true
	return nil
}
