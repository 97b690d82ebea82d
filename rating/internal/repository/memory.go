package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Astemirdum/book-ratings/rating/internal/model"
)

// MemoryStore keeps ratings in process memory, grouped by book.
// Nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	books map[string][]model.RatingRecord
	// book ids in first-rated order, keeps user scans stable
	order []string
	now   func() time.Time
}

type MemoryOption func(s *MemoryStore)

func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		books: make(map[string][]model.RatingRecord),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) RateBook(_ context.Context, bookID, userID string, rating int) (model.RatingRecord, error) {
	rec := model.RatingRecord{
		UserID:    userID,
		BookID:    bookID,
		Rating:    rating,
		Timestamp: model.FormatTimestamp(s.now()),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ratings, ok := s.books[bookID]
	if !ok {
		s.order = append(s.order, bookID)
	}
	s.books[bookID] = append(ratings, rec)
	return rec, nil
}

func (s *MemoryStore) GetBookRatings(_ context.Context, bookID string) ([]model.RatingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ratings := s.books[bookID]
	out := make([]model.RatingRecord, len(ratings))
	copy(out, ratings)
	return out, nil
}

func (s *MemoryStore) GetUserRatings(_ context.Context, userID string) ([]model.RatingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.RatingRecord, 0)
	for _, bookID := range s.order {
		for _, rec := range s.books[bookID] {
			if rec.UserID == userID {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}
