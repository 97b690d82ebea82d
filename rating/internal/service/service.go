package service

import (
	"context"

	"github.com/Astemirdum/book-ratings/pkg/kafka"
	"github.com/Astemirdum/book-ratings/rating/internal/model"
	ratingRepo "github.com/Astemirdum/book-ratings/rating/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	store ratingRepo.RatingStore
	queue kafka.Enqueuer
	topic string
}

type Option func(s *Service)

// WithEvents publishes a RatingEvent to topic after every stored rating.
func WithEvents(queue kafka.Enqueuer, topic string) Option {
	return func(s *Service) {
		s.queue = queue
		s.topic = topic
	}
}

func NewService(store ratingRepo.RatingStore, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:   log.Named("service"),
		store: store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) RateBook(ctx context.Context, bookID, userID string, rating int) (model.RatingRecord, error) {
	rec, err := s.store.RateBook(ctx, bookID, userID, rating)
	if err != nil {
		return model.RatingRecord{}, err
	}
	if s.queue != nil {
		event := model.RatingEvent{EventID: uuid.NewString(), RatingRecord: rec}
		if err := s.queue.Enqueue(s.topic, rec.BookID, event); err != nil {
			// the rating is stored, a lost event is not a failed request
			s.log.Warn("publish rating event", zap.String("book_id", rec.BookID), zap.Error(err))
		}
	}
	return rec, nil
}

func (s *Service) GetBookRatings(ctx context.Context, bookID string) ([]model.RatingRecord, error) {
	return s.store.GetBookRatings(ctx, bookID)
}

func (s *Service) GetUserRatings(ctx context.Context, userID string) ([]model.RatingRecord, error) {
	return s.store.GetUserRatings(ctx, userID)
}
