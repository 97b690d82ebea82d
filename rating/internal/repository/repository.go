package repository

import (
	"context"

	"github.com/Astemirdum/book-ratings/rating/internal/model"
)

// RatingStore persists rating events. Input is validated before it gets here;
// unknown book or user ids give an empty result, not an error.
type RatingStore interface {
	RateBook(ctx context.Context, bookID, userID string, rating int) (model.RatingRecord, error)
	GetBookRatings(ctx context.Context, bookID string) ([]model.RatingRecord, error)
	GetUserRatings(ctx context.Context, userID string) ([]model.RatingRecord, error)
}

var (
	_ RatingStore = (*MemoryStore)(nil)
	_ RatingStore = (*DynamoStore)(nil)
)
