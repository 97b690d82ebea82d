package handler

import (
	"context"

	ratingModel "github.com/Astemirdum/book-ratings/rating/internal/model"

	"github.com/Astemirdum/book-ratings/rating/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type RatingService interface {
	RateBook(ctx context.Context, bookID, userID string, rating int) (ratingModel.RatingRecord, error)
	GetBookRatings(ctx context.Context, bookID string) ([]ratingModel.RatingRecord, error)
	GetUserRatings(ctx context.Context, userID string) ([]ratingModel.RatingRecord, error)
}

var _ RatingService = (*service.Service)(nil)
