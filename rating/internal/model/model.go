package model

import "time"

// TimestampLayout is ISO-8601 with millisecond precision, "Z" for UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// RatingRecord is one immutable rating event.
type RatingRecord struct {
	UserID    string `json:"user_id"`
	BookID    string `json:"book_id"`
	Rating    int    `json:"rating"`
	Timestamp string `json:"timestamp"`
}

type RateBook struct {
	UserID string `json:"user_id" validate:"required"`
	Rating *int   `json:"rating" validate:"required,min=1,max=5"`
}

type RatingMsg struct {
	BookID string `json:"book_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
}

type RatingEvent struct {
	EventID string `json:"event_id"`
	RatingRecord
}

type Message struct {
	Message string `json:"message"`
}
