package handler

import (
	"context"
	"encoding/json"

	"github.com/Astemirdum/book-ratings/pkg/validate"
	"github.com/Astemirdum/book-ratings/rating/internal/model"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type rateBook func(ctx context.Context, bookID, userID string, rating int) (model.RatingRecord, error)

// Consumer records RatingMsg messages from the ingest topic.
type Consumer struct {
	rateBook  rateBook
	validator *validate.CustomValidator
	log       *zap.Logger
}

func NewConsumer(rateBook rateBook, log *zap.Logger) *Consumer {
	return &Consumer{
		rateBook:  rateBook,
		validator: validate.NewCustomValidator(),
		log:       log.Named("consumer"),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var msg model.RatingMsg
			if err := json.Unmarshal(message.Value, &msg); err != nil {
				consumer.log.Error("decode rating message", zap.Error(err), zap.Int64("offset", message.Offset))
				session.MarkMessage(message, "")
				continue
			}
			if err := consumer.validator.Validate(&msg); err != nil {
				consumer.log.Warn("invalid rating message", zap.Error(err), zap.Int64("offset", message.Offset))
				session.MarkMessage(message, "")
				continue
			}

			// left unmarked so the message is redelivered after a rebalance
			if _, err := consumer.rateBook(session.Context(), msg.BookID, msg.UserID, msg.Rating); err != nil {
				consumer.log.Error("consumer.rateBook", zap.Error(err), zap.String("book_id", msg.BookID))
				continue
			}

			consumer.log.Debug("Message claimed:", zap.String("value", string(message.Value)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
