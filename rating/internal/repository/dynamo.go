package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Astemirdum/book-ratings/pkg/circuit_breaker"
	"github.com/Astemirdum/book-ratings/pkg/dynamo"
	"github.com/Astemirdum/book-ratings/rating/internal/errs"
	"github.com/Astemirdum/book-ratings/rating/internal/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DynamoAPI is the part of the DynamoDB client the store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	dynamodb.QueryAPIClient
}

var _ DynamoAPI = (*dynamodb.Client)(nil)

type ratingItem struct {
	UserID    string `dynamodbav:"user_id"`
	RatingID  string `dynamodbav:"rating_id"`
	BookID    string `dynamodbav:"book_id"`
	Rating    int    `dynamodbav:"rating"`
	Timestamp string `dynamodbav:"timestamp"`
}

func (it ratingItem) record() model.RatingRecord {
	return model.RatingRecord{
		UserID:    it.UserID,
		BookID:    it.BookID,
		Rating:    it.Rating,
		Timestamp: it.Timestamp,
	}
}

// DynamoStore keeps ratings in a DynamoDB table keyed by (user_id, rating_id)
// with a global secondary index on book_id. rating_id is
// "<book_id>#<timestamp>#<uuid>", so repeated ratings of a book by the same
// user are kept side by side and user items sort by book.
type DynamoStore struct {
	client    DynamoAPI
	table     string
	bookIndex string
	timeout   time.Duration
	breaker   circuit_breaker.CircuitBreaker
	now       func() time.Time
	newID     func() string
	log       *zap.Logger
}

type DynamoOption func(s *DynamoStore)

func WithBookIndex(name string) DynamoOption {
	return func(s *DynamoStore) {
		if name != "" {
			s.bookIndex = name
		}
	}
}

// WithTimeout bounds every backend call, on top of the caller's context.
func WithTimeout(d time.Duration) DynamoOption {
	return func(s *DynamoStore) { s.timeout = d }
}

func WithBreaker(cb circuit_breaker.CircuitBreaker) DynamoOption {
	return func(s *DynamoStore) { s.breaker = cb }
}

func WithDynamoClock(now func() time.Time) DynamoOption {
	return func(s *DynamoStore) { s.now = now }
}

func WithIDGenerator(newID func() string) DynamoOption {
	return func(s *DynamoStore) { s.newID = newID }
}

func NewDynamoStore(client DynamoAPI, table string, log *zap.Logger, opts ...DynamoOption) *DynamoStore {
	s := &DynamoStore{
		client:    client,
		table:     table,
		bookIndex: dynamo.DefaultBookIndex,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		log:       log.Named("dynamo"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func ratingID(bookID, timestamp, id string) string {
	return strings.Join([]string{bookID, timestamp, id}, "#")
}

func (s *DynamoStore) RateBook(ctx context.Context, bookID, userID string, rating int) (model.RatingRecord, error) {
	item := ratingItem{
		UserID:    userID,
		BookID:    bookID,
		Rating:    rating,
		Timestamp: model.FormatTimestamp(s.now()),
	}
	item.RatingID = ratingID(bookID, item.Timestamp, s.newID())

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return model.RatingRecord{}, &errs.StoreError{Op: "marshal rating", Err: err}
	}
	err = s.call(ctx, "put rating", func(ctx context.Context) error {
		_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(s.table),
			Item:                     av,
			ConditionExpression:      aws.String("attribute_not_exists(#rid)"),
			ExpressionAttributeNames: map[string]string{"#rid": dynamo.AttrRatingID},
		})
		return err
	})
	if err != nil {
		return model.RatingRecord{}, err
	}
	return item.record(), nil
}

// GetBookRatings reads the book index. Index updates are eventually
// consistent, a rating written a moment ago may be missing.
func (s *DynamoStore) GetBookRatings(ctx context.Context, bookID string) ([]model.RatingRecord, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(dynamo.AttrBookID).Equal(expression.Value(bookID))).
		Build()
	if err != nil {
		return nil, &errs.StoreError{Op: "build book query", Err: err}
	}
	return s.query(ctx, "query book ratings", &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		IndexName:                 aws.String(s.bookIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

func (s *DynamoStore) GetUserRatings(ctx context.Context, userID string) ([]model.RatingRecord, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(dynamo.AttrUserID).Equal(expression.Value(userID))).
		Build()
	if err != nil {
		return nil, &errs.StoreError{Op: "build user query", Err: err}
	}
	return s.query(ctx, "query user ratings", &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})
}

func (s *DynamoStore) query(ctx context.Context, op string, in *dynamodb.QueryInput) ([]model.RatingRecord, error) {
	var out []model.RatingRecord
	err := s.call(ctx, op, func(ctx context.Context) error {
		out = make([]model.RatingRecord, 0)
		p := dynamodb.NewQueryPaginator(s.client, in)
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return err
			}
			var items []ratingItem
			if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
				return errors.Wrap(err, "unmarshal ratings")
			}
			for _, it := range items {
				out = append(out, it.record())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DynamoStore) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	parent := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// a caller that went away says nothing about the backend, keep it
	// out of the breaker window
	var callerErr error
	run := func() error {
		err := fn(ctx)
		if err != nil && parent.Err() != nil {
			callerErr = err
			return nil
		}
		return err
	}

	var err error
	switch {
	case parent.Err() != nil:
		callerErr = parent.Err()
	case s.breaker != nil:
		err = s.breaker.Call(run)
	default:
		err = run()
	}
	if callerErr != nil {
		s.log.Debug(op+" abandoned", zap.String("table", s.table), zap.Error(callerErr))
		return &errs.StoreError{Op: op, Err: callerErr}
	}
	if err != nil {
		s.log.Error(op, zap.String("table", s.table), zap.Error(err))
		return &errs.StoreError{Op: op, Err: err}
	}
	return nil
}
