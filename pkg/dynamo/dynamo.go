package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Attribute and index names of the ratings table.
const (
	AttrUserID    = "user_id"
	AttrRatingID  = "rating_id"
	AttrBookID    = "book_id"
	AttrRating    = "rating"
	AttrTimestamp = "timestamp"

	DefaultBookIndex = "BookRatingsIndex"
)

type Config struct {
	Table       string        `envconfig:"DYNAMODB_TABLE_RATINGS"`
	Region      string        `envconfig:"AWS_REGION" default:"us-west-2"`
	Endpoint    string        `envconfig:"DYNAMODB_ENDPOINT"`
	BookIndex   string        `envconfig:"DYNAMODB_BOOK_INDEX" default:"BookRatingsIndex"`
	Timeout     time.Duration `envconfig:"DYNAMODB_TIMEOUT" default:"5s"`
	CreateTable bool          `envconfig:"DYNAMODB_CREATE_TABLE"`
}

func (c Config) Enabled() bool {
	return c.Table != ""
}

// NewClient builds a DynamoDB client from the default AWS credential chain.
// A non-empty Endpoint points the client at a local DynamoDB.
func NewClient(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

type TableAPI interface {
	dynamodb.DescribeTableAPIClient
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

var _ TableAPI = (*dynamodb.Client)(nil)

// EnsureTable creates the ratings table with its book index unless it already exists.
func EnsureTable(ctx context.Context, client TableAPI, table, bookIndex string, log *zap.Logger) error {
	if bookIndex == "" {
		bookIndex = DefaultBookIndex
	}
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err == nil {
		log.Debug("table exists", zap.String("table", table))
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return errors.Wrapf(err, "describe table %s", table)
	}

	log.Info("creating table", zap.String("table", table), zap.String("index", bookIndex))
	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(AttrUserID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(AttrRatingID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(AttrBookID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(AttrTimestamp), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(AttrUserID), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(AttrRatingID), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(bookIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String(AttrBookID), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String(AttrTimestamp), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "create table %s", table)
	}

	waiter := dynamodb.NewTableExistsWaiter(client, func(o *dynamodb.TableExistsWaiterOptions) {
		o.MinDelay = time.Second
		o.MaxDelay = 5 * time.Second
	})
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, 2*time.Minute); err != nil {
		return errors.Wrapf(err, "wait for table %s", table)
	}
	return nil
}
