package dynamo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Astemirdum/book-ratings/pkg/dynamo"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTables struct {
	exists      bool
	describeErr error
	created     *dynamodb.CreateTableInput
}

func (f *fakeTables) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	if !f.exists {
		return nil, &types.ResourceNotFoundException{Message: aws.String("no table")}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func (f *fakeTables) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.created = in
	f.exists = true
	return &dynamodb.CreateTableOutput{}, nil
}

func TestEnsureTable_Exists(t *testing.T) {
	f := &fakeTables{exists: true}
	require.NoError(t, dynamo.EnsureTable(context.Background(), f, "ratings", "", zap.NewNop()))
	require.Nil(t, f.created)
}

func TestEnsureTable_Creates(t *testing.T) {
	f := &fakeTables{}
	require.NoError(t, dynamo.EnsureTable(context.Background(), f, "ratings", "", zap.NewNop()))
	require.NotNil(t, f.created)

	require.Equal(t, "ratings", aws.ToString(f.created.TableName))
	require.Equal(t, types.BillingModePayPerRequest, f.created.BillingMode)
	require.Equal(t, dynamo.AttrUserID, aws.ToString(f.created.KeySchema[0].AttributeName))
	require.Equal(t, dynamo.AttrRatingID, aws.ToString(f.created.KeySchema[1].AttributeName))
	require.Len(t, f.created.GlobalSecondaryIndexes, 1)

	idx := f.created.GlobalSecondaryIndexes[0]
	require.Equal(t, dynamo.DefaultBookIndex, aws.ToString(idx.IndexName))
	require.Equal(t, dynamo.AttrBookID, aws.ToString(idx.KeySchema[0].AttributeName))
	require.Equal(t, types.KeyTypeHash, idx.KeySchema[0].KeyType)
}

func TestEnsureTable_DescribeError(t *testing.T) {
	errDenied := errors.New("access denied")
	f := &fakeTables{describeErr: errDenied}
	err := dynamo.EnsureTable(context.Background(), f, "ratings", "", zap.NewNop())
	require.ErrorIs(t, err, errDenied)
	require.Nil(t, f.created)
}

func TestConfig_Enabled(t *testing.T) {
	require.False(t, dynamo.Config{}.Enabled())
	require.True(t, dynamo.Config{Table: "ratings"}.Enabled())
}
