package app

import (
	"context"
	"io"
	"time"

	"github.com/Astemirdum/book-ratings/pkg/dynamo"
	"github.com/Astemirdum/book-ratings/rating/internal/loader"
	"github.com/Astemirdum/book-ratings/rating/internal/repository"
	"go.uber.org/zap"
)

type LoadOptions struct {
	Dynamo      dynamo.Config
	CreateTable bool
	Limit       int
	Workers     int
	UserPrefix  string
}

// Load imports an Open Library ratings dump from in into DynamoDB.
func Load(ctx context.Context, opts LoadOptions, in io.Reader, log *zap.Logger) error {
	client, err := dynamo.NewClient(ctx, opts.Dynamo)
	if err != nil {
		return err
	}
	if opts.CreateTable {
		if err := dynamo.EnsureTable(ctx, client, opts.Dynamo.Table, opts.Dynamo.BookIndex, log); err != nil {
			return err
		}
	}
	store := repository.NewDynamoStore(client, opts.Dynamo.Table, log,
		repository.WithBookIndex(opts.Dynamo.BookIndex))

	return load(ctx, store, opts, in, log)
}

func load(ctx context.Context, store repository.RatingStore, opts LoadOptions, in io.Reader, log *zap.Logger) error {
	start := time.Now()
	stats, err := loader.New(store, log, opts.Workers, opts.UserPrefix).Load(ctx, in, opts.Limit)
	log.Info("load finished",
		zap.Int("scanned", stats.Scanned),
		zap.Int("written", stats.Written),
		zap.Int("skipped", stats.Skipped),
		zap.Duration("took", time.Since(start)),
	)
	return err
}
