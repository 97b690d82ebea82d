package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Astemirdum/book-ratings/pkg/dynamo"
	"github.com/Astemirdum/book-ratings/pkg/logger"
	"github.com/Astemirdum/book-ratings/rating/app"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

type loadFlags struct {
	file        string
	table       string
	region      string
	endpoint    string
	bookIndex   string
	limit       int
	workers     int
	createTable bool
	userPrefix  string
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f loadFlags
	cmd := &cobra.Command{
		Use:   "rating-loader",
		Short: "Load an Open Library ratings dump into DynamoDB",
		Long: `Reads a tab separated Open Library ratings dump and writes every valid
line as a rating with a synthetic user id. Lines that are not works or carry
a rating outside 1..5 are skipped.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runLoad(ctx, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "path to the ratings dump")
	fl.StringVar(&f.table, "table", os.Getenv("DYNAMODB_TABLE_RATINGS"), "DynamoDB table")
	fl.StringVar(&f.region, "region", envOr("AWS_REGION", "us-west-2"), "AWS region")
	fl.StringVar(&f.endpoint, "endpoint", os.Getenv("DYNAMODB_ENDPOINT"), "DynamoDB endpoint override")
	fl.StringVar(&f.bookIndex, "book-index", dynamo.DefaultBookIndex, "secondary index keyed by book id")
	fl.IntVar(&f.limit, "limit", 1000, "maximum number of ratings to write, 0 for all")
	fl.IntVar(&f.workers, "workers", 8, "concurrent writes")
	fl.BoolVar(&f.createTable, "create-table", false, "create the table when it is missing")
	fl.StringVar(&f.userPrefix, "user-prefix", "ol_user", "prefix of synthetic user ids")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log skipped lines")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runLoad(ctx context.Context, f loadFlags) error {
	if f.table == "" {
		return errors.New("--table or DYNAMODB_TABLE_RATINGS is required")
	}
	lvl := zapcore.InfoLevel
	if f.verbose {
		lvl = zapcore.DebugLevel
	}
	log := logger.NewLogger(logger.Log{LogLevel: lvl}, "rating-loader")
	defer log.Sync() //nolint:errcheck

	in, err := os.Open(f.file)
	if err != nil {
		return errors.Wrap(err, "open dump")
	}
	defer in.Close()

	return app.Load(ctx, app.LoadOptions{
		Dynamo: dynamo.Config{
			Table:     f.table,
			Region:    f.region,
			Endpoint:  f.endpoint,
			BookIndex: f.bookIndex,
		},
		CreateTable: f.createTable,
		Limit:       f.limit,
		Workers:     f.workers,
		UserPrefix:  f.userPrefix,
	}, in, log)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
