package app

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/book-ratings/pkg/circuit_breaker"
	"github.com/Astemirdum/book-ratings/pkg/dynamo"
	"github.com/Astemirdum/book-ratings/pkg/kafka"
	"github.com/Astemirdum/book-ratings/pkg/logger"
	"github.com/Astemirdum/book-ratings/rating/config"
	"github.com/Astemirdum/book-ratings/rating/internal/handler"
	"github.com/Astemirdum/book-ratings/rating/internal/repository"
	"github.com/Astemirdum/book-ratings/rating/internal/server"
	"github.com/Astemirdum/book-ratings/rating/internal/service"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	newProducer      = kafka.NewProducer
	newConsumerGroup = kafka.NewConsumer
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "rating")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Fatal("rating service", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
	_ = log.Sync()
}

// run returns only after every resource it opened is closed.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return errors.Wrap(err, "store init")
	}

	var svcOpts []service.Option
	if cfg.Kafka.Enabled() {
		producer, err := newProducer(cfg.Kafka)
		if err != nil {
			return errors.Wrap(err, "kafka.NewProducer")
		}
		defer func() {
			if err := producer.Close(); err != nil {
				log.Warn("close kafka producer", zap.Error(err))
			}
		}()
		svcOpts = append(svcOpts, service.WithEvents(kafka.NewEnqueuer(producer), cfg.Kafka.EventsTopic))
	}
	svc := service.NewService(store, log, svcOpts...)

	var group sarama.ConsumerGroup
	if cfg.Kafka.IngestTopic != "" {
		group, err = newConsumerGroup(cfg.Kafka)
		if err != nil {
			return errors.Wrap(err, "kafka.NewConsumer")
		}
		defer func() {
			if err := group.Close(); err != nil {
				log.Warn("close kafka consumer group", zap.Error(err))
			}
		}()
	}

	h := handler.New(svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server start ON: ",
			zap.String("addr",
				net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server run")
		}
		return nil
	})

	if group != nil {
		g.Go(func() error {
			kafka.Consume(gctx, group, handler.NewConsumer(svc.RateBook, log), log, cfg.Kafka.IngestTopic)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Debug("Graceful shutdown")

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	return g.Wait()
}

// newStore picks DynamoDB when a table is configured, memory otherwise.
func newStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.RatingStore, error) {
	if !cfg.Dynamo.Enabled() {
		log.Info("using in-memory store (no DYNAMODB_TABLE_RATINGS)")
		return repository.NewMemoryStore(), nil
	}

	client, err := dynamo.NewClient(ctx, cfg.Dynamo)
	if err != nil {
		return nil, err
	}
	if cfg.Dynamo.CreateTable {
		if err := dynamo.EnsureTable(ctx, client, cfg.Dynamo.Table, cfg.Dynamo.BookIndex, log); err != nil {
			return nil, err
		}
	}

	opts := []repository.DynamoOption{
		repository.WithBookIndex(cfg.Dynamo.BookIndex),
		repository.WithTimeout(cfg.Dynamo.Timeout),
	}
	if cfg.Breaker.Enabled() {
		opts = append(opts, repository.WithBreaker(circuit_breaker.New(
			cfg.Breaker.RecordLength,
			cfg.Breaker.Timeout,
			cfg.Breaker.Percentile,
			cfg.Breaker.RecoveryRequests,
		)))
	}
	log.Info("using DynamoDB store",
		zap.String("table", cfg.Dynamo.Table),
		zap.String("region", cfg.Dynamo.Region),
		zap.Bool("breaker", cfg.Breaker.Enabled()))
	return repository.NewDynamoStore(client, cfg.Dynamo.Table, log, opts...), nil
}
