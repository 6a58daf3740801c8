package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/videoplat/video-processing-service/internal/infra/config"
	"github.com/videoplat/video-processing-service/internal/infra/ffmpeg"
	"github.com/videoplat/video-processing-service/internal/infra/metrics"
	miniostorage "github.com/videoplat/video-processing-service/internal/infra/minio"
	"github.com/videoplat/video-processing-service/internal/infra/postgres"
	"github.com/videoplat/video-processing-service/internal/infra/rabbitmq"
	"github.com/videoplat/video-processing-service/internal/infra/tracing"
	"github.com/videoplat/video-processing-service/internal/usecase"
	"github.com/videoplat/video-processing-service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting video-processing worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint, "video-processing-worker")
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// Object store
	store, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		UseSSL:    cfg.MinIOUseSSL,
		ZipBucket: cfg.MinIOZipBucket,
		TempDir:   cfg.TempDir,
	}, ffmpeg.NewZipCreator())
	fatalOnErr(err, "create object store")
	fatalOnErr(store.EnsureBuckets(ctx), "ensure buckets")
	fatalOnErr(os.MkdirAll(cfg.TempDir, 0755), "create temp dir")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)
	notifier := rabbitmq.NewNotificationPublisher(pub, cfg.RabbitMQNotifyQueue)

	videos := postgres.NewVideoRepository(pool)
	jobs := postgres.NewJobRepository(pool)
	extractor := ffmpeg.NewExtractor(cfg.FFmpegPath, cfg.FFprobePath, log)

	worker := usecase.NewProcessWorker(
		videos, jobs, extractor, store,
		statusPub, dlqPub, notifier,
		log,
		usecase.ProcessWorkerConfig{TempDir: cfg.TempDir},
	)

	metricsSrv := metrics.StartServer(ctx, cfg.MetricsPort, log)

	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQProcessingQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		NotifyQueue: cfg.RabbitMQNotifyQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, worker.Execute, log)
	fatalOnErr(err, "create consumer")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("video-processing worker started, consuming messages")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("video-processing worker stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
