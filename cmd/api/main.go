package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/videoplat/video-processing-service/internal/infra/config"
	"github.com/videoplat/video-processing-service/internal/infra/ffmpeg"
	"github.com/videoplat/video-processing-service/internal/infra/httpapi"
	"github.com/videoplat/video-processing-service/internal/infra/identity"
	"github.com/videoplat/video-processing-service/internal/infra/localfs"
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

	log.Info("starting video-processing api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint, "video-processing-api")
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

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

	fatalOnErr(os.MkdirAll(cfg.UploadDir, 0755), "create upload dir")
	files := localfs.NewStore(cfg.UploadDir, "")

	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq")
	defer rmqConn.Close()

	// Declare the shared topology up front so enqueues before the first
	// worker boot do not vanish.
	declareCh, err := rmqConn.Channel()
	fatalOnErr(err, "open declare channel")
	fatalOnErr(rabbitmq.DeclareTopology(declareCh,
		cfg.RabbitMQExchange, cfg.RabbitMQProcessingQueue,
		cfg.RabbitMQStatusQueue, cfg.RabbitMQDLQ, cfg.RabbitMQNotifyQueue,
	), "declare topology")
	declareCh.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")
	taskQueue := rabbitmq.NewTaskPublisher(pub)

	videos := postgres.NewVideoRepository(pool)
	jobs := postgres.NewJobRepository(pool)
	extractor := ffmpeg.NewExtractor(cfg.FFmpegPath, cfg.FFprobePath, log)
	idClient := identity.NewClient(cfg.AuthServiceURL, log)

	uploadUC := usecase.NewUploadVideoUseCase(videos, files, extractor, log, usecase.UploadVideoConfig{
		MaxSizeBytes: cfg.MaxUploadBytes,
	})
	processUC := usecase.NewProcessVideoUseCase(videos, jobs, taskQueue, files, log)
	statusUC := usecase.NewVideoStatusUseCase(videos, store, log)

	handler := httpapi.NewVideoHandler(uploadUC, processUC, statusUC, idClient, log)
	router := httpapi.NewRouter(handler, []byte(cfg.JWTSecret))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server starting", zap.Int("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", zap.Error(err))
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}

	log.Info("video-processing api stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
