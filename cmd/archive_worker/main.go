package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kingrain94/token-quota-api/internal/clock"
	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/repository/postgres"
	"github.com/kingrain94/token-quota-api/internal/service/queue"
	"github.com/kingrain94/token-quota-api/internal/worker"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	appLogger := logger.NewLogger(os.Getenv("APP_ENV")).Named("archive_worker")
	ctx := context.Background()

	dbConnections, err := config.NewDatabaseConnections()
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer dbConnections.Close()

	appLogger.Info("Database connections established for archive worker")

	s3Config := config.DefaultS3Config()
	s3Client, err := s3Config.GetClient(ctx)
	if err != nil {
		appLogger.Fatal("Failed to create S3 client", err)
	}

	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient(ctx)
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	handler := worker.NewArchiveHandler(
		postgres.NewUsageEventRepository(dbConnections.Reader),
		s3Client,
		s3Config,
		clock.SystemClock{},
		appLogger,
	)

	workerConfig := config.DefaultWorkerConfig()
	archiveWorker := worker.NewSQSWorker(
		"archive",
		sqsService,
		sqsService.ArchiveQueueURL(),
		handler,
		appLogger,
		workerConfig.Count,
		workerConfig.PollInterval,
	)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archiveWorker.Run(runCtx)
	appLogger.Sync()
}
