package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/repository/opensearch"
	"github.com/kingrain94/token-quota-api/internal/service/queue"
	"github.com/kingrain94/token-quota-api/internal/worker"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	appLogger := logger.NewLogger(os.Getenv("APP_ENV")).Named("index_worker")

	osConfig := config.DefaultOpenSearchConfig()
	osClient, err := osConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to OpenSearch", err)
	}
	osRepo := opensearch.NewRepository(osClient, osConfig)

	appLogger.Info("OpenSearch connection established for index worker")

	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient(context.Background())
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	workerConfig := config.DefaultWorkerConfig()
	sqsWorker := worker.NewSQSWorker(
		"index",
		sqsService,
		sqsService.IndexQueueURL(),
		worker.NewIndexHandler(osRepo),
		appLogger,
		workerConfig.Count,
		workerConfig.PollInterval,
	)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqsWorker.Run(runCtx)
	appLogger.Sync()
}
