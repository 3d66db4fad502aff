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
	"github.com/kingrain94/token-quota-api/internal/lock"
	"github.com/kingrain94/token-quota-api/internal/repository/composite"
	"github.com/kingrain94/token-quota-api/internal/service"
	"github.com/kingrain94/token-quota-api/internal/service/queue"
	"github.com/kingrain94/token-quota-api/internal/worker"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	appLogger := logger.NewLogger(os.Getenv("APP_ENV")).Named("reset_worker")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		appLogger.Fatal("Failed to load config", err)
	}

	dbConnections, err := config.NewDatabaseConnections()
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer dbConnections.Close()

	redisClient, err := config.DefaultRedisConfig().GetClient(ctx)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient(ctx)
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	resetService := service.NewResetService(composite.NewPostgresOnlyRepository(dbConnections), clock.SystemClock{}, appLogger)
	resetService.SetLocker(lock.NewLocker(redisClient), cfg.SweepLockTTL)

	workerConfig := config.DefaultWorkerConfig()
	sqsWorker := worker.NewSQSWorker(
		"reset",
		sqsService,
		sqsService.ResetQueueURL(),
		worker.NewResetHandler(resetService, appLogger),
		appLogger,
		workerConfig.Count,
		workerConfig.PollInterval,
	)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqsWorker.Run(runCtx)
	appLogger.Sync()
}
