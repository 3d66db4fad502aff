package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kingrain94/token-quota-api/docs"
	"github.com/kingrain94/token-quota-api/internal/api"
	"github.com/kingrain94/token-quota-api/internal/clock"
	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/lock"
	"github.com/kingrain94/token-quota-api/internal/metrics"
	"github.com/kingrain94/token-quota-api/internal/middleware"
	"github.com/kingrain94/token-quota-api/internal/migrations"
	"github.com/kingrain94/token-quota-api/internal/repository/composite"
	"github.com/kingrain94/token-quota-api/internal/service"
	"github.com/kingrain94/token-quota-api/internal/service/pubsub"
	"github.com/kingrain94/token-quota-api/internal/service/queue"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

// @title           Token Quota API
// @version         1.0
// @description     Multi-tenant token usage metering and daily quota enforcement.

// @host      localhost:10000
// @BasePath  /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))
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

	appLogger.Info("Database connections established - writer and reader connected")

	if cfg.AutoMigrate {
		sqlDB, err := dbConnections.Writer.DB()
		if err != nil {
			appLogger.Fatal("Failed to get writer connection", err)
		}
		if err := migrations.Up(sqlDB); err != nil {
			appLogger.Fatal("Failed to run migrations", err)
		}
		appLogger.Info("Database migrations applied")
	}

	osConfig := config.DefaultOpenSearchConfig()
	osClient, err := osConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to OpenSearch", err)
	}

	redisClient, err := config.DefaultRedisConfig().GetClient(ctx)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	redisPubSub := pubsub.NewRedisPubSub(redisClient, appLogger)

	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient(ctx)
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	repo := composite.NewCompositeRepository(dbConnections, osClient, osConfig)
	clk := clock.SystemClock{}

	meteringService := service.NewMeteringService(repo, sqsService, clk, appLogger)
	planService := service.NewPlanService(repo, appLogger)
	organizationService := service.NewOrganizationService(repo, cfg.Tenancy, clk, appLogger)
	resetService := service.NewResetService(repo, clk, appLogger)
	resetService.SetLocker(lock.NewLocker(redisClient), cfg.SweepLockTTL)

	authMiddleware := middleware.NewAuthMiddleware(cfg)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(redisClient, cfg, appLogger)
	validationMiddleware := middleware.NewValidationMiddleware(appLogger)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	websocketHandler := api.NewWebSocketHandler(appLogger, redisPubSub)
	meteringService.SetUsageBroadcaster(websocketHandler)

	server := api.NewServer(
		meteringService,
		planService,
		organizationService,
		resetService,
		websocketHandler,
		authMiddleware,
		rateLimitMiddleware,
		validationMiddleware,
	)
	server.StartWebSocketHub()

	router := gin.Default()
	router.Use(metrics.Middleware())

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.ServerPort)
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := dbConnections.Ping(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metricsAuth.Handler(), gin.WrapH(promhttp.Handler()))

	server.SetupRoutes(router.Group("/api/v1"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", err)
		}
	}()
	appLogger.Infof("Server listening on :%d", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}
	server.StopWebSocketHub()

	appLogger.Info("Server exiting")
	appLogger.Sync()
}
