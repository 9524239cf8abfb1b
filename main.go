package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ixtiyorSaitov/e-commerce-admin/common/auth"
	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/common/logger"
	commonmw "github.com/ixtiyorSaitov/e-commerce-admin/common/middleware"
	"github.com/ixtiyorSaitov/e-commerce-admin/config"
	"github.com/ixtiyorSaitov/e-commerce-admin/controllers"
	"github.com/ixtiyorSaitov/e-commerce-admin/database"
	"github.com/ixtiyorSaitov/e-commerce-admin/middleware"
	awspkg "github.com/ixtiyorSaitov/e-commerce-admin/pkg/aws"
	"github.com/ixtiyorSaitov/e-commerce-admin/repository"
	"github.com/ixtiyorSaitov/e-commerce-admin/routes"
	"github.com/ixtiyorSaitov/e-commerce-admin/services"
)

const serviceName = "admin-service"

func main() {
	// --- 1. Configuration & logging ---
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	awsCfg, awsErr := awspkg.LoadAWSConfig(ctx, cfg.AWS)
	if cfg.UseSecrets && awsErr == nil {
		cfg.ApplySecrets(ctx, awspkg.NewSecretsClient(awsCfg))
	}

	log := buildLogger(ctx, cfg, awsCfg, awsErr)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if awsErr != nil {
		log.Warn("AWS config unavailable, AWS integrations disabled", zap.Error(awsErr))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	// --- 2. Stores ---
	mongoDB, err := database.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	if err := mongoDB.EnsureIndexes(ctx); err != nil {
		log.Warn("failed to ensure indexes", zap.Error(err))
	}

	var (
		categoryRepo repository.CategoryRepo = repository.NewCategoryRepository(mongoDB.DB)
		productRepo  repository.ProductRepo  = repository.NewProductRepository(mongoDB.DB)
	)
	if cfg.StoreBackend == config.StoreDynamoDB {
		if awsErr != nil {
			log.Fatal("STORE_BACKEND=dynamodb needs a working AWS config", zap.Error(awsErr))
		}
		ddb := dynamodb.NewFromConfig(awsCfg)
		categoryRepo = repository.NewDynamoCategoryRepository(ddb, cfg.DDBTableCategories)
		productRepo = repository.NewDynamoProductRepository(ddb, cfg.DDBTableProducts)
	}
	log.Info("catalog store selected", zap.String("backend", cfg.StoreBackend))

	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("Redis unavailable, product cache disabled", zap.Error(err))
		rdb = nil
	}

	// --- 3. AWS integrations ---
	var (
		sns     awspkg.SNSPublisher
		metrics *awspkg.MetricsClient
	)
	if awsErr == nil {
		sns = awspkg.NewSNSClient(awsCfg)
		metrics = awspkg.NewMetricsClient(awsCfg, "ECommerceAdmin", cfg.CloudWatchEnabled)
	}

	// --- 4. Services ---
	repairQueue := buildRepairQueue(ctx, cfg, awsCfg, awsErr, rdb, log)
	syncer := services.NewBackrefSyncer(categoryRepo, productRepo, repairQueue, log).WithMetrics(metrics)
	catalogEvents := services.NewEventPublisher(sns, cfg.SNSCatalogTopicArn, log)

	categoryService := services.NewCategoryService(categoryRepo, productRepo, catalogEvents, metrics, log)
	productService := services.NewProductService(productRepo, categoryRepo, syncer, catalogEvents, metrics, log)
	userService := services.NewUserService(repository.NewUserRepository(mongoDB.DB), log)
	adminService := services.NewAdminService(repository.NewAdminRepository(mongoDB.DB))
	notificationService := services.NewNotificationService(
		repository.NewNotificationRepository(mongoDB.DB),
		services.NewEventPublisher(sns, cfg.SNSNotificationTopicArn, log),
		log,
	)
	promocodeService := services.NewPromocodeService(repository.NewPromocodeRepository(mongoDB.DB), log)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	workersDone := make(chan struct{})
	if repairQueue != nil {
		worker := services.NewRepairWorker(repairQueue, syncer, log)
		go func() {
			defer close(workersDone)
			if err := worker.Run(workerCtx); err != nil {
				log.Error("repair worker exited", zap.Error(err))
			}
		}()
	} else {
		close(workersDone)
	}

	// --- 5. HTTP server & middleware ---
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := commonmw.NewRateLimiter(rate.Limit(20), 40, 10*time.Minute)
	go limiter.Sweep(workerCtx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(commonmw.RequestLogger(log))
	r.Use(commonmw.SecurityHeaders())
	r.Use(commonmw.CORS(cfg.AllowedOrigins))
	r.Use(commonmw.RateLimitMiddleware(limiter))
	r.Use(commonmw.Timeout(cfg.RequestTimeout))
	r.Use(commonmw.PrometheusMiddleware())
	if metrics.IsEnabled() {
		r.Use(commonmw.MetricsMiddleware(metrics, serviceName))
	}
	r.Use(apperrors.ErrorMiddleware())

	cache := controllers.NewCacheManager(rdb, cfg.CacheTTL)
	routes.RegisterRoutes(r, routes.Controllers{
		Category:     controllers.NewCategoryController(categoryService, cache),
		Product:      controllers.NewProductController(productService, cache),
		User:         controllers.NewUserController(userService),
		Notification: controllers.NewNotificationController(notificationService),
		Promocode:    controllers.NewPromocodeController(promocodeService),
	}, middleware.AdminAuth(auth.NewTokenParser(cfg.JWTSecret), adminService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("admin service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// --- 6. Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down admin service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	stopWorkers()
	select {
	case <-workersDone:
	case <-shutdownCtx.Done():
		log.Warn("repair worker did not stop in time")
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("failed to close Redis", zap.Error(err))
		}
	}
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("failed to close MongoDB", zap.Error(err))
	}
	log.Info("admin service stopped")
}

func buildLogger(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config, awsErr error) *zap.Logger {
	if cfg.CloudWatchEnabled && awsErr == nil {
		sink, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, "/ecommerce/"+serviceName, serviceName, true)
		if err == nil {
			if log, err := logger.NewWithWriter(cfg.AppEnv, sink); err == nil {
				return log
			}
		}
	}
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return log
}

// buildRepairQueue returns nil when the configured transport is unavailable;
// failed back-reference steps are then only logged.
func buildRepairQueue(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config, awsErr error, rdb *redis.Client, log *zap.Logger) services.RepairQueue {
	switch cfg.RepairQueue {
	case config.QueueSQS:
		if awsErr != nil {
			log.Error("repair queue disabled: AWS config unavailable", zap.Error(awsErr))
			return nil
		}
		url, err := awspkg.QueueURLFor(ctx, awsCfg, cfg.RepairQueueName)
		if err != nil {
			log.Error("repair queue disabled: SQS queue not found", zap.String("queue", cfg.RepairQueueName), zap.Error(err))
			return nil
		}
		return services.NewSQSRepairQueue(awspkg.NewSQSClient(awsCfg, url, log), log)
	default:
		if rdb == nil {
			log.Error("repair queue disabled: Redis unavailable")
			return nil
		}
		return services.NewRedisRepairQueue(rdb, services.RepairQueueKey, log)
	}
}
