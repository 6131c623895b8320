package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance_tracker/internal/cache"
	"finance_tracker/internal/config"
	"finance_tracker/internal/handler"
	"finance_tracker/internal/logger"
	"finance_tracker/internal/middleware"
	"finance_tracker/internal/queue"
	"finance_tracker/internal/repository"
	"finance_tracker/internal/service"
	"finance_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// storage bundles the repositories of the active driver.
type storage struct {
	users    repository.UserRepository
	cards    repository.CardRepository
	spending repository.SpendingRepository
	requests repository.AdvisorRequestRepository
	ping     func(ctx context.Context) error
	close    func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.StorageDriver == config.DriverPostgres {
		pool, err := config.ConnectDB(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := config.AutoMigrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			users:    repository.NewUserRepository(pool),
			cards:    repository.NewCardRepository(pool),
			spending: repository.NewSpendingRepository(pool),
			requests: repository.NewAdvisorRequestRepository(pool),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil
	}

	client, err := config.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Mongo.Database)
	if err := config.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &storage{
		users:    repository.NewMongoUserRepository(db),
		cards:    repository.NewMongoCardRepository(db),
		spending: repository.NewMongoSpendingRepository(db),
		requests: repository.NewMongoAdvisorRequestRepository(db),
		ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		},
	}, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Development(), logger.LogLevel(cfg.LogLevel)); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	lg := logger.Get()
	for _, w := range cfg.Warnings {
		lg.Warn(w)
	}

	// --- Storage ---
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := openStorage(startCtx, cfg)
	cancelStart()
	if err != nil {
		lg.Fatal("Failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer store.close()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		lg.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
	} else {
		lg.Info("Redis not available, using in-process caches")
	}

	publisher := queue.NewPublisher(cfg.RabbitMQURL)
	defer publisher.Close()

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpirationHours)
	envelope, err := utils.NewEnvelope(cfg.CardEncryptionKey)
	if err != nil {
		lg.Fatal("Failed to initialize card envelope", zap.Error(err))
	}
	reportCache := cache.NewReportCache(rdb, cfg.ReportCacheTTL)
	revealLimiter := cache.NewAttemptLimiter(rdb, cfg.RevealMaxAttempts, cfg.RevealWindow)

	// --- Initialize Services ---
	authService := service.NewAuthService(store.users, jwtUtil, cfg.InitialAdminEmail)
	cardService := service.NewCardService(store.cards, store.users, envelope, revealLimiter)
	spendingService := service.NewSpendingService(store.spending, reportCache)
	advisorService := service.NewAdvisorService(store.users, store.requests, publisher)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	cardHandler := handler.NewCardHandler(cardService)
	spendingHandler := handler.NewSpendingHandler(spendingService)
	advisorHandler := handler.NewAdvisorHandler(advisorService)

	// --- Setup Gin Router ---
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup)
	cardHandler.RegisterCardRoutes(apiGroup, jwtAuthMW)
	spendingHandler.RegisterSpendingRoutes(apiGroup, jwtAuthMW)
	advisorHandler.RegisterAdvisorRoutes(apiGroup, jwtAuthMW)

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := store.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy", "driver": cfg.StorageDriver})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("Server starting", zap.String("port", cfg.ServerPort), zap.String("driver", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("Server forced to shutdown", zap.Error(err))
	}

	lg.Info("Server exiting")
}
