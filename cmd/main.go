package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"document-qa-platform/internal/ai"
	"document-qa-platform/internal/config"
	"document-qa-platform/internal/logger"
	"document-qa-platform/internal/telemetry"
	"document-qa-platform/internal/vectorindex"
	"document-qa-platform/middleware"
	"document-qa-platform/routes"
	"document-qa-platform/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("document-qa-platform", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("Tracing disabled", "error", err)
		} else {
			defer shutdown()
		}
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err)
		metrics = nil
	}

	// Vector index: init on startup, flush on shutdown.
	if err := os.MkdirAll(filepath.Dir(cfg.IndexPath), 0o755); err != nil {
		log.Fatal("Failed to create index directory:", err)
	}
	index := vectorindex.Open(cfg.IndexPath, cfg.VectorDim)
	defer func() {
		if err := index.Flush(); err != nil {
			logger.Error("Failed to flush vector index", "error", err)
		}
	}()

	ctx := context.Background()

	embedder, err := ai.NewEmbeddingClient(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedding client:", err)
	}
	defer embedder.Close()

	generator, err := ai.NewAnswerGenerator(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize answer generator:", err)
	}
	defer generator.Close()

	// Persistence is a sink, never a prerequisite: a missing MongoDB
	// degrades to the no-op store instead of blocking answering.
	var store services.AnswerStore = services.NoopStore{}
	if cfg.PersistenceEnabled {
		mongoClient, err := config.ConnectMongoDB(cfg)
		if err != nil {
			logger.Warn("Persistence disabled", "error", err)
		} else {
			store = services.NewMongoStore(mongoClient, cfg.DBName)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				mongoClient.Disconnect(ctx)
			}()
		}
	}

	chunker, err := services.NewTextChunker(cfg.MaxChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatal("Invalid chunking configuration:", err)
	}

	pipeline := services.NewPipeline(
		chunker,
		services.NewIngestionService(cfg),
		embedder,
		generator,
		index,
		store,
		services.NewWeightedScorer(),
		cfg.RetrievalTopK,
	).WithMetrics(metrics)

	// Redis backs rate limiting and the background-indexing queue; both
	// degrade gracefully when it is unreachable.
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, rate limiting and background indexing disabled", "error", err)
		rdb = nil
	}

	var queueClient *asynq.Client
	if rdb != nil {
		queueClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer queueClient.Close()
	}

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("document-qa-platform"))
	router.Use(middleware.RequestIDMiddleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	if rdb != nil {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Document question-answering service is running",
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	routes.SetupQARoutes(router, cfg, pipeline, index, queueClient)

	cleanup := services.NewCleanupService(cfg)
	if err := cleanup.Start(); err != nil {
		logger.Warn("Cleanup scheduler failed to start", "error", err)
	} else {
		defer cleanup.Stop()
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
