package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"document-qa-platform/internal/ai"
	"document-qa-platform/internal/config"
	"document-qa-platform/internal/logger"
	"document-qa-platform/internal/queue"
	"document-qa-platform/internal/vectorindex"
	"document-qa-platform/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.IndexPath), 0o755); err != nil {
		log.Fatal("Failed to create index directory:", err)
	}
	index := vectorindex.Open(cfg.IndexPath, cfg.VectorDim)

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

	var store services.AnswerStore = services.NoopStore{}
	if cfg.PersistenceEnabled {
		mongoClient, err := config.ConnectMongoDB(cfg)
		if err != nil {
			logger.Warn("Persistence disabled", "error", err)
		} else {
			store = services.NewMongoStore(mongoClient, cfg.DBName)
			defer mongoClient.Disconnect(context.Background())
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
	)

	// Redis options for Asynq
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Create Asynq server
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 20, // Process 20 tasks concurrently
			Queues: map[string]int{
				"critical": 6, // 60% of workers
				"default":  3, // 30% of workers
				"low":      1, // 10% of workers
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(pipeline)

	// Create mux and register handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIndexDocument, processor.IndexDocument)

	logger.Info("Starting indexing worker", "redis", redisOpt.Addr, "concurrency", 20)

	// Start the server
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
