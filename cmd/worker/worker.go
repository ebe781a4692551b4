package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"car-rag-platform/internal/ai"
	"car-rag-platform/internal/config"
	"car-rag-platform/internal/database"
	"car-rag-platform/internal/index"
	"car-rag-platform/internal/logger"
	"car-rag-platform/internal/queue"
	"car-rag-platform/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(context.Background())

	store := database.NewListingStore(mongoClient, cfg.DBName)

	chunker, err := services.NewChunkerService(cfg.MaxChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatal("Invalid chunking config:", err)
	}

	embedder, err := ai.NewEmbeddingClient(cfg.GeminiAPIKey, cfg.EmbeddingsModel)
	if err != nil {
		log.Fatal("Failed to create embedding client:", err)
	}
	defer embedder.Close()

	qdrant := index.NewQdrant(index.QdrantConfig{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.QdrantCollection,
	}, embedder)

	if err := qdrant.EnsureCollection(context.Background(), cfg.VectorDimensions); err != nil {
		log.Fatal("Failed to ensure Qdrant collection:", err)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(store, chunker, embedder, qdrant)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIndexListing, processor.IndexListing)

	logger.Info("Starting indexing worker", "redis", redisOpt.Addr, "concurrency", 10)
	if err := server.Run(mux); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
