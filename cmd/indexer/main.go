package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"car-rag-platform/internal/ai"
	"car-rag-platform/internal/config"
	"car-rag-platform/internal/database"
	"car-rag-platform/internal/index"
	"car-rag-platform/internal/logger"
	"car-rag-platform/models"
)

const upsertBatchSize = 100

// Indexing job: reads chunk records from a JSON file or MongoDB, embeds them
// with the Gemini embeddings model and upserts them into Qdrant in batches.
func main() {
	input := flag.String("input", "", "JSON file of chunk records; defaults to MongoDB")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	ctx := context.Background()

	var chunks []models.Chunk
	if *input != "" {
		data, err := os.ReadFile(*input)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *input, err)
		}
		if err := json.Unmarshal(data, &chunks); err != nil {
			log.Fatalf("Failed to parse %s: %v", *input, err)
		}
	} else {
		mongoClient, err := config.ConnectMongoDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer mongoClient.Disconnect(ctx)

		store := database.NewListingStore(mongoClient, cfg.DBName)
		chunks, err = store.Chunks(ctx)
		if err != nil {
			log.Fatal("Failed to load chunks:", err)
		}
	}

	if len(chunks) == 0 {
		logger.Info("No chunks to index")
		return
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

	if err := qdrant.EnsureCollection(ctx, cfg.VectorDimensions); err != nil {
		log.Fatal("Failed to ensure Qdrant collection:", err)
	}

	logger.Info("Indexing chunks", "count", len(chunks), "collection", cfg.QdrantCollection)

	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			log.Fatalf("Failed to embed batch at %d: %v", start, err)
		}

		if err := qdrant.Upsert(ctx, batch, vectors); err != nil {
			log.Fatalf("Failed to upsert batch at %d: %v", start, err)
		}

		logger.Info("Upserted batch", "from", start, "to", end)
	}

	logger.Info("Indexing complete", "chunks", len(chunks))
}
