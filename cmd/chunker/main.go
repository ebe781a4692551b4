package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"sort"
	"sync"

	"car-rag-platform/internal/config"
	"car-rag-platform/internal/database"
	"car-rag-platform/internal/logger"
	"car-rag-platform/models"
	"car-rag-platform/services"
)

// Batch chunking job: reads listings from MongoDB or a JSON file, chunks them
// in parallel and writes the chunk records as JSON for downstream indexing.
func main() {
	var (
		input   = flag.String("input", "", "JSON file of listings; defaults to MongoDB")
		output  = flag.String("output", "chunks.json", "output file for chunk records")
		workers = flag.Int("workers", 4, "parallel chunking workers")
		save    = flag.Bool("save", false, "also persist chunks to MongoDB")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	chunker, err := services.NewChunkerService(cfg.MaxChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatal("Invalid chunking config:", err)
	}

	ctx := context.Background()

	var listings []models.Listing
	var store *database.ListingStore

	if *input != "" {
		data, err := os.ReadFile(*input)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *input, err)
		}
		if err := json.Unmarshal(data, &listings); err != nil {
			log.Fatalf("Failed to parse %s: %v", *input, err)
		}
	} else {
		mongoClient, err := config.ConnectMongoDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer mongoClient.Disconnect(ctx)

		store = database.NewListingStore(mongoClient, cfg.DBName)
		listings, err = store.Listings(ctx)
		if err != nil {
			log.Fatal("Failed to load listings:", err)
		}
	}

	logger.Info("Chunking listings", "count", len(listings), "workers", *workers)

	// Chunk IDs are random UUIDs, so workers need no coordination beyond
	// collecting their output.
	jobs := make(chan models.Listing)
	var mu sync.Mutex
	var all []models.Chunk

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for l := range jobs {
				chunks, err := chunker.ChunkListing(l)
				if err != nil {
					logger.Warn("Skipping listing", "url", l.URL, "error", err)
					continue
				}
				if *save && store != nil {
					if err := store.ReplaceChunks(ctx, l.URL, chunks); err != nil {
						logger.Error("Failed to persist chunks", "url", l.URL, "error", err)
					}
				}
				mu.Lock()
				all = append(all, chunks...)
				mu.Unlock()
			}
		}()
	}

	for _, l := range listings {
		jobs <- l
	}
	close(jobs)
	wg.Wait()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Metadata.URL != all[j].Metadata.URL {
			return all[i].Metadata.URL < all[j].Metadata.URL
		}
		return all[i].ChunkIndex < all[j].ChunkIndex
	})

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		log.Fatal("Failed to encode chunks:", err)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *output, err)
	}

	logger.Info("Chunking complete", "chunks", len(all), "output", *output)
}
