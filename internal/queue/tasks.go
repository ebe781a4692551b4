package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"car-rag-platform/internal/database"
	"car-rag-platform/internal/logger"
	"car-rag-platform/models"
	"car-rag-platform/services"
)

const (
	// TaskIndexListing chunks one listing and upserts it into the vector index.
	TaskIndexListing = "listing:index"
)

type IndexListingPayload struct {
	URL string `json:"url"`
}

// NewIndexListingTask enqueues chunk+index work for one listing. Chunking has
// no cross-listing dependency, so these run at full worker concurrency.
func NewIndexListingTask(url string) (*asynq.Task, error) {
	payload, err := json.Marshal(IndexListingPayload{URL: url})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIndexListing,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("default"),
	), nil
}

// BatchEmbedder turns chunk texts into vectors, preserving order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex receives chunk records and their vectors.
type VectorIndex interface {
	Upsert(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error
}

// TaskProcessor executes queued indexing work.
type TaskProcessor struct {
	store    *database.ListingStore
	chunker  *services.ChunkerService
	embedder BatchEmbedder
	index    VectorIndex
}

func NewTaskProcessor(store *database.ListingStore, chunker *services.ChunkerService, embedder BatchEmbedder, index VectorIndex) *TaskProcessor {
	return &TaskProcessor{store: store, chunker: chunker, embedder: embedder, index: index}
}

// IndexListing loads the listing, chunks it, persists the chunk records and
// upserts vectors. A validation failure is terminal for the task: retrying a
// malformed listing cannot succeed.
func (p *TaskProcessor) IndexListing(ctx context.Context, t *asynq.Task) error {
	var payload IndexListingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshaling payload: %v: %w", err, asynq.SkipRetry)
	}

	listing, err := p.store.ListingByURL(ctx, payload.URL)
	if err != nil {
		return fmt.Errorf("loading listing: %w", err)
	}

	chunks, err := p.chunker.ChunkListing(listing)
	if err != nil {
		logger.Warn("Listing failed validation, skipping", "url", payload.URL, "error", err)
		return fmt.Errorf("chunking listing: %v: %w", err, asynq.SkipRetry)
	}

	if err := p.store.ReplaceChunks(ctx, payload.URL, chunks); err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}

	if err := p.index.Upsert(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("upserting vectors: %w", err)
	}

	logger.Info("Indexed listing", "url", payload.URL, "chunks", len(chunks))
	return nil
}
