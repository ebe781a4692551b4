package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"car-rag-platform/models"
)

// Embedder converts text into the vector representation the index stores.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Qdrant is a minimal REST client to a Qdrant collection holding listing
// chunks. It embeds query text itself, so callers deal only in strings,
// filters and result counts. Collection payloads use the flat chunk metadata
// map plus "text" and "chunk_index".
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	embedder   Embedder
	client     *http.Client
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewQdrant(cfg QdrantConfig, embedder Embedder) *Qdrant {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		embedder:   embedder,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection with cosine distance if it does not
// exist yet. Qdrant answers 200 for an existing collection with the same
// schema.
func (q *Qdrant) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid vector dimension")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	_, err := q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", q.collection), body, false)
	return err
}

// Upsert writes chunks and their vectors into the collection. Chunk IDs are
// UUIDs, which Qdrant accepts as point IDs directly, so re-upserting the same
// chunk is idempotent.
func (q *Qdrant) Upsert(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	points := make([]map[string]any, len(chunks))
	for i, ch := range chunks {
		payload := map[string]any{
			"text":        ch.Text,
			"chunk_index": ch.ChunkIndex,
		}
		for k, v := range ch.Metadata.Map() {
			payload[k] = v
		}
		points[i] = map[string]any{
			"id":      ch.ChunkID,
			"vector":  vectors[i],
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	_, err := q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", q.collection), body, false)
	return err
}

// Search embeds the query and runs a nearest-neighbour lookup, best match
// first. A rejected filter surfaces as *FilterRejectedError so callers can
// fall back to unfiltered search; an empty result is not an error.
func (q *Qdrant) Search(ctx context.Context, query string, k int, filters models.FilterSet) (models.SearchResult, error) {
	if k <= 0 {
		k = 5
	}

	vector, err := q.embedder.Embed(ctx, query)
	if err != nil {
		return models.SearchResult{}, fmt.Errorf("embedding query: %w", err)
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	if !filters.Empty() {
		clause, err := filterClause(filters)
		if err != nil {
			return models.SearchResult{}, &FilterRejectedError{Message: err.Error()}
		}
		req["filter"] = clause
	}

	raw, err := q.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", q.collection), req, !filters.Empty())
	if err != nil {
		return models.SearchResult{}, err
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return models.SearchResult{}, fmt.Errorf("decoding search response: %w", err)
	}

	out := models.SearchResult{
		Documents: make([]string, 0, len(resp.Result)),
		Metadatas: make([]map[string]string, 0, len(resp.Result)),
		Distances: make([]float64, 0, len(resp.Result)),
	}
	for _, r := range resp.Result {
		doc := ""
		meta := make(map[string]string, len(r.Payload))
		for k, v := range r.Payload {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if k == "text" {
				doc = s
				continue
			}
			meta[k] = s
		}
		out.Documents = append(out.Documents, doc)
		out.Metadatas = append(out.Metadatas, meta)
		// Cosine score is a similarity; report it as a distance, lower = closer.
		out.Distances = append(out.Distances, 1-r.Score)
	}
	return out, nil
}

// filterClause translates a filter set into Qdrant's must-match form.
// Equality uses a value match; containment uses a full-text match, which
// requires a text index on the field and is otherwise rejected by Qdrant.
func filterClause(filters models.FilterSet) (map[string]any, error) {
	must := make([]map[string]any, 0, len(filters))
	for _, f := range filters {
		switch f.Op {
		case models.OpEquals:
			must = append(must, map[string]any{
				"key":   f.Field,
				"match": map[string]any{"value": f.Value},
			})
		case models.OpContains:
			must = append(must, map[string]any{
				"key":   f.Field,
				"match": map[string]any{"text": f.Value},
			})
		default:
			return nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}
	return map[string]any{"must": must}, nil
}

// do issues one JSON request. When filtered is set, a 400 from Qdrant is
// treated as a filter rejection rather than a generic failure.
func (q *Qdrant) do(ctx context.Context, method, path string, body any, filtered bool) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, q.url+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading qdrant response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	if filtered && resp.StatusCode == http.StatusBadRequest {
		return nil, &FilterRejectedError{Status: resp.StatusCode, Message: string(raw)}
	}
	return nil, fmt.Errorf("qdrant returned status %d: %s", resp.StatusCode, raw)
}
