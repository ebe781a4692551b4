package services

import (
	"context"
	"errors"

	"car-rag-platform/internal/index"
	"car-rag-platform/internal/logger"
	"car-rag-platform/models"
)

// SearchIndex is the similarity-search collaborator: given a query string, a
// result count and an optional filter set it returns ranked hits as parallel
// arrays, best match first. Rejected filter shapes must surface as
// *index.FilterRejectedError.
type SearchIndex interface {
	Search(ctx context.Context, query string, k int, filters models.FilterSet) (models.SearchResult, error)
}

// ContextRetriever fetches ranked chunks for a query and normalizes them into
// context records. It is stateless; one instance serves concurrent requests.
type ContextRetriever struct {
	index SearchIndex
	topK  int
}

func NewContextRetriever(idx SearchIndex, topK int) *ContextRetriever {
	if topK <= 0 {
		topK = 5
	}
	return &ContextRetriever{index: idx, topK: topK}
}

// Retrieve runs the search with filters attached when present. A filter
// rejection triggers exactly one unfiltered retry; this is a fallback on a
// validation error, not a transient-failure retry, so every other failure
// propagates as a RetrievalError. An empty result list is a valid outcome.
func (r *ContextRetriever) Retrieve(ctx context.Context, query string, filters models.FilterSet) ([]models.ContextRecord, error) {
	result, err := r.index.Search(ctx, query, r.topK, filters)
	if err != nil {
		var rejected *index.FilterRejectedError
		if !filters.Empty() && errors.As(err, &rejected) {
			logger.Warn("Filter rejected by index, retrying unfiltered",
				"filters", len(filters), "error", rejected.Message)
			result, err = r.index.Search(ctx, query, r.topK, nil)
		}
		if err != nil {
			return nil, &RetrievalError{Err: err}
		}
	}

	return normalize(result)
}

// normalize zips the parallel result arrays into context records. Positions
// must correspond 1:1 across the arrays; a length mismatch would silently
// attach wrong metadata, so it is rejected outright.
func normalize(result models.SearchResult) ([]models.ContextRecord, error) {
	if len(result.Documents) != len(result.Metadatas) {
		return nil, &RetrievalError{Err: errors.New("documents and metadatas are not the same length")}
	}
	if result.Distances != nil && len(result.Distances) != len(result.Documents) {
		return nil, &RetrievalError{Err: errors.New("distances and documents are not the same length")}
	}

	contexts := make([]models.ContextRecord, 0, len(result.Documents))
	for i, doc := range result.Documents {
		rec := models.ContextRecord{
			Content:  doc,
			Metadata: models.MetadataFromMap(result.Metadatas[i]),
		}
		if result.Distances != nil {
			d := result.Distances[i]
			rec.Distance = &d
		}
		contexts = append(contexts, rec)
	}
	return contexts, nil
}
