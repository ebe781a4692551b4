package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-rag-platform/internal/index"
	"car-rag-platform/models"
)

// fakeIndex records every search call and replays scripted results.
type fakeIndex struct {
	calls   []models.FilterSet
	results []models.SearchResult
	errs    []error
}

func (f *fakeIndex) Search(ctx context.Context, query string, k int, filters models.FilterSet) (models.SearchResult, error) {
	i := len(f.calls)
	f.calls = append(f.calls, filters)
	if i < len(f.errs) && f.errs[i] != nil {
		return models.SearchResult{}, f.errs[i]
	}
	if i < len(f.results) {
		return f.results[i], nil
	}
	return models.SearchResult{}, nil
}

func TestRetrieve_NormalizesResults(t *testing.T) {
	dist := []float64{0.12, 0.34}
	idx := &fakeIndex{
		results: []models.SearchResult{{
			Documents: []string{"CAR: Honda City", "CAR: Tata Nexon"},
			Metadatas: []map[string]string{
				{"car_name": "Honda City", "city": "Delhi"},
				{"car_name": "Tata Nexon", "city": "Pune"},
			},
			Distances: dist,
		}},
	}

	r := NewContextRetriever(idx, 5)
	contexts, err := r.Retrieve(context.Background(), "city cars", nil)
	require.NoError(t, err)
	require.Len(t, contexts, 2)

	assert.Equal(t, "CAR: Honda City", contexts[0].Content)
	assert.Equal(t, "Honda City", contexts[0].Metadata.CarName)
	assert.Equal(t, "Delhi", contexts[0].Metadata.City)
	require.NotNil(t, contexts[0].Distance)
	assert.Equal(t, 0.12, *contexts[0].Distance)

	assert.Equal(t, "Tata Nexon", contexts[1].Metadata.CarName)
	require.NotNil(t, contexts[1].Distance)
	assert.Equal(t, 0.34, *contexts[1].Distance)
}

func TestRetrieve_EmptyResultIsNotAnError(t *testing.T) {
	r := NewContextRetriever(&fakeIndex{}, 5)

	contexts, err := r.Retrieve(context.Background(), "flying cars", nil)
	require.NoError(t, err)
	assert.Empty(t, contexts)
}

func TestRetrieve_FilterRejectionRetriesUnfiltered(t *testing.T) {
	idx := &fakeIndex{
		errs: []error{&index.FilterRejectedError{Status: 400, Message: "bad filter"}},
		results: []models.SearchResult{
			{},
			{
				Documents: []string{"CAR: Honda City"},
				Metadatas: []map[string]string{{"car_name": "Honda City"}},
			},
		},
	}

	filters := models.FilterSet{{Field: "city", Op: models.OpEquals, Value: "Delhi"}}
	r := NewContextRetriever(idx, 5)

	contexts, err := r.Retrieve(context.Background(), "cars in delhi", filters)
	require.NoError(t, err)
	require.Len(t, contexts, 1)

	require.Len(t, idx.calls, 2)
	assert.Equal(t, filters, idx.calls[0])
	assert.Nil(t, idx.calls[1], "retry must drop the filters")
}

func TestRetrieve_FilterRejectionWithoutFiltersFails(t *testing.T) {
	idx := &fakeIndex{
		errs: []error{&index.FilterRejectedError{Status: 400, Message: "bad request"}},
	}

	r := NewContextRetriever(idx, 5)
	_, err := r.Retrieve(context.Background(), "cars", nil)
	require.Error(t, err)

	var rerr *RetrievalError
	assert.ErrorAs(t, err, &rerr)
	assert.Len(t, idx.calls, 1, "no retry without filters to drop")
}

func TestRetrieve_OtherErrorsDoNotRetry(t *testing.T) {
	idx := &fakeIndex{
		errs: []error{errors.New("connection refused")},
	}

	filters := models.FilterSet{{Field: "city", Op: models.OpEquals, Value: "Delhi"}}
	r := NewContextRetriever(idx, 5)

	_, err := r.Retrieve(context.Background(), "cars", filters)
	require.Error(t, err)

	var rerr *RetrievalError
	require.ErrorAs(t, err, &rerr)
	assert.Len(t, idx.calls, 1)
}

func TestRetrieve_MismatchedArraysRejected(t *testing.T) {
	idx := &fakeIndex{
		results: []models.SearchResult{{
			Documents: []string{"a", "b"},
			Metadatas: []map[string]string{{"car_name": "a"}},
		}},
	}

	r := NewContextRetriever(idx, 5)
	_, err := r.Retrieve(context.Background(), "cars", nil)
	require.Error(t, err)

	var rerr *RetrievalError
	assert.ErrorAs(t, err, &rerr)
}
