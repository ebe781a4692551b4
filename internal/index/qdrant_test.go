package index

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-rag-platform/models"
)

type fixedEmbedder struct {
	vector []float32
	err    error
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

func testClient(t *testing.T, handler http.HandlerFunc) (*Qdrant, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	q := NewQdrant(QdrantConfig{
		URL:        srv.URL,
		Collection: "car_data_chunks",
	}, &fixedEmbedder{vector: []float32{0.1, 0.2, 0.3}})
	return q, srv
}

func TestEnsureCollection(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	q, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"result": true, "status": "ok"}`))
	})

	require.NoError(t, q.EnsureCollection(context.Background(), 768))
	assert.Equal(t, "PUT /collections/car_data_chunks", gotPath)

	vectors := gotBody["vectors"].(map[string]any)
	assert.Equal(t, float64(768), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestEnsureCollection_InvalidDimension(t *testing.T) {
	q := NewQdrant(QdrantConfig{URL: "http://localhost:1"}, &fixedEmbedder{})
	assert.Error(t, q.EnsureCollection(context.Background(), 0))
}

func TestUpsert(t *testing.T) {
	var gotBody struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}

	q, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"status": "ok"}`))
	})

	chunks := []models.Chunk{{
		ChunkID:    "6f1e1dca-0000-4000-8000-000000000001",
		ChunkIndex: 0,
		Text:       "CAR: Honda City\n",
		Metadata:   models.ChunkMetadata{CarName: "Honda City", City: "Delhi"},
	}}
	vectors := [][]float32{{0.5, 0.5}}

	require.NoError(t, q.Upsert(context.Background(), chunks, vectors))
	require.Len(t, gotBody.Points, 1)

	p := gotBody.Points[0]
	assert.Equal(t, chunks[0].ChunkID, p.ID)
	assert.Equal(t, vectors[0], p.Vector)
	assert.Equal(t, "CAR: Honda City\n", p.Payload["text"])
	assert.Equal(t, "Honda City", p.Payload["car_name"])
	assert.Equal(t, "Delhi", p.Payload["city"])
}

func TestUpsert_LengthMismatch(t *testing.T) {
	q := NewQdrant(QdrantConfig{URL: "http://localhost:1"}, &fixedEmbedder{})
	err := q.Upsert(context.Background(), []models.Chunk{{}}, nil)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	var gotReq map[string]any

	q, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/car_data_chunks/points/search", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"result": [
			{"score": 0.92, "payload": {"text": "CAR: Honda City\n", "car_name": "Honda City", "city": "Delhi", "chunk_index": 0}},
			{"score": 0.81, "payload": {"text": "CAR: Tata Nexon\n", "car_name": "Tata Nexon"}}
		]}`))
	})

	filters := models.FilterSet{
		{Field: "city", Op: models.OpEquals, Value: "Delhi"},
		{Field: "car_name", Op: models.OpContains, Value: "Honda"},
	}

	result, err := q.Search(context.Background(), "honda in delhi", 5, filters)
	require.NoError(t, err)

	assert.Equal(t, float64(5), gotReq["limit"])
	assert.Equal(t, true, gotReq["with_payload"])

	filter := gotReq["filter"].(map[string]any)
	must := filter["must"].([]any)
	require.Len(t, must, 2)
	eq := must[0].(map[string]any)
	assert.Equal(t, "city", eq["key"])
	assert.Equal(t, map[string]any{"value": "Delhi"}, eq["match"])
	contains := must[1].(map[string]any)
	assert.Equal(t, map[string]any{"text": "Honda"}, contains["match"])

	require.Len(t, result.Documents, 2)
	assert.Equal(t, "CAR: Honda City\n", result.Documents[0])
	assert.Equal(t, "Honda City", result.Metadatas[0]["car_name"])
	assert.Equal(t, "Delhi", result.Metadatas[0]["city"])
	assert.NotContains(t, result.Metadatas[0], "text")
	assert.NotContains(t, result.Metadatas[0], "chunk_index", "non-string payload values are dropped")

	// Scores become distances, so ranking order is preserved ascending.
	require.Len(t, result.Distances, 2)
	assert.InDelta(t, 0.08, result.Distances[0], 1e-9)
	assert.InDelta(t, 0.19, result.Distances[1], 1e-9)
	assert.Less(t, result.Distances[0], result.Distances[1])
}

func TestSearch_FilterRejected(t *testing.T) {
	q, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status": {"error": "Index required for field city"}}`, http.StatusBadRequest)
	})

	filters := models.FilterSet{{Field: "city", Op: models.OpEquals, Value: "Delhi"}}
	_, err := q.Search(context.Background(), "cars in delhi", 5, filters)
	require.Error(t, err)

	var rejected *FilterRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusBadRequest, rejected.Status)
}

func TestSearch_BadRequestWithoutFiltersIsGeneric(t *testing.T) {
	q, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad vector", http.StatusBadRequest)
	})

	_, err := q.Search(context.Background(), "cars", 5, nil)
	require.Error(t, err)

	var rejected *FilterRejectedError
	assert.False(t, errors.As(err, &rejected))
}

func TestSearch_EmbedderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("index must not be queried when embedding fails")
	}))
	t.Cleanup(srv.Close)

	q := NewQdrant(QdrantConfig{URL: srv.URL, Collection: "c"}, &fixedEmbedder{err: errors.New("embed down")})
	_, err := q.Search(context.Background(), "cars", 5, nil)
	assert.Error(t, err)
}
