package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-rag-platform/models"
)

func newTestPipeline(idx SearchIndex, llm TextGenerator) *Pipeline {
	extractor := testExtractor()
	retriever := NewContextRetriever(idx, 5)
	generator := NewAnswerGenerator(llm)
	return NewPipeline(extractor, retriever, generator, 5*time.Second, 5*time.Second)
}

func cityResult() models.SearchResult {
	return models.SearchResult{
		Documents: []string{"CAR: Honda City\nPRICE: ₹ 8.2 Lakh\n"},
		Metadatas: []map[string]string{{
			"car_name": "Honda City",
			"price":    "₹ 8.2 Lakh",
			"city":     "Delhi",
		}},
		Distances: []float64{0.1},
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	idx := &fakeIndex{results: []models.SearchResult{cityResult()}}
	llm := &fakeLLM{response: "The Honda City in Delhi costs ₹8.2 Lakh."}

	p := newTestPipeline(idx, llm)
	answer, err := p.Answer(context.Background(), "Honda in Delhi?", nil)
	require.NoError(t, err)
	assert.Equal(t, "The Honda City in Delhi costs ₹8.2 Lakh.", answer)

	// Inferred filters reached the index.
	require.Len(t, idx.calls, 1)
	assert.NotEmpty(t, idx.calls[0])

	// The generator saw the formatted context.
	require.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.prompts[0], "[CAR 1] Honda City")
	assert.Contains(t, llm.prompts[0], "USER QUESTION: Honda in Delhi?")
}

func TestPipeline_ExplicitFiltersTakePrecedence(t *testing.T) {
	idx := &fakeIndex{results: []models.SearchResult{cityResult()}}
	llm := &fakeLLM{response: "ok"}

	explicit := models.FilterSet{{Field: "fuel_type", Op: models.OpEquals, Value: "Diesel"}}

	p := newTestPipeline(idx, llm)
	_, err := p.Answer(context.Background(), "Honda in Delhi?", explicit)
	require.NoError(t, err)

	// The query would have produced brand and city filters, but explicit
	// filters replace extraction entirely.
	require.Len(t, idx.calls, 1)
	assert.Equal(t, explicit, idx.calls[0])
}

func TestPipeline_NoContextSkipsGenerator(t *testing.T) {
	idx := &fakeIndex{}
	llm := &fakeLLM{response: "should never be used"}

	p := newTestPipeline(idx, llm)
	answer, err := p.Answer(context.Background(), "flying cars?", nil)
	require.NoError(t, err)

	assert.Equal(t, NotFoundMessage, answer)
	assert.Equal(t, 0, llm.calls, "generator must not run without context")
}

func TestPipeline_RetrievalFailurePropagates(t *testing.T) {
	idx := &fakeIndex{errs: []error{errors.New("qdrant down")}}
	llm := &fakeLLM{}

	p := newTestPipeline(idx, llm)
	_, err := p.Answer(context.Background(), "any cars?", nil)
	require.Error(t, err)

	var rerr *RetrievalError
	assert.ErrorAs(t, err, &rerr)
	assert.Equal(t, 0, llm.calls)
}

func TestPipeline_GenerationFailureBecomesAnswer(t *testing.T) {
	idx := &fakeIndex{results: []models.SearchResult{cityResult()}}
	llm := &fakeLLM{err: errors.New("model overloaded")}

	p := newTestPipeline(idx, llm)
	answer, err := p.Answer(context.Background(), "Honda in Delhi?", nil)
	require.NoError(t, err, "generation failures are not pipeline errors")
	assert.Equal(t, "Error generating response: model overloaded", answer)
}
