package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-rag-platform/models"
)

func TestFormatContext_Empty(t *testing.T) {
	assert.Equal(t, NoContextMessage, FormatContext(nil))
	assert.Equal(t, NoContextMessage, FormatContext([]models.ContextRecord{}))
}

func TestFormatContext_RendersRecordsInOrder(t *testing.T) {
	contexts := []models.ContextRecord{
		{
			Content: "CAR: Honda City\nPRICE: ₹ 8.2 Lakh\n",
			Metadata: models.ChunkMetadata{
				CarName:           "Honda City",
				Price:             "₹ 8.2 Lakh",
				City:              "Delhi",
				FuelType:          "Petrol",
				ManufacturingYear: "2021",
				URL:               "https://example.com/city",
			},
		},
		{
			Content: "CAR: Tata Nexon\n",
			Metadata: models.ChunkMetadata{
				CarName: "Tata Nexon",
			},
		},
	}

	out := FormatContext(contexts)

	require.True(t, strings.HasPrefix(out, "RELEVANT CAR LISTINGS:\n\n"))

	first := strings.Index(out, "[CAR 1] Honda City\n")
	second := strings.Index(out, "[CAR 2] Tata Nexon\n")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first, "records render in relevance order")

	assert.Contains(t, out, "Price: ₹8.2 Lakh (₹820,000.00)\n")
	assert.Contains(t, out, "Location: Delhi\n")
	assert.Contains(t, out, "Fuel Type: Petrol\n")
	assert.Contains(t, out, "Year: 2021\n")
	assert.Contains(t, out, "Listing URL: https://example.com/city\n")
	assert.Contains(t, out, "Details: CAR: Honda City\nPRICE: ₹ 8.2 Lakh\n\n\n")
}

func TestFormatContext_MissingMetadataFallbacks(t *testing.T) {
	out := FormatContext([]models.ContextRecord{{
		Content:  "CAR: something\n",
		Metadata: models.ChunkMetadata{},
	}})

	assert.Contains(t, out, "[CAR 1] Unknown\n")
	assert.Contains(t, out, "Price: Price not available\n")
	assert.Contains(t, out, "Location: Not specified\n")
	assert.Contains(t, out, "Fuel Type: Not specified\n")
	assert.Contains(t, out, "Year: Not specified\n")
	assert.Contains(t, out, "Listing URL: Not available\n")
}

func TestFormatContext_Pure(t *testing.T) {
	contexts := []models.ContextRecord{{
		Content:  "CAR: Honda City\n",
		Metadata: models.ChunkMetadata{CarName: "Honda City", Price: "₹ 8.2 Lakh"},
	}}

	first := FormatContext(contexts)
	second := FormatContext(contexts)
	assert.Equal(t, first, second, "same input must render byte-identical output")
}
