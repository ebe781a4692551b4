package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-rag-platform/models"
)

func testExtractor() *FilterExtractor {
	return NewFilterExtractor(
		[]string{"Toyota", "Honda", "Maruti", "Hyundai", "Tata"},
		[]string{"Petrol", "Diesel", "CNG", "Electric"},
		[]string{"Delhi", "Mumbai", "Bangalore", "Pune"},
	)
}

func TestExtract_AllCategories(t *testing.T) {
	filters := testExtractor().Extract("Show me a Honda Civic 2022 petrol in Delhi")
	require.Len(t, filters, 4)

	byField := map[string]models.Filter{}
	for _, f := range filters {
		byField[f.Field] = f
	}

	assert.Equal(t, models.Filter{Field: "car_name", Op: models.OpContains, Value: "Honda"}, byField["car_name"])
	assert.Equal(t, models.Filter{Field: "fuel_type", Op: models.OpEquals, Value: "Petrol"}, byField["fuel_type"])
	assert.Equal(t, models.Filter{Field: "city", Op: models.OpEquals, Value: "Delhi"}, byField["city"])
	assert.Equal(t, models.Filter{Field: "manufacturing_year", Op: models.OpEquals, Value: "2022"}, byField["manufacturing_year"])
}

func TestExtract_CaseInsensitive(t *testing.T) {
	filters := testExtractor().Extract("any DIESEL cars in mumbai?")
	require.Len(t, filters, 2)

	assert.Equal(t, "Diesel", filters[0].Value, "filter value keeps vocabulary casing")
	assert.Equal(t, "Mumbai", filters[1].Value)
}

func TestExtract_OnePerCategory(t *testing.T) {
	filters := testExtractor().Extract("Toyota or Honda, Delhi or Pune?")
	require.Len(t, filters, 2)

	// First vocabulary hit wins within a category.
	assert.Equal(t, "Toyota", filters[0].Value)
	assert.Equal(t, "Delhi", filters[1].Value)
}

func TestExtract_YearBounds(t *testing.T) {
	filters := testExtractor().Extract("models from 2018 please")
	require.Len(t, filters, 1)
	assert.Equal(t, "manufacturing_year", filters[0].Field)
	assert.Equal(t, "2018", filters[0].Value)

	// 19xx years and digit runs inside longer numbers don't count.
	assert.Nil(t, testExtractor().Extract("a classic from 1998"))
	assert.Nil(t, testExtractor().Extract("under 120000 kms"))
}

func TestExtract_NoMatches(t *testing.T) {
	filters := testExtractor().Extract("what's the cheapest car you have?")
	assert.Nil(t, filters)
	assert.True(t, filters.Empty())
}
