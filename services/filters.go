package services

import (
	"regexp"
	"strings"

	"car-rag-platform/models"
)

var yearRe = regexp.MustCompile(`\b(20\d{2})\b`)

// FilterExtractor infers structured search filters from a free-text query by
// scanning closed vocabulary lists. It is a conservative heuristic: a missed
// filter just means unfiltered search, and false positives require an exact
// vocabulary substring match. Extending coverage means extending the lists.
type FilterExtractor struct {
	brands    []string
	fuelTypes []string
	cities    []string
}

// NewFilterExtractor builds an extractor over the configured vocabularies.
func NewFilterExtractor(brands, fuelTypes, cities []string) *FilterExtractor {
	return &FilterExtractor{brands: brands, fuelTypes: fuelTypes, cities: cities}
}

// Extract scans the query case-insensitively against brands, fuel types,
// cities and a 4-digit year, in that order, taking at most one match per
// category. It returns nil when nothing matched; multiple matches are an
// AND conjunction.
func (fe *FilterExtractor) Extract(query string) models.FilterSet {
	lq := strings.ToLower(query)
	var filters models.FilterSet

	for _, brand := range fe.brands {
		if strings.Contains(lq, strings.ToLower(brand)) {
			filters = append(filters, models.Filter{Field: "car_name", Op: models.OpContains, Value: brand})
			break
		}
	}

	for _, fuel := range fe.fuelTypes {
		if strings.Contains(lq, strings.ToLower(fuel)) {
			filters = append(filters, models.Filter{Field: "fuel_type", Op: models.OpEquals, Value: fuel})
			break
		}
	}

	for _, city := range fe.cities {
		if strings.Contains(lq, strings.ToLower(city)) {
			filters = append(filters, models.Filter{Field: "city", Op: models.OpEquals, Value: city})
			break
		}
	}

	if m := yearRe.FindStringSubmatch(query); m != nil {
		filters = append(filters, models.Filter{Field: "manufacturing_year", Op: models.OpEquals, Value: m[1]})
	}

	return filters
}
