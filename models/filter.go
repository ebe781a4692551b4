package models

// FilterOp is the comparison applied by a search filter.
type FilterOp string

const (
	// OpEquals matches metadata fields whose value equals the filter value.
	OpEquals FilterOp = "eq"
	// OpContains matches metadata fields containing the filter value as a substring.
	OpContains FilterOp = "contains"
)

// Filter is one structured constraint narrowing similarity search.
type Filter struct {
	Field string   `json:"field"`
	Op    FilterOp `json:"op"`
	Value string   `json:"value"`
}

// FilterSet is a conjunction of filters. Extraction picks at most one value
// per category, so a set is always an AND, never an OR. A nil or empty set
// means unfiltered search.
type FilterSet []Filter

// Empty reports whether the set carries no constraints.
func (fs FilterSet) Empty() bool { return len(fs) == 0 }
