package index

import "fmt"

// FilterRejectedError reports that the vector index refused the filter shape
// attached to a search. Callers may retry the same search unfiltered; any
// other search failure must not be retried.
type FilterRejectedError struct {
	Status  int
	Message string
}

func (e *FilterRejectedError) Error() string {
	return fmt.Sprintf("index rejected filter (status %d): %s", e.Status, e.Message)
}
