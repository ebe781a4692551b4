package models

// ContextRecord is a query-scoped projection of one retrieved chunk: the text
// plus the listing snapshot and the similarity distance (lower is more
// relevant). Distance is nil when the index does not report distances.
type ContextRecord struct {
	Content  string
	Metadata ChunkMetadata
	Distance *float64
}

// SearchResult is the raw shape returned by the similarity-search
// collaborator: parallel slices where position i across all three describes
// the same hit, best match first. Distances may be nil as a whole when the
// collaborator does not score.
type SearchResult struct {
	Documents []string
	Metadatas []map[string]string
	Distances []float64
}
