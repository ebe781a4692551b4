package models

import "strings"

// Listing is one used-car listing as produced by the scraper.
// Listings are immutable once written; re-scraping replaces the whole record.
type Listing struct {
	CarName       string            `json:"car_name" bson:"car_name"`
	Price         string            `json:"price" bson:"price"`
	Details       map[string]string `json:"details" bson:"details"`
	SellerRemarks string            `json:"seller_remarks" bson:"seller_remarks"`
	URL           string            `json:"url" bson:"url"`
}

// Detail returns the named detail value, or fallback when the key is absent
// or empty. Only optional fields may be defaulted this way.
func (l Listing) Detail(key, fallback string) string {
	if v := strings.TrimSpace(l.Details[key]); v != "" {
		return v
	}
	return fallback
}

// ChunkMetadata is the listing snapshot carried by every chunk of a listing.
// It is identical across all chunks derived from the same listing.
type ChunkMetadata struct {
	CarName           string `json:"car_name" bson:"car_name"`
	Price             string `json:"price" bson:"price"`
	City              string `json:"city" bson:"city"`
	FuelType          string `json:"fuel_type" bson:"fuel_type"`
	ManufacturingYear string `json:"manufacturing_year" bson:"manufacturing_year"`
	URL               string `json:"url" bson:"url"`
}

// Map flattens the metadata into the string map shape the vector index stores.
func (m ChunkMetadata) Map() map[string]string {
	return map[string]string{
		"car_name":           m.CarName,
		"price":              m.Price,
		"city":               m.City,
		"fuel_type":          m.FuelType,
		"manufacturing_year": m.ManufacturingYear,
		"url":                m.URL,
	}
}

// MetadataFromMap rebuilds a ChunkMetadata from the index's payload map.
func MetadataFromMap(m map[string]string) ChunkMetadata {
	return ChunkMetadata{
		CarName:           m["car_name"],
		Price:             m["price"],
		City:              m["city"],
		FuelType:          m["fuel_type"],
		ManufacturingYear: m["manufacturing_year"],
		URL:               m["url"],
	}
}

// Chunk is one bounded fragment of a listing's canonical rendering, the unit
// indexed for similarity search. StartIndex/EndIndex are rune offsets into the
// rendering; adjacent chunks overlap where EndIndex of one exceeds StartIndex
// of the next.
type Chunk struct {
	ChunkID    string        `json:"chunk_id" bson:"chunk_id"`
	ChunkIndex int           `json:"chunk_index" bson:"chunk_index"`
	Text       string        `json:"text" bson:"text"`
	StartIndex int           `json:"start_index" bson:"start_index"`
	EndIndex   int           `json:"end_index" bson:"end_index"`
	Metadata   ChunkMetadata `json:"metadata" bson:"metadata"`
}
