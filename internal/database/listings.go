package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"car-rag-platform/models"
)

// ListingStore persists scraped listings and the chunk records derived from
// them. Listings are keyed by source URL so a re-scrape replaces the record
// in place.
type ListingStore struct {
	listings *mongo.Collection
	chunks   *mongo.Collection
}

type storedListing struct {
	models.Listing `bson:",inline"`
	ScrapedAt      time.Time `bson:"scraped_at"`
}

func NewListingStore(client *mongo.Client, dbName string) *ListingStore {
	db := client.Database(dbName)
	return &ListingStore{
		listings: db.Collection("listings"),
		chunks:   db.Collection("listing_chunks"),
	}
}

// SaveListing upserts one listing by URL.
func (s *ListingStore) SaveListing(ctx context.Context, l models.Listing) error {
	if l.URL == "" {
		return fmt.Errorf("listing has no URL")
	}
	doc := storedListing{Listing: l, ScrapedAt: time.Now().UTC()}
	_, err := s.listings.UpdateOne(ctx,
		bson.M{"url": l.URL},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("saving listing %s: %w", l.URL, err)
	}
	return nil
}

// ListingByURL loads one listing.
func (s *ListingStore) ListingByURL(ctx context.Context, url string) (models.Listing, error) {
	var doc storedListing
	if err := s.listings.FindOne(ctx, bson.M{"url": url}).Decode(&doc); err != nil {
		return models.Listing{}, fmt.Errorf("loading listing %s: %w", url, err)
	}
	return doc.Listing, nil
}

// Listings streams the full catalog, oldest scrape first.
func (s *ListingStore) Listings(ctx context.Context) ([]models.Listing, error) {
	cursor, err := s.listings.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "scraped_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Listing
	for cursor.Next(ctx) {
		var doc storedListing
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding listing: %w", err)
		}
		out = append(out, doc.Listing)
	}
	return out, cursor.Err()
}

// ReplaceChunks swaps the stored chunk records for a listing. Chunks are
// immutable, so re-processing deletes the old generation wholesale.
func (s *ListingStore) ReplaceChunks(ctx context.Context, listingURL string, chunks []models.Chunk) error {
	if _, err := s.chunks.DeleteMany(ctx, bson.M{"metadata.url": listingURL}); err != nil {
		return fmt.Errorf("removing stale chunks for %s: %w", listingURL, err)
	}
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]interface{}, len(chunks))
	for i, ch := range chunks {
		docs[i] = ch
	}
	if _, err := s.chunks.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("inserting chunks for %s: %w", listingURL, err)
	}
	return nil
}

// Chunks loads all chunk records, in listing order then chunk order.
func (s *ListingStore) Chunks(ctx context.Context) ([]models.Chunk, error) {
	sort := bson.D{{Key: "metadata.url", Value: 1}, {Key: "chunk_index", Value: 1}}
	cursor, err := s.chunks.Find(ctx, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Chunk
	for cursor.Next(ctx) {
		var ch models.Chunk
		if err := cursor.Decode(&ch); err != nil {
			return nil, fmt.Errorf("decoding chunk: %w", err)
		}
		out = append(out, ch)
	}
	return out, cursor.Err()
}

// CountListings reports the catalog size.
func (s *ListingStore) CountListings(ctx context.Context) (int64, error) {
	return s.listings.CountDocuments(ctx, bson.M{})
}
