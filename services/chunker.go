package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"car-rag-platform/internal/logger"
	"car-rag-platform/models"

	"github.com/google/uuid"
)

// ChunkerService splits a listing's canonical rendering into bounded,
// overlapping chunks. Splitting walks a separator hierarchy from coarse to
// fine; finer separators are only used on segments a coarser split left
// oversized, so mid-word breaks happen only as a last resort.
type ChunkerService struct {
	maxChunkSize int // rune budget per chunk
	overlap      int // runes repeated from the previous chunk
	separators   []string
}

// NewChunkerService creates a chunker with the given rune budget and overlap.
// The overlap must satisfy 0 <= overlap < maxChunkSize.
func NewChunkerService(maxChunkSize, overlap int) (*ChunkerService, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("max chunk size must be positive, got %d", maxChunkSize)
	}
	if overlap < 0 || overlap >= maxChunkSize {
		return nil, fmt.Errorf("overlap must satisfy 0 <= overlap < max chunk size, got %d", overlap)
	}
	return &ChunkerService{
		maxChunkSize: maxChunkSize,
		overlap:      overlap,
		separators:   []string{"\n\n", "\n", " ", ""},
	}, nil
}

// RenderListing produces the canonical multi-line text block that chunking
// operates on. Detail keys are sorted so the rendering is deterministic
// regardless of map iteration order.
func RenderListing(l models.Listing) (string, error) {
	if strings.TrimSpace(l.CarName) == "" {
		return "", &ValidationError{Field: "car_name", Reason: "is required"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CAR: %s\n", l.CarName)
	fmt.Fprintf(&b, "PRICE: %s\n", l.Price)
	b.WriteString("DETAILS:\n")

	keys := make([]string, 0, len(l.Details))
	for k := range l.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s\n", prettyKey(k), l.Details[k])
	}

	if strings.TrimSpace(l.SellerRemarks) != "" {
		fmt.Fprintf(&b, "SELLER REMARKS: %s\n", l.SellerRemarks)
	}
	fmt.Fprintf(&b, "URL: %s\n", l.URL)

	return b.String(), nil
}

// ListingMetadata builds the snapshot every chunk of the listing carries.
// Optional detail fields default to "Unknown"; the car name never defaults
// because it identifies the listing downstream.
func ListingMetadata(l models.Listing) models.ChunkMetadata {
	return models.ChunkMetadata{
		CarName:           l.CarName,
		Price:             orUnknown(l.Price),
		City:              l.Detail("city", "Unknown"),
		FuelType:          l.Detail("fuel_type", "Unknown"),
		ManufacturingYear: l.Detail("manufacturing_year", "Unknown"),
		URL:               orUnknown(l.URL),
	}
}

// ChunkListing renders a listing and splits the rendering. For a valid
// listing it always yields at least one chunk with a non-empty text,
// contiguous indices from 0, and a fresh random chunk ID.
func (c *ChunkerService) ChunkListing(l models.Listing) ([]models.Chunk, error) {
	rendered, err := RenderListing(l)
	if err != nil {
		return nil, err
	}

	meta := ListingMetadata(l)
	segments := c.split(rendered, c.separators)
	spans := c.assemble(segments)

	chunks := make([]models.Chunk, len(spans))
	for i, sp := range spans {
		chunks[i] = models.Chunk{
			ChunkID:    uuid.NewString(),
			ChunkIndex: i,
			Text:       sp.text,
			StartIndex: sp.start,
			EndIndex:   sp.start + utf8.RuneCountInString(sp.text),
			Metadata:   meta,
		}
	}
	return chunks, nil
}

// ChunkAll chunks a batch of listings. A listing that fails validation is
// logged and skipped; it never aborts the rest of the batch.
func (c *ChunkerService) ChunkAll(listings []models.Listing) []models.Chunk {
	var out []models.Chunk
	for _, l := range listings {
		chunks, err := c.ChunkListing(l)
		if err != nil {
			logger.Warn("Skipping listing", "url", l.URL, "error", err)
			continue
		}
		out = append(out, chunks...)
	}
	return out
}

// split breaks text into segments no longer than the chunk budget. Each
// separator level keeps the separator attached to the preceding segment so
// that concatenating segments reproduces the input exactly. The final empty
// separator splits at rune granularity and guarantees termination.
func (c *ChunkerService) split(text string, seps []string) []string {
	if utf8.RuneCountInString(text) <= c.maxChunkSize {
		return []string{text}
	}

	sep, rest := seps[0], seps[1:]
	if sep == "" {
		return splitRunes(text, c.maxChunkSize)
	}

	var out []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= c.maxChunkSize {
			out = append(out, part)
			continue
		}
		out = append(out, c.split(part, rest)...)
	}
	return out
}

type chunkSpan struct {
	text  string
	start int // rune offset into the rendering
}

// assemble walks segments in order, packing them into chunks of up to
// maxChunkSize runes. Each chunk after the first starts with the trailing
// overlap of its predecessor, trimmed where a long segment leaves less room,
// so the chunk budget always holds.
func (c *ChunkerService) assemble(segments []string) []chunkSpan {
	var spans []chunkSpan
	cur := ""
	curLen := 0
	curStart := 0
	pos := 0

	for _, seg := range segments {
		segLen := utf8.RuneCountInString(seg)
		if cur == "" {
			curStart = pos
		} else if curLen+segLen > c.maxChunkSize {
			spans = append(spans, chunkSpan{text: cur, start: curStart})

			ov := c.overlap
			if ov > c.maxChunkSize-segLen {
				ov = c.maxChunkSize - segLen
			}
			if ov > curLen {
				ov = curLen
			}
			tail := tailRunes(cur, ov)
			cur = tail
			curLen = utf8.RuneCountInString(tail)
			curStart = pos - curLen
		}
		cur += seg
		curLen += segLen
		pos += segLen
	}

	if cur != "" {
		spans = append(spans, chunkSpan{text: cur, start: curStart})
	}
	return spans
}

// splitRunes cuts text into consecutive pieces of at most size runes.
func splitRunes(text string, size int) []string {
	runes := []rune(text)
	out := make([]string, 0, (len(runes)+size-1)/size)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

// tailRunes returns the trailing n runes of text.
func tailRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if n >= len(runes) {
		return text
	}
	return string(runes[len(runes)-n:])
}

// prettyKey turns a scraped detail key like "kms_driven" into "Kms Driven".
func prettyKey(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
