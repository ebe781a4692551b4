package services

import (
	"fmt"
	"strings"

	"car-rag-platform/models"
	"car-rag-platform/utils"
)

// NoContextMessage is the sentinel block used when retrieval found nothing.
const NoContextMessage = "No relevant car information found."

// FormatContext renders retrieved contexts into one prompt-ready block. It is
// a pure function of its input: same records in, byte-identical block out.
// Records render in input order, which is the index's relevance ranking.
func FormatContext(contexts []models.ContextRecord) string {
	if len(contexts) == 0 {
		return NoContextMessage
	}

	var b strings.Builder
	b.WriteString("RELEVANT CAR LISTINGS:\n\n")

	for i, ctx := range contexts {
		m := ctx.Metadata
		fmt.Fprintf(&b, "[CAR %d] %s\n", i+1, valueOr(m.CarName, "Unknown"))
		fmt.Fprintf(&b, "Price: %s\n", utils.CleanPrice(valueOr(m.Price, "Price not available")))
		fmt.Fprintf(&b, "Location: %s\n", valueOr(m.City, "Not specified"))
		fmt.Fprintf(&b, "Fuel Type: %s\n", valueOr(m.FuelType, "Not specified"))
		fmt.Fprintf(&b, "Year: %s\n", valueOr(m.ManufacturingYear, "Not specified"))
		fmt.Fprintf(&b, "Listing URL: %s\n", valueOr(m.URL, "Not available"))
		fmt.Fprintf(&b, "Details: %s\n\n", ctx.Content)
	}

	return b.String()
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
