package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"car-rag-platform/models"
)

// ParseListingPage extracts one listing from a detail page. Selector lists
// run most-specific first; markup on older listing pages differs slightly.
func ParseListingPage(doc *goquery.Document, pageURL string) models.Listing {
	listing := models.Listing{
		URL:     pageURL,
		Details: make(map[string]string),
	}

	nameSelectors := []string{
		"div.vehicle-title h1",
		"h1.car-name",
		"h1[itemprop='name']",
		"h1",
	}
	for _, selector := range nameSelectors {
		if name := strings.TrimSpace(doc.Find(selector).First().Text()); name != "" {
			listing.CarName = name
			break
		}
	}

	priceSelectors := []string{
		"div.vehicle-price",
		".price-value",
		"[itemprop='price']",
		".price",
	}
	for _, selector := range priceSelectors {
		if price := strings.TrimSpace(doc.Find(selector).First().Text()); price != "" {
			listing.Price = price
			break
		}
	}

	// Specification table: label/value cell pairs, footer rows use colspan.
	doc.Find("table.v_table tr, table.spec-table tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("td[colspan]").Length() > 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := cleanLabel(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(1).Text())
		if label != "" && value != "" {
			listing.Details[label] = value
		}
	})

	remarksSelectors := []string{
		"div.seller-remarks",
		"#seller_remarks",
		".remarks",
	}
	for _, selector := range remarksSelectors {
		if remarks := strings.TrimSpace(doc.Find(selector).First().Text()); remarks != "" {
			listing.SellerRemarks = remarks
			break
		}
	}

	return listing
}

// cleanLabel normalizes a specification label like "Kms Driven" to
// "kms_driven" so detail keys are stable across pages.
func cleanLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.TrimSuffix(label, ":")
	return strings.ReplaceAll(label, " ", "_")
}
