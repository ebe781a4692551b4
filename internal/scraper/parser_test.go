package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailPageHTML = `
<html><body>
  <div class="vehicle-title"><h1>2019 Honda City VX CVT</h1></div>
  <div class="vehicle-price">₹ 8.2 Lakh</div>
  <table class="v_table">
    <tr><td>Manufacturing Year:</td><td>2019</td></tr>
    <tr><td>Kms Driven</td><td>34,000 kms</td></tr>
    <tr><td>Fuel Type</td><td>Petrol</td></tr>
    <tr><td>City</td><td>Delhi</td></tr>
    <tr><td></td><td>orphan value</td></tr>
    <tr><td colspan="2">Contact seller for more information</td></tr>
  </table>
  <div class="seller-remarks">Single owner, well maintained.</div>
</body></html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseListingPage(t *testing.T) {
	doc := parseDoc(t, detailPageHTML)
	listing := ParseListingPage(doc, "https://www.cartrade.com/second-hand/honda-city-123")

	assert.Equal(t, "2019 Honda City VX CVT", listing.CarName)
	assert.Equal(t, "₹ 8.2 Lakh", listing.Price)
	assert.Equal(t, "https://www.cartrade.com/second-hand/honda-city-123", listing.URL)
	assert.Equal(t, "Single owner, well maintained.", listing.SellerRemarks)

	assert.Equal(t, map[string]string{
		"manufacturing_year": "2019",
		"kms_driven":         "34,000 kms",
		"fuel_type":          "Petrol",
		"city":               "Delhi",
	}, listing.Details)
}

func TestParseListingPage_FallbackSelectors(t *testing.T) {
	html := `<html><body>
	  <h1>Maruti Swift VXI</h1>
	  <span class="price">₹ 4.5 Lakh</span>
	</body></html>`

	listing := ParseListingPage(parseDoc(t, html), "https://example.com/swift")
	assert.Equal(t, "Maruti Swift VXI", listing.CarName)
	assert.Equal(t, "₹ 4.5 Lakh", listing.Price)
	assert.Empty(t, listing.Details)
}

func TestParseListingPage_EmptyPage(t *testing.T) {
	listing := ParseListingPage(parseDoc(t, "<html><body></body></html>"), "https://example.com/x")
	assert.Empty(t, listing.CarName)
	assert.Empty(t, listing.Price)
	assert.Empty(t, listing.Details)
}

func TestCleanLabel(t *testing.T) {
	assert.Equal(t, "kms_driven", cleanLabel(" Kms Driven: "))
	assert.Equal(t, "fuel_type", cleanLabel("Fuel Type"))
	assert.Equal(t, "city", cleanLabel("CITY"))
}
