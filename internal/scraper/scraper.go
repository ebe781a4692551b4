package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	colly "github.com/gocolly/colly/v2"
	"golang.org/x/net/html/charset"

	"car-rag-platform/internal/logger"
	"car-rag-platform/models"
)

var httpTransport = &http.Transport{
	DisableCompression: false, // enables gzip decompression
}

// Config holds settings for one scrape run.
type Config struct {
	BaseURL   string // search URL without the page suffix
	StartPage int
	MaxPages  int
	Timeout   time.Duration
	// Optional JS rendering for detail pages the static fetch can't parse
	RenderJS      bool
	RenderTimeout time.Duration
}

// ListingSink receives every successfully parsed listing.
type ListingSink func(ctx context.Context, l models.Listing) error

// Scraper walks cartrade search result pages, follows listing cards to their
// detail pages and hands parsed listings to the sink.
type Scraper struct {
	cfg  Config
	sink ListingSink
}

func NewScraper(cfg Config, sink ListingSink) *Scraper {
	if cfg.StartPage <= 0 {
		cfg.StartPage = 1
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Scraper{cfg: cfg, sink: sink}
}

// Run scrapes up to MaxPages search pages. Failures on individual listings
// are logged and skipped; the run only fails when no page yields anything.
func (s *Scraper) Run(ctx context.Context) (int, error) {
	c := s.newCollector()

	var (
		mu    sync.Mutex
		saved int
	)

	// Listing cards on the search result pages link to detail pages.
	c.OnHTML("ul.cards li > a[href], li.card a.card-link[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || !strings.Contains(link, "/second-hand/") {
			return
		}
		if err := e.Request.Visit(link); err != nil && err != colly.ErrAlreadyVisited {
			logger.Debug("Skipping card link", "url", link, "error", err)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		decodeBody(r)
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		if !isDetailPage(e.Request.URL.Path) {
			return
		}
		doc := goquery.NewDocumentFromNode(e.DOM.Get(0))
		listing := ParseListingPage(doc, e.Request.URL.String())
		if listing.CarName == "" {
			if !s.cfg.RenderJS {
				logger.Warn("Detail page missing car name, skipping", "url", e.Request.URL.String())
				return
			}
			rendered, err := s.renderPage(ctx, e.Request.URL.String())
			if err != nil {
				logger.Warn("JS render failed", "url", e.Request.URL.String(), "error", err)
				return
			}
			listing = rendered
			if listing.CarName == "" {
				return
			}
		}

		if err := s.sink(ctx, listing); err != nil {
			logger.Error("Sink rejected listing", "url", listing.URL, "error", err)
			return
		}
		mu.Lock()
		saved++
		mu.Unlock()
		logger.Info("Scraped listing", "name", listing.CarName, "url", listing.URL)
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Warn("Request failed", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	for page := s.cfg.StartPage; page < s.cfg.StartPage+s.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		pageURL := fmt.Sprintf("%s/page-%d/", strings.TrimSuffix(s.cfg.BaseURL, "/"), page)
		if err := c.Visit(pageURL); err != nil {
			logger.Warn("Search page visit failed", "url", pageURL, "error", err)
		}
	}

	c.Wait()

	if saved == 0 {
		return 0, fmt.Errorf("scrape produced no listings")
	}
	return saved, nil
}

func (s *Scraper) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.Async(true),
		colly.MaxDepth(2),
	)
	c.WithTransport(httpTransport)
	c.SetRequestTimeout(s.cfg.Timeout)
	c.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		Delay:       2 * time.Second,
		RandomDelay: 1 * time.Second,
	})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		r.Headers.Set("Accept-Encoding", "gzip, deflate, br")
		r.Headers.Set("Upgrade-Insecure-Requests", "1")
	})

	return c
}

// decodeBody handles brotli and charset conversion. gzip is already handled
// by the HTTP transport; brotli is not, so it is decompressed by hand.
func decodeBody(r *colly.Response) {
	contentType := r.Headers.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml+xml") {
		return
	}

	var bodyReader io.Reader = bytes.NewReader(r.Body)
	if strings.Contains(r.Headers.Get("Content-Encoding"), "br") {
		if decompressed, err := io.ReadAll(brotli.NewReader(bodyReader)); err == nil {
			r.Body = decompressed
			bodyReader = bytes.NewReader(decompressed)
		}
	}

	if len(r.Body) > 0 {
		if utf8Reader, err := charset.NewReader(bodyReader, contentType); err == nil {
			if decoded, err := io.ReadAll(utf8Reader); err == nil && len(decoded) > 0 {
				r.Body = decoded
			}
		}
	}
}

// isDetailPage distinguishes listing detail URLs from search result pages,
// which both live under /second-hand/.
func isDetailPage(path string) bool {
	return strings.Contains(path, "/second-hand/") &&
		!strings.Contains(path, "/page-") &&
		strings.Count(strings.Trim(path, "/"), "/") >= 2
}
