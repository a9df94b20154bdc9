package comps

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	"github.com/retrovault/retrovault/internal/cache"
	"github.com/retrovault/retrovault/internal/model"
)

const scraperUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// soldDateFormats covers the date renderings seen on sold-listing pages.
var soldDateFormats = []string{
	"2006-01-02",
	"Jan 2, 2006",
	"01/02/2006",
}

// SoldListingsScraper scrapes completed-sale tables from a price-history
// site. It is the fallback when no API key is configured.
type SoldListingsScraper struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
	limiter *rate.Limiter
	ttl     time.Duration
}

// NewSoldListingsScraper builds the scraper provider. The cache may be nil.
func NewSoldListingsScraper(cfg Config, c *cache.Cache) *SoldListingsScraper {
	return &SoldListingsScraper{
		baseURL: strings.TrimRight(cfg.ScraperBaseURL, "/"),
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		cache:   c,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		ttl:     cfg.CacheTTL,
	}
}

func (s *SoldListingsScraper) Available() bool {
	return s != nil && s.baseURL != ""
}

func (s *SoldListingsScraper) Name() string {
	return "SoldListingsScraper"
}

func (s *SoldListingsScraper) Search(ctx context.Context, q Query) ([]model.Comparable, error) {
	if !s.Available() {
		return nil, fmt.Errorf("scraper not configured")
	}

	terms := searchTerms(q)
	cacheKey := cache.Key("scrape", "sold", terms)
	if s.cache != nil {
		var cached []model.Comparable
		if found, _ := s.cache.Get(cacheKey, &cached); found {
			return cached, nil
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	doc, err := s.fetch(ctx, s.baseURL+"/sold?q="+url.QueryEscape(terms))
	if err != nil {
		return nil, err
	}

	comps := parseSoldRows(doc)
	if s.cache != nil {
		_ = s.cache.Put(cacheKey, comps, s.ttl)
	}
	return comps, nil
}

// fetch downloads and parses one page, handling gzip and brotli encodings.
func (s *SoldListingsScraper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", scraperUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	var reader io.Reader
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		reader = resp.Body
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// parseSoldRows extracts sales from the completed-listings table. Rows
// missing a price or carrying an unparsable date are skipped; a partial
// table is still useful.
func parseSoldRows(doc *goquery.Document) []model.Comparable {
	var comps []model.Comparable

	doc.Find("table.sold-listings tbody tr").Each(func(_ int, row *goquery.Selection) {
		title := strings.TrimSpace(row.Find("td.title").Text())
		priceText := strings.TrimSpace(row.Find("td.price").Text())
		dateText := strings.TrimSpace(row.Find("td.date").Text())
		condition := strings.TrimSpace(row.Find("td.condition").Text())

		price, ok := parsePrice(priceText)
		if !ok || title == "" {
			return
		}
		soldAt, ok := parseSoldDate(dateText)
		if !ok {
			return
		}

		comps = append(comps, model.Comparable{
			Name:           title,
			Price:          price,
			SoldAt:         soldAt,
			Source:         "scrape",
			ConditionLabel: condition,
		})
	})

	return comps
}

// parsePrice reads "$1,234.56" style amounts.
func parsePrice(text string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(text)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseSoldDate(text string) (time.Time, bool) {
	for _, layout := range soldDateFormats {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
