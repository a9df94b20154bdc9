package comps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const soldTable = `<html><body>
<table class="sold-listings">
<tbody>
<tr>
  <td class="title">Super Mario Bros. NES CIB</td>
  <td class="price">$42.50</td>
  <td class="date">2026-05-20</td>
  <td class="condition">complete</td>
</tr>
<tr>
  <td class="title">Super Mario Bros. sealed</td>
  <td class="price">$1,250.00</td>
  <td class="date">May 12, 2026</td>
  <td class="condition"></td>
</tr>
<tr>
  <td class="title">junk row, no price</td>
  <td class="price"></td>
  <td class="date">2026-05-01</td>
  <td class="condition"></td>
</tr>
<tr>
  <td class="title">junk row, bad date</td>
  <td class="price">$10.00</td>
  <td class="date">last week</td>
  <td class="condition"></td>
</tr>
</tbody>
</table>
</body></html>`

func TestParseSoldRows(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(soldTable))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	comps := parseSoldRows(doc)
	if len(comps) != 2 {
		t.Fatalf("Expected 2 rows parsed, got %d", len(comps))
	}

	if comps[0].Price != 42.50 {
		t.Errorf("Expected price 42.50, got %v", comps[0].Price)
	}
	if comps[0].ConditionLabel != "complete" {
		t.Errorf("Expected condition label, got %q", comps[0].ConditionLabel)
	}

	// Thousands separator and long-form date both parse.
	if comps[1].Price != 1250.00 {
		t.Errorf("Expected price 1250.00, got %v", comps[1].Price)
	}
	want := time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC)
	if comps[1].SoldAt != want {
		t.Errorf("Expected sold date %v, got %v", want, comps[1].SoldAt)
	}
}

func TestScraper_Search(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(soldTable))
	}))
	defer srv.Close()

	cfg := Config{ScraperBaseURL: srv.URL}.withDefaults()
	cfg.RatePerSec = 1000
	s := NewSoldListingsScraper(cfg, nil)

	comps, err := s.Search(context.Background(), Query{Name: "Super Mario Bros."})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotPath != "/sold" {
		t.Errorf("Expected /sold path, got %q", gotPath)
	}
	if len(comps) != 2 {
		t.Errorf("Expected 2 comparables, got %d", len(comps))
	}
	for _, c := range comps {
		if c.Source != "scrape" {
			t.Errorf("Expected scrape source, got %q", c.Source)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$42.50", 42.50, true},
		{"$1,250.00", 1250, true},
		{"99", 99, true},
		{"", 0, false},
		{"free", 0, false},
		{"$-5.00", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePrice(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parsePrice(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
