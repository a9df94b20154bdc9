package comps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"golang.org/x/time/rate"

	"github.com/retrovault/retrovault/internal/cache"
	"github.com/retrovault/retrovault/internal/model"
)

// minTitleSimilarity is the floor for accepting a product match from the
// API's search results. Below it we'd rather report no match than feed
// the engine sales for the wrong game.
const minTitleSimilarity = 0.4

// GameValueAPI pulls sold listings from the GameValue price API.
type GameValueAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *cache.Cache
	limiter *rate.Limiter
	ttl     time.Duration
}

// NewGameValueAPI builds the API provider. The cache may be nil.
func NewGameValueAPI(cfg Config, c *cache.Cache) *GameValueAPI {
	baseURL := cfg.GameValueBaseURL
	if baseURL == "" {
		baseURL = "https://api.gamevalue.app"
	}
	return &GameValueAPI{
		apiKey:  cfg.GameValueAPIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		cache:   c,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		ttl:     cfg.CacheTTL,
	}
}

func (p *GameValueAPI) Available() bool {
	return p != nil && p.apiKey != "" && p.apiKey != "test" && p.apiKey != "mock"
}

func (p *GameValueAPI) Name() string {
	return "GameValue"
}

// soldResponse is the API's search payload: candidate products, each with
// its recent sales. Prices arrive in cents.
type soldResponse struct {
	Products []struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Platform string `json:"platform"`
		Sales    []struct {
			Title       string `json:"title"`
			PriceCents  int64  `json:"price_cents"`
			SoldDate    string `json:"sold_date"` // "2006-01-02"
			Condition   string `json:"condition"`
			Marketplace string `json:"marketplace"`
		} `json:"sales"`
	} `json:"products"`
}

func (p *GameValueAPI) Search(ctx context.Context, q Query) ([]model.Comparable, error) {
	if !p.Available() {
		return nil, fmt.Errorf("GameValue provider not configured")
	}

	terms := searchTerms(q)
	cacheKey := cache.Key("gamevalue", "sold", terms)
	if p.cache != nil {
		var cached []model.Comparable
		if found, _ := p.cache.Get(cacheKey, &cached); found {
			return cached, nil
		}
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("q", terms)
	params.Set("include_sales", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/sold?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "retrovault/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload soldResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	comps, err := p.normalize(payload, q)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		_ = p.cache.Put(cacheKey, comps, p.ttl)
	}
	return comps, nil
}

// normalize picks the product whose title best matches the query and
// converts its sales. Sales with bad dates or non-positive prices are
// dropped at this boundary so the engine never sees them.
func (p *GameValueAPI) normalize(payload soldResponse, q Query) ([]model.Comparable, error) {
	bestIdx, bestSim := -1, 0.0
	for i, prod := range payload.Products {
		sim := titleSimilarity(q.Name, prod.Title)
		if sim > bestSim {
			bestIdx, bestSim = i, sim
		}
	}
	if bestIdx < 0 || bestSim < minTitleSimilarity {
		return nil, ErrNoMatch
	}

	prod := payload.Products[bestIdx]
	comps := make([]model.Comparable, 0, len(prod.Sales))
	for _, s := range prod.Sales {
		soldAt, err := time.Parse("2006-01-02", s.SoldDate)
		if err != nil {
			continue
		}
		if s.PriceCents <= 0 {
			continue
		}
		source := "GameValue"
		if s.Marketplace != "" {
			source = "GameValue/" + s.Marketplace
		}
		comps = append(comps, model.Comparable{
			Name:           s.Title,
			Price:          float64(s.PriceCents) / 100,
			SoldAt:         soldAt,
			Source:         source,
			ConditionLabel: s.Condition,
		})
	}
	return comps, nil
}

// titleSimilarity is a normalized edit-distance ratio in [0,1].
func titleSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.9
	}
	dist := levenshtein.ComputeDistance(a, b)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	sim := 1 - float64(dist)/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}
