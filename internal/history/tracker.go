// Package history keeps per-item valuation snapshots over time, so the
// tracker can show how an estimate drifts and how volatile a game's
// market is.
package history

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/retrovault/retrovault/internal/model"
)

// retention bounds how much history one item accumulates.
const retention = 365 * 24 * time.Hour

// Snapshot is one recorded valuation.
type Snapshot struct {
	Estimate   int                  `json:"estimate"`
	Confidence int                  `json:"confidence"`
	Tier       model.ConfidenceTier `json:"tier"`
	SampleSize int                  `json:"sample_size"`
	TakenAt    time.Time            `json:"taken_at"`
}

// Tracker is a file-backed store of snapshot series keyed by item id.
// Safe for concurrent use.
type Tracker struct {
	path string
	mu   sync.RWMutex
	data map[string][]Snapshot
}

// Open loads the tracker at path; a missing or unreadable file starts an
// empty history, since snapshots are derived data.
func Open(path string) *Tracker {
	t := &Tracker{
		path: path,
		data: make(map[string][]Snapshot),
	}

	raw, err := os.ReadFile(path)
	if err == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &t.data); err != nil {
			t.data = make(map[string][]Snapshot)
		}
	}
	return t
}

// Record appends a snapshot for the item and prunes anything older than
// the retention window. Empty valuations are not recorded; a gap says
// more than a zero.
func (t *Tracker) Record(itemID string, res model.ValuationResult, at time.Time) error {
	if res.Empty {
		return nil
	}

	snap := Snapshot{
		Estimate:   res.PointEstimate,
		Confidence: res.ConfidenceScore,
		Tier:       res.Tier,
		SampleSize: res.SampleSize,
		TakenAt:    at,
	}

	t.mu.Lock()
	series := append(t.data[itemID], snap)
	sort.Slice(series, func(i, j int) bool { return series[i].TakenAt.Before(series[j].TakenAt) })

	cutoff := at.Add(-retention)
	for len(series) > 0 && series[0].TakenAt.Before(cutoff) {
		series = series[1:]
	}
	t.data[itemID] = series
	t.mu.Unlock()

	return t.flush()
}

// Snapshots returns the item's series, oldest first.
func (t *Tracker) Snapshots(itemID string) []Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	series := t.data[itemID]
	out := make([]Snapshot, len(series))
	copy(out, series)
	return out
}

// Latest returns the most recent snapshot for the item.
func (t *Tracker) Latest(itemID string) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	series := t.data[itemID]
	if len(series) == 0 {
		return Snapshot{}, false
	}
	return series[len(series)-1], true
}

// Volatility is the coefficient of variation (population stddev over
// mean) of the item's estimates inside the trailing window, clamped to
// [0,1]. Fewer than two observations, or a zero mean, report 0.
func (t *Tracker) Volatility(itemID string, window time.Duration, now time.Time) float64 {
	t.mu.RLock()
	series := t.data[itemID]
	cutoff := now.Add(-window)
	var prices []float64
	for _, s := range series {
		if !s.TakenAt.Before(cutoff) {
			prices = append(prices, float64(s.Estimate))
		}
	}
	t.mu.RUnlock()

	if len(prices) < 2 {
		return 0
	}

	var sum float64
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(len(prices))
	if mean == 0 {
		return 0
	}

	var ss float64
	for _, p := range prices {
		d := p - mean
		ss += d * d
	}
	cv := math.Sqrt(ss/float64(len(prices))) / mean

	if cv > 1 {
		return 1
	}
	return cv
}

func (t *Tracker) flush() error {
	if dir := filepath.Dir(t.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}

	t.mu.RLock()
	data, err := json.MarshalIndent(t.data, "", "  ")
	t.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
