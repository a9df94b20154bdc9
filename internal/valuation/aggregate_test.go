package valuation

import (
	"math"
	"testing"
	"time"

	"github.com/retrovault/retrovault/internal/model"
)

func TestWeightedAverage(t *testing.T) {
	scored := []model.ScoredComparable{
		{Similarity: 100, RecencyWeight: 1.0, EffectivePrice: 100}, // weight 1.0
		{Similarity: 50, RecencyWeight: 0.5, EffectivePrice: 200},  // weight 0.25
	}

	// (100*1.0 + 200*0.25) / 1.25 = 150/1.25 = 120.
	got := WeightedAverage(scored)
	if math.Abs(got-120) > 1e-9 {
		t.Errorf("Expected weighted average 120, got %v", got)
	}
}

func TestWeightedAverage_ZeroWeightFallsBackToMean(t *testing.T) {
	scored := []model.ScoredComparable{
		{Similarity: 0, RecencyWeight: 1.0, EffectivePrice: 10},
		{Similarity: 0, RecencyWeight: 1.0, EffectivePrice: 30},
	}

	got := WeightedAverage(scored)
	if got != 20 {
		t.Errorf("Expected unweighted mean 20, got %v", got)
	}
}

func TestWeightedAverage_Empty(t *testing.T) {
	if got := WeightedAverage(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %v", got)
	}
}

func TestRollingAverages_Windows(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mk := func(daysAgo int, price float64) model.ScoredComparable {
		return model.ScoredComparable{
			Comparable:     model.Comparable{SoldAt: now.AddDate(0, 0, -daysAgo)},
			Similarity:     100,
			RecencyWeight:  1.0,
			EffectivePrice: price,
		}
	}

	scored := []model.ScoredComparable{
		mk(10, 100), // inside 30/90/180
		mk(60, 200), // inside 90/180
		mk(150, 300), // inside 180 only
	}

	rolling := RollingAverages(scored, now)

	if rolling.Days30 == nil || *rolling.Days30 != 100 {
		t.Errorf("30d window: want 100, got %v", rolling.Days30)
	}
	if rolling.Days90 == nil || *rolling.Days90 != 150 {
		t.Errorf("90d window: want 150, got %v", rolling.Days90)
	}
	if rolling.Days180 == nil || *rolling.Days180 != 200 {
		t.Errorf("180d window: want 200, got %v", rolling.Days180)
	}
}

func TestRollingAverages_EmptyWindowIsNil(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	scored := []model.ScoredComparable{
		{
			Comparable:     model.Comparable{SoldAt: now.AddDate(0, 0, -120)},
			Similarity:     100,
			RecencyWeight:  1.0,
			EffectivePrice: 50,
		},
	}

	rolling := RollingAverages(scored, now)
	if rolling.Days30 != nil || rolling.Days90 != nil {
		t.Error("Expected nil for windows with no qualifying sales")
	}
	if rolling.Days180 == nil || *rolling.Days180 != 50 {
		t.Errorf("180d window: want 50, got %v", rolling.Days180)
	}
}

func TestRange_NearestRank(t *testing.T) {
	// n=5, sorted {38,40,41,42,45}:
	// p25 rank ceil(1.25)=2 -> 40
	// p50 rank ceil(2.5)=3  -> 41
	// p75 rank ceil(3.75)=4 -> 42
	got := Range(scoredAt(40, 42, 38, 45, 41))
	want := model.PriceRange{Low: 40, Median: 41, High: 42}
	if got != want {
		t.Errorf("Range = %+v, want %+v", got, want)
	}
}

func TestRange_SingleSale(t *testing.T) {
	got := Range(scoredAt(99))
	if got.Low != 99 || got.Median != 99 || got.High != 99 {
		t.Errorf("Expected all percentiles 99, got %+v", got)
	}
}

func TestRange_Ordering(t *testing.T) {
	sets := [][]float64{
		{1, 2},
		{5, 5, 5},
		{10, 3, 7, 90, 2, 44},
		{100, 1},
	}
	for _, prices := range sets {
		r := Range(scoredAt(prices...))
		if r.Low > r.Median || r.Median > r.High {
			t.Errorf("range out of order for %v: %+v", prices, r)
		}
	}
}
