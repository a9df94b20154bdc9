package valuation

import (
	"time"

	"github.com/retrovault/retrovault/internal/model"
)

// rollingWindows are the trailing horizons, in days, reported on every
// valuation.
var rollingWindows = [3]int{30, 90, 180}

// WeightedAverage combines prices by similarity x recency weight. When
// every weight is zero the similarity and decay signals carry no
// information, so the plain arithmetic mean stands in — never a division
// by zero.
func WeightedAverage(scored []model.ScoredComparable) float64 {
	if len(scored) == 0 {
		return 0
	}

	var weightedSum, totalWeight float64
	for _, s := range scored {
		w := s.CombinedWeight()
		weightedSum += s.EffectivePrice * w
		totalWeight += w
	}

	if totalWeight == 0 {
		var sum float64
		for _, s := range scored {
			sum += s.EffectivePrice
		}
		return sum / float64(len(scored))
	}
	return weightedSum / totalWeight
}

// RollingAverages computes the weighted average within each trailing
// window. A window with no qualifying sale, or only zero-weight sales,
// reports nil rather than zero.
func RollingAverages(scored []model.ScoredComparable, now time.Time) model.RollingAverages {
	var out [3]*float64
	for i, days := range rollingWindows {
		cutoff := now.AddDate(0, 0, -days)

		var weightedSum, totalWeight float64
		var any bool
		for _, s := range scored {
			if s.SoldAt.Before(cutoff) {
				continue
			}
			any = true
			w := s.CombinedWeight()
			weightedSum += s.EffectivePrice * w
			totalWeight += w
		}
		if !any || totalWeight == 0 {
			continue
		}
		avg := weightedSum / totalWeight
		out[i] = &avg
	}
	return model.RollingAverages{Days30: out[0], Days90: out[1], Days180: out[2]}
}

// Range reports the 25th/50th/75th nearest-rank percentiles of the
// post-outlier prices.
func Range(scored []model.ScoredComparable) model.PriceRange {
	if len(scored) == 0 {
		return model.PriceRange{}
	}
	prices := make([]float64, len(scored))
	for i, s := range scored {
		prices[i] = s.EffectivePrice
	}
	sorted := sortedCopy(prices)
	return model.PriceRange{
		Low:    percentile(sorted, 25),
		Median: percentile(sorted, 50),
		High:   percentile(sorted, 75),
	}
}
