package valuation

import (
	"math"

	"github.com/retrovault/retrovault/internal/model"
)

// Confidence contribution caps. Sample size can earn at most 40 points
// (8 per comparable), match quality 40, freshness 20.
const (
	countPointsPer = 8
	countPointsCap = 40
	simPointsMax   = 40
	recencyPoints  = 20
)

// EstimateConfidence derives the tier and 0-100 score from the sales that
// fed the estimate. Callers must not pass an empty slice; the orchestrator
// short-circuits to an empty result before reaching this point.
func (c Config) EstimateConfidence(scored []model.ScoredComparable) (model.ConfidenceTier, int) {
	count := len(scored)

	var simSum, recSum float64
	for _, s := range scored {
		simSum += float64(s.Similarity)
		recSum += s.RecencyWeight
	}
	avgSim := simSum / float64(count)
	avgRec := recSum / float64(count)

	raw := math.Min(float64(count*countPointsPer), countPointsCap) +
		avgSim/100*simPointsMax +
		avgRec*recencyPoints
	score := clampInt(int(math.Round(raw)), 0, 100)

	// High checked before medium; both gates need count and quality.
	tier := model.ConfidenceLow
	switch {
	case count >= c.HighTier.MinCount && avgSim >= c.HighTier.MinAvgSimilarity:
		tier = model.ConfidenceHigh
	case count >= c.MediumTier.MinCount && avgSim >= c.MediumTier.MinAvgSimilarity:
		tier = model.ConfidenceMedium
	}

	return tier, score
}
