package valuation

import (
	"math"

	"github.com/retrovault/retrovault/internal/model"
)

// minOutlierSample is the smallest set worth running statistics on.
// Below it the filter is a no-op.
const minOutlierSample = 4

// RejectOutliers drops sales whose effective price sits more than
// OutlierSigma population standard deviations from the sample mean. A
// fixed two-sided gate, not adaptive. With fewer than four samples, or a
// degenerate zero-spread sample, everything is kept.
func (c Config) RejectOutliers(scored []model.ScoredComparable) []model.ScoredComparable {
	if len(scored) < minOutlierSample {
		return scored
	}

	prices := make([]float64, len(scored))
	for i, s := range scored {
		prices[i] = s.EffectivePrice
	}

	m := mean(prices)
	sd := popStdDev(prices, m)
	if sd == 0 {
		return scored
	}

	limit := c.OutlierSigma * sd
	kept := make([]model.ScoredComparable, 0, len(scored))
	for _, s := range scored {
		if math.Abs(s.EffectivePrice-m) <= limit {
			kept = append(kept, s)
		}
	}
	return kept
}
