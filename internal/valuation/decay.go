package valuation

import "time"

// RecencyWeight converts a sale's age into a multiplicative weight in
// (0,1] using the configured anchor curve: exact anchor ages return the
// anchor weight, ages between anchors interpolate linearly, and ages past
// the last anchor clamp to its weight. Future-dated sales count as age 0.
func (c Config) RecencyWeight(soldAt, now time.Time) float64 {
	anchors := c.DecayAnchors
	if len(anchors) == 0 {
		return 1.0
	}

	ageDays := now.Sub(soldAt).Hours() / 24
	if ageDays <= anchors[0].Days {
		return anchors[0].Weight
	}

	for i := 1; i < len(anchors); i++ {
		prev, next := anchors[i-1], anchors[i]
		if ageDays <= next.Days {
			span := next.Days - prev.Days
			if span == 0 {
				return next.Weight
			}
			frac := (ageDays - prev.Days) / span
			return prev.Weight + frac*(next.Weight-prev.Weight)
		}
	}

	return anchors[len(anchors)-1].Weight
}
