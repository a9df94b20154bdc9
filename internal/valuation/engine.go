// Package valuation turns a noisy set of market sale records into a single
// price estimate with a confidence score and an explanation. The pipeline
// is pure and deterministic for a fixed "now": condition filter, similarity
// scoring, recency weighting, outlier rejection, weighted aggregation,
// grade adjustment, confidence. Safe for concurrent use; every call is
// stateless apart from its parameters.
package valuation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/retrovault/retrovault/internal/model"
)

// Empty-result reasons. These surface in ValuationResult.EmptyReason so a
// caller can tell "worthless" apart from "no evidence".
const (
	ReasonNoData      = "no sale data available"
	ReasonNoCondition = "no comparables matched the target condition"
	ReasonNoRelevant  = "no sufficiently similar comparables"
)

// Engine runs valuations. Construct with New; the zero value has no
// classifier or policy and will not work.
type Engine struct {
	cfg Config
	cls Classifier
}

// New returns an engine using the video-game keyword classifier. Use
// NewWithClassifier to supply keyword sets for another collectible
// category.
func New(cfg Config) *Engine {
	return NewWithClassifier(cfg, NewVideoGameClassifier())
}

// NewWithClassifier returns an engine with a caller-supplied condition
// classifier.
func NewWithClassifier(cfg Config, cls Classifier) *Engine {
	return &Engine{cfg: cfg, cls: cls}
}

// Value estimates the target's current market value from the given sale
// records. now is injected rather than read from the clock so results are
// reproducible. The input slice is not mutated.
//
// Malformed-but-well-typed input degrades instead of failing: records with
// non-positive or non-finite prices are skipped, and an input that filters
// down to nothing yields an explicit empty result, never a fabricated
// price.
func (e *Engine) Value(target model.TargetItem, comps []model.Comparable, now time.Time) model.ValuationResult {
	if len(comps) == 0 {
		return emptyResult(ReasonNoData)
	}

	eligible := FilterByCondition(sanitize(comps), target.Condition, e.cls)
	if len(eligible) == 0 {
		reason := ReasonNoData
		if target.Condition != model.BucketUnspecified {
			reason = fmt.Sprintf("%s (%s)", ReasonNoCondition, target.Condition)
		}
		return emptyResult(reason)
	}

	scored := make([]model.ScoredComparable, 0, len(eligible))
	for _, c := range eligible {
		scored = append(scored, model.ScoredComparable{
			Comparable:     c,
			Similarity:     ScoreSimilarity(c, target, e.cls),
			RecencyWeight:  e.cfg.RecencyWeight(c.SoldAt, now),
			EffectivePrice: c.Price,
		})
	}

	relevant := scored[:0:0]
	for _, s := range scored {
		if s.Similarity >= e.cfg.RelevanceFloor {
			relevant = append(relevant, s)
		}
	}
	if len(relevant) == 0 {
		return emptyResult(ReasonNoRelevant)
	}

	kept := e.cfg.RejectOutliers(relevant)
	excluded := len(scored) - len(kept)

	rolling := RollingAverages(kept, now)
	estimate := WeightedAverage(kept)

	var adjustments []model.Adjustment
	if target.Graded() {
		factor := e.cfg.multiplierFor(target.GradeValue) / e.cfg.multiplierFor(e.cfg.BaselineGrade)
		if factor != 1 {
			estimate *= factor
			adjustments = append(adjustments, model.Adjustment{
				Kind:       "grade",
				Multiplier: factor,
				Rationale: fmt.Sprintf("%s %s vs %s baseline",
					target.GradingAuthority, formatGrade(target.GradeValue), formatGrade(e.cfg.BaselineGrade)),
			})
		}
	}

	tier, score := e.cfg.EstimateConfidence(kept)

	return model.ValuationResult{
		PointEstimate:   int(math.Round(estimate)),
		Tier:            tier,
		ConfidenceScore: score,
		Range:           Range(kept),
		Rolling:         rolling,
		Adjustments:     adjustments,
		Methodology:     methodology(len(kept), excluded, target, adjustments),
		SampleSize:      len(kept),
		ExcludedCount:   excluded,
	}
}

// sanitize drops records the engine cannot do arithmetic on. Providers own
// date validation; prices are re-checked here because a NaN would poison
// every aggregate it touches.
func sanitize(comps []model.Comparable) []model.Comparable {
	clean := make([]model.Comparable, 0, len(comps))
	for _, c := range comps {
		if c.Price <= 0 || math.IsNaN(c.Price) || math.IsInf(c.Price, 0) {
			continue
		}
		if c.SoldAt.IsZero() {
			continue
		}
		clean = append(clean, c)
	}
	return clean
}

func methodology(sampleSize, excluded int, target model.TargetItem, adjustments []model.Adjustment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimated from %d comparable sales", sampleSize)
	if excluded > 0 {
		fmt.Fprintf(&b, " (%d excluded as low-relevance or price outliers)", excluded)
	}
	if target.Condition != model.BucketUnspecified {
		fmt.Fprintf(&b, ", condition %s", target.Condition)
	}
	for _, a := range adjustments {
		fmt.Fprintf(&b, "; %s adjustment x%.2f (%s)", a.Kind, a.Multiplier, a.Rationale)
	}
	b.WriteString(".")
	return b.String()
}

func emptyResult(reason string) model.ValuationResult {
	return model.ValuationResult{
		Tier:        model.ConfidenceLow,
		Empty:       true,
		EmptyReason: reason,
		Methodology: "No estimate: " + reason + ".",
	}
}
