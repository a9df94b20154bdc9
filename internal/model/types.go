package model

import "time"

// ConditionBucket classifies the physical state of a collectible game.
// An empty bucket means the caller didn't specify one; condition filtering
// is skipped in that case.
type ConditionBucket string

const (
	BucketUnspecified ConditionBucket = ""
	BucketSealed      ConditionBucket = "sealed"
	BucketComplete    ConditionBucket = "complete"
	BucketLoose       ConditionBucket = "loose"
)

// RawAuthority is the sentinel for an ungraded item. A TargetItem with
// GradingAuthority empty or equal to RawAuthority is treated as raw and
// its GradeValue is ignored.
const RawAuthority = "raw"

// TargetItem describes the game being valued.
// Add fields as you harden matching (publisher, variant flags, etc.).
type TargetItem struct {
	Category         string          `json:"category"` // single supported domain: "video-games"
	Name             string          `json:"name"`
	Platform         string          `json:"platform,omitempty"` // e.g. "NES", "PS2"
	Region           string          `json:"region,omitempty"`   // e.g. "NTSC", "PAL", "JP"
	Condition        ConditionBucket `json:"condition"`
	GradingAuthority string          `json:"grading_authority,omitempty"` // "WATA", "VGA", ... or RawAuthority
	GradeValue       float64         `json:"grade_value,omitempty"`       // open scale, e.g. 0-10 with fractional steps
	SealQuality      string          `json:"seal_quality,omitempty"`      // ordinal label, sealed+graded only
}

// Graded reports whether the item carries a professional grade.
func (t TargetItem) Graded() bool {
	return t.GradingAuthority != "" && t.GradingAuthority != RawAuthority
}

// Comparable is one observed market sale used as valuation evidence.
type Comparable struct {
	Name           string    `json:"name"`  // seller's listing title, unstructured
	Price          float64   `json:"price"` // positive, in the valuation currency
	SoldAt         time.Time `json:"sold_at"`
	Source         string    `json:"source"`                    // provenance, display only
	ConditionLabel string    `json:"condition_label,omitempty"` // free text, may contradict the title
}

// ScoredComparable is a Comparable plus derived weights. It is recomputed
// on every valuation call and never persisted.
type ScoredComparable struct {
	Comparable
	Similarity     int     // 0-100
	RecencyWeight  float64 // (0,1]
	EffectivePrice float64 // Price unless normalization alters it
}

// CombinedWeight is the product of similarity and recency, the weight a
// sale carries in the aggregate.
func (s ScoredComparable) CombinedWeight() float64 {
	return float64(s.Similarity) / 100 * s.RecencyWeight
}

// ConfidenceTier buckets the numeric confidence score for display.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// PriceRange is the 25th/50th/75th percentile spread of the sale prices
// that survived outlier rejection.
type PriceRange struct {
	Low    float64 `json:"low"`
	Median float64 `json:"median"`
	High   float64 `json:"high"`
}

// RollingAverages holds trailing-window weighted averages. A nil entry
// means no qualifying sale fell inside that window.
type RollingAverages struct {
	Days30  *float64 `json:"30d"`
	Days90  *float64 `json:"90d"`
	Days180 *float64 `json:"180d"`
}

// Adjustment records one multiplicative correction applied to the estimate.
type Adjustment struct {
	Kind       string  `json:"kind"`
	Multiplier float64 `json:"multiplier"`
	Rationale  string  `json:"rationale"`
}

// ValuationResult is the engine's sole output.
type ValuationResult struct {
	PointEstimate   int             `json:"point_estimate"` // rounded whole currency units
	Tier            ConfidenceTier  `json:"confidence_tier"`
	ConfidenceScore int             `json:"confidence_score"` // 0-100
	Range           PriceRange      `json:"range"`
	Rolling         RollingAverages `json:"rolling_averages"`
	Adjustments     []Adjustment    `json:"adjustments_applied,omitempty"`
	Methodology     string          `json:"methodology"`
	SampleSize      int             `json:"sample_size"`    // comparables that fed the estimate
	ExcludedCount   int             `json:"excluded_count"` // dropped by relevance + outlier gates
	Empty           bool            `json:"empty"`          // true when no usable comparables remained
	EmptyReason     string          `json:"empty_reason,omitempty"`
}
