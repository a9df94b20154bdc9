package valuation

// DecayAnchor pairs a sale age in days with the weight applied at exactly
// that age. Weights between anchors are linearly interpolated.
type DecayAnchor struct {
	Days   float64
	Weight float64
}

// GradeStep maps a minimum grade to the market multiplier observed for
// sales at or above that grade. Steps must be sorted descending by Min.
type GradeStep struct {
	Min        float64
	Multiplier float64
}

// TierRule is one confidence-tier gate: both minimums must hold.
type TierRule struct {
	MinCount         int
	MinAvgSimilarity float64
}

// Config carries the engine's policy knobs. The zero value is not usable;
// start from DefaultConfig and override what you need.
type Config struct {
	// OutlierSigma is the two-sided z-score gate width. Sales further than
	// OutlierSigma standard deviations from the mean are dropped.
	OutlierSigma float64

	// BaselineGrade is the grade a typical graded sale is assumed to carry.
	// Grade adjustments are expressed relative to this baseline's multiplier.
	BaselineGrade float64

	// RelevanceFloor drops comparables scoring below this similarity before
	// any statistics run, independent of the outlier gate.
	RelevanceFloor int

	DecayAnchors []DecayAnchor
	GradeSteps   []GradeStep

	HighTier   TierRule
	MediumTier TierRule
}

// DefaultConfig returns the reference policy. The decay anchors, grade
// steps, and tier thresholds here are what every documented behavior and
// test vector assumes.
func DefaultConfig() Config {
	return Config{
		OutlierSigma:   2.0,
		BaselineGrade:  8.5,
		RelevanceFloor: 20,
		DecayAnchors: []DecayAnchor{
			{0, 1.00},
			{7, 0.95},
			{14, 0.90},
			{30, 0.85},
			{60, 0.70},
			{90, 0.55},
			{180, 0.35},
			{365, 0.15},
		},
		GradeSteps: []GradeStep{
			{9.8, 5.0},
			{9.6, 2.5},
			{9.4, 1.8},
			{9.2, 1.5},
			{9.0, 1.3},
			{8.5, 1.0},
			{8.0, 0.85},
			{7.0, 0.70},
			{0, 0.50},
		},
		HighTier:   TierRule{MinCount: 5, MinAvgSimilarity: 70},
		MediumTier: TierRule{MinCount: 3, MinAvgSimilarity: 50},
	}
}

// multiplierFor selects the step with the highest Min that is <= grade.
// Grades below every step fall through to the last step's multiplier.
func (c Config) multiplierFor(grade float64) float64 {
	for _, step := range c.GradeSteps {
		if grade >= step.Min {
			return step.Multiplier
		}
	}
	if len(c.GradeSteps) == 0 {
		return 1.0
	}
	return c.GradeSteps[len(c.GradeSteps)-1].Multiplier
}
