package valuation

import (
	"math"
	"strconv"
	"strings"

	"github.com/retrovault/retrovault/internal/model"
)

// Similarity point budgets. Name and attribute sub-scores are each a ratio
// in [0,1] scaled to their budget; the sum is the 0-100 similarity.
const (
	namePoints = 40
	attrPoints = 60
)

// Attribute factor weights.
const (
	platformWeight  = 3.0
	conditionWeight = 2.0
	gradingWeight   = 2.0 // authority 1.5 + 0.5 bonus for exact grade digits
	regionWeight    = 1.0
)

// ScoreSimilarity rates how well a sale matches the target on a 0-100
// scale. Recency is scored separately; see RecencyWeight.
func ScoreSimilarity(c model.Comparable, target model.TargetItem, cls Classifier) int {
	name := nameSimilarity(target.Name, c.Name)
	attr := attributeSimilarity(c, target, cls)

	score := math.Round(name*namePoints + attr*attrPoints)
	return clampInt(int(score), 0, 100)
}

// nameSimilarity is the fraction of target title tokens found in the
// comparable title. Exact token matches score full credit, substring
// matches half. Tokens of one or two characters are noise and dropped.
func nameSimilarity(targetName, compName string) float64 {
	targetToks := titleTokens(targetName)
	compToks := titleTokens(compName)

	if len(targetToks) == 0 {
		// Nothing to match against; neutral rather than zero.
		return 0.5
	}

	var credit float64
	for _, tt := range targetToks {
		best := 0.0
		for _, ct := range compToks {
			switch {
			case tt == ct:
				best = 1.0
			case best < 0.5 && (strings.Contains(ct, tt) || strings.Contains(tt, ct)):
				best = 0.5
			}
			if best == 1.0 {
				break
			}
		}
		credit += best
	}
	return credit / float64(len(targetToks))
}

func titleTokens(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	toks := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			toks = append(toks, f)
		}
	}
	return toks
}

// attributeSimilarity accumulates achieved/possible across the factors
// that apply to this target. A target with no applicable factors scores a
// neutral 0.5 — unknown relevance, not zero relevance.
func attributeSimilarity(c model.Comparable, target model.TargetItem, cls Classifier) float64 {
	lowerName := strings.ToLower(c.Name)
	lowerBoth := lowerName + " " + strings.ToLower(c.ConditionLabel)

	var achieved, possible float64

	if target.Platform != "" {
		possible += platformWeight
		if containsKeyword(lowerName, strings.ToLower(target.Platform)) {
			achieved += platformWeight
		}
	}

	if target.Condition != model.BucketUnspecified {
		possible += conditionWeight
		if cls.Matches(lowerBoth, target.Condition) {
			achieved += conditionWeight
		}
	}

	if target.Graded() {
		possible += gradingWeight
		if containsKeyword(lowerName, strings.ToLower(target.GradingAuthority)) {
			achieved += 1.5
			if strings.Contains(lowerName, formatGrade(target.GradeValue)) {
				achieved += 0.5
			}
		}
	}

	if target.Region != "" {
		possible += regionWeight
		if containsKeyword(lowerName, strings.ToLower(target.Region)) {
			achieved += regionWeight
		}
	}

	if possible == 0 {
		return 0.5
	}
	return achieved / possible
}

// formatGrade renders a grade the way listings print it: "9.8", "9", "8.5".
func formatGrade(g float64) string {
	if g == math.Trunc(g) {
		return strconv.Itoa(int(g))
	}
	return strconv.FormatFloat(g, 'f', 1, 64)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
