package valuation

import (
	"strings"

	"github.com/retrovault/retrovault/internal/model"
)

// Classifier maps free-form listing text to a condition bucket. The second
// return is false when the text gives no unambiguous signal. Keyword sets
// are category-specific; swapping the classifier is how other collectible
// categories plug in without touching the scoring or aggregation code.
type Classifier interface {
	Classify(text string) (model.ConditionBucket, bool)
	Matches(text string, bucket model.ConditionBucket) bool
}

// KeywordClassifier classifies by scanning for bucket-specific keywords.
// Single-word keywords must match a whole token ("new" must not fire on
// "newer"); multi-word keywords match as substrings.
type KeywordClassifier struct {
	keywords map[model.ConditionBucket][]string
}

// NewVideoGameClassifier returns the classifier tuned for video-game
// listing vocabulary.
func NewVideoGameClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		keywords: map[model.ConditionBucket][]string{
			model.BucketSealed: {
				"sealed", "factory sealed", "brand new", "new", "nib",
				"shrink wrapped", "shrinkwrapped", "unopened",
			},
			model.BucketComplete: {
				"cib", "complete", "complete in box", "with box",
				"with manual", "boxed", "box and manual",
			},
			model.BucketLoose: {
				"loose", "cart only", "cartridge only", "disc only",
				"game only", "no box", "no manual",
			},
		},
	}
}

// Matches reports whether any of the bucket's keywords appear in text.
func (k *KeywordClassifier) Matches(text string, bucket model.ConditionBucket) bool {
	lower := strings.ToLower(text)
	for _, kw := range k.keywords[bucket] {
		if containsKeyword(lower, kw) {
			return true
		}
	}
	return false
}

// Classify returns the single bucket whose keywords appear in text. When
// no bucket matches, or more than one does, the text is ambiguous and the
// second return is false.
func (k *KeywordClassifier) Classify(text string) (model.ConditionBucket, bool) {
	var found model.ConditionBucket
	var hits int
	for _, bucket := range []model.ConditionBucket{model.BucketSealed, model.BucketComplete, model.BucketLoose} {
		if k.Matches(text, bucket) {
			found = bucket
			hits++
		}
	}
	if hits != 1 {
		return model.BucketUnspecified, false
	}
	return found, true
}

// containsKeyword expects lower to already be lowercased. Multi-word
// keywords use substring matching; single words require a token match so
// that "new" doesn't fire inside titles like "Newer Super Mario".
func containsKeyword(lower, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(lower, keyword)
	}
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !isWordRune(r)
	}) {
		if tok == keyword {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	}
	return false
}

// FilterByCondition keeps comparables eligible for the target bucket.
//
// Decision order per comparable: a label match for the target bucket wins;
// a label that unambiguously signals a different bucket excludes; otherwise
// the title is checked the same way; if nothing can be determined the
// comparable is kept. The optimistic default assumes the provider already
// condition-scoped its results — deliberately looser than the neutral-0.5
// attribute prior in scoring, because exclusion here is destructive.
func FilterByCondition(comps []model.Comparable, target model.ConditionBucket, cls Classifier) []model.Comparable {
	if target == model.BucketUnspecified {
		return comps
	}

	kept := make([]model.Comparable, 0, len(comps))
	for _, c := range comps {
		if eligible(c, target, cls) {
			kept = append(kept, c)
		}
	}
	return kept
}

func eligible(c model.Comparable, target model.ConditionBucket, cls Classifier) bool {
	if c.ConditionLabel != "" {
		if cls.Matches(c.ConditionLabel, target) {
			return true
		}
		if bucket, ok := cls.Classify(c.ConditionLabel); ok && bucket != target {
			return false
		}
	}
	if cls.Matches(c.Name, target) {
		return true
	}
	if bucket, ok := cls.Classify(c.Name); ok && bucket != target {
		return false
	}
	return true
}
