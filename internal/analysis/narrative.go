package analysis

import (
	"math"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
)

// Presentation constants. Kept literal, they are tuning values without derivation.
const (
	GoldenRatio          = 1.618
	GoldenRatioTolerance = 0.1
	SymmetryTopTierBelow = 1.5
	SymmetryMidTierBelow = 3.0
)

// Tier is the symmetry bucket of a score
type Tier int

const (
	TierTop Tier = iota
	TierMid
	TierLow
)

func (t Tier) String() string {
	switch t {
	case TierTop:
		return "top"
	case TierMid:
		return "mid"
	default:
		return "low"
	}
}

var symmetryNarratives = map[Tier]struct{ title, text string }{
	TierTop: {
		title: "God Tier! ✨",
		text:  "Your face shows an exceptionally high level of symmetry. It is a rare quality often associated with universal attractiveness.",
	},
	TierMid: {
		title: "Cool Aura Detected! 😎",
		text:  "Congratulations, your face has excellent balance and proportion. This level of symmetry is the foundation of an attractive, likeable look.",
	},
	TierLow: {
		title: "Strong Character! 😉",
		text:  "Your face has a uniqueness all its own. A little asymmetry adds character and makes you memorable. Charisma is not always about numbers!",
	},
}

const (
	goldenRatioText = "The vertical and horizontal proportions of your face are very close to the Golden Ratio (1.618), a mathematical harmony found in art and nature."
	uniqueRatioText = "Every face has its own unique proportions that make it special and different from the others."
)

// SymmetryTierOf buckets a symmetry score into closed-open intervals:
// [-inf, 1.5) top, [1.5, 3.0) mid, everything else (including NaN) low.
func SymmetryTierOf(score float64) Tier {
	switch {
	case score < SymmetryTopTierBelow:
		return TierTop
	case score < SymmetryMidTierBelow:
		return TierMid
	default:
		return TierLow
	}
}

// NearGoldenRatio reports whether ratio is strictly within the tolerance of 1.618
func NearGoldenRatio(ratio float64) bool {
	return math.Abs(ratio-GoldenRatio) < GoldenRatioTolerance
}

// SelectNarrative maps the two scores to their fixed message templates
func SelectNarrative(symmetry, ratio float64) domain.Narrative {
	sym := symmetryNarratives[SymmetryTierOf(symmetry)]

	ratioText := uniqueRatioText
	if NearGoldenRatio(ratio) {
		ratioText = goldenRatioText
	}

	return domain.Narrative{
		Title:        sym.title,
		SymmetryText: sym.text,
		RatioText:    ratioText,
	}
}
