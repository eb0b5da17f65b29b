package strength

import (
	"math"

	"github.com/dkrao/fiipulse/internal/contracts"
)

// ClassifyTier maps a raw value onto a strength tier by comparing its
// magnitude against two percentile thresholds. pLower is the 40th
// percentile for outstanding OI and the 20th for day-over-day change; the
// rule is the same either way.
func ClassifyTier(value, p80, pLower float64) contracts.Tier {
	abs := math.Abs(value)
	switch {
	case abs >= p80:
		return contracts.TierStrong
	case abs >= pLower:
		return contracts.TierMedium
	default:
		return contracts.TierMild
	}
}

// ClassifyDirection maps a signed value onto a market direction. Positive
// futures or call positioning is bullish; the mapping inverts for puts.
// Zero takes the "not greater than zero" branch.
func ClassifyDirection(value float64, segment contracts.Segment) contracts.Direction {
	dir := contracts.DirectionBearish
	if value > 0 {
		dir = contracts.DirectionBullish
	}
	if segment == contracts.SegmentPutOptions {
		return dir.Opposite()
	}
	return dir
}

// Classify combines tier and direction classification into a label.
func Classify(value, p80, pLower float64, segment contracts.Segment) contracts.Label {
	return contracts.MakeLabel(ClassifyTier(value, p80, pLower), ClassifyDirection(value, segment))
}
