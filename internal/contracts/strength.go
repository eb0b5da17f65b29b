package contracts

import "time"

// Tier is the ordinal strength classification of a magnitude relative to
// its historical percentiles.
type Tier uint8

const (
	TierNone Tier = iota // empty window sentinel, never part of a decisive label
	TierMild
	TierMedium
	TierStrong
)

func (t Tier) String() string {
	switch t {
	case TierMild:
		return "MILD"
	case TierMedium:
		return "MEDIUM"
	case TierStrong:
		return "STRONG"
	}
	return "NONE"
}

// Direction is the market bias implied by a signed positioning value.
type Direction uint8

const (
	DirectionBullish Direction = iota
	DirectionBearish
)

func (d Direction) String() string {
	if d == DirectionBearish {
		return "BEARISH"
	}
	return "BULLISH"
}

// Opposite returns the inverted direction.
func (d Direction) Opposite() Direction {
	if d == DirectionBearish {
		return DirectionBullish
	}
	return DirectionBearish
}

// Label is a tier-and-direction signal label, or the INDECISIVE sentinel.
// The six decisive values are contiguous so the composition tables can be
// dense arrays indexed by ordinal.
type Label uint8

const (
	LabelIndecisive Label = iota
	LabelStrongBullish
	LabelMediumBullish
	LabelMildBullish
	LabelStrongBearish
	LabelMediumBearish
	LabelMildBearish

	// LabelCount is the size of the full label space including INDECISIVE.
	LabelCount = 7
)

// MakeLabel builds a decisive label from its parts. TierNone yields
// LabelIndecisive.
func MakeLabel(tier Tier, dir Direction) Label {
	var base Label
	switch tier {
	case TierStrong:
		base = LabelStrongBullish
	case TierMedium:
		base = LabelMediumBullish
	case TierMild:
		base = LabelMildBullish
	default:
		return LabelIndecisive
	}
	if dir == DirectionBearish {
		base += 3
	}
	return base
}

// Decisive reports whether the label carries a tier and direction.
func (l Label) Decisive() bool {
	return l >= LabelStrongBullish && l <= LabelMildBearish
}

// Tier returns the label's tier; TierNone for INDECISIVE.
func (l Label) Tier() Tier {
	switch l {
	case LabelStrongBullish, LabelStrongBearish:
		return TierStrong
	case LabelMediumBullish, LabelMediumBearish:
		return TierMedium
	case LabelMildBullish, LabelMildBearish:
		return TierMild
	}
	return TierNone
}

// Direction returns the label's direction. Only meaningful for decisive
// labels; INDECISIVE reports bullish by construction and callers must check
// Decisive first.
func (l Label) Direction() Direction {
	if l >= LabelStrongBearish && l <= LabelMildBearish {
		return DirectionBearish
	}
	return DirectionBullish
}

func (l Label) String() string {
	if !l.Decisive() {
		return "INDECISIVE"
	}
	return l.Tier().String() + " " + l.Direction().String()
}

// NetTag qualifies an indecisive Net Options label when the call and put
// legs conflict rather than merely cancel.
type NetTag uint8

const (
	NetTagNone NetTag = iota
	NetTagVolatile
	NetTagNeutral
)

func (t NetTag) String() string {
	switch t {
	case NetTagVolatile:
		return "VOLATILE"
	case NetTagNeutral:
		return "NEUTRAL"
	}
	return ""
}

// NetLabel is the Net Options composition output: a label plus an optional
// conflict tag. The tag is only ever set alongside LabelIndecisive.
type NetLabel struct {
	Label Label  `json:"label"`
	Tag   NetTag `json:"tag,omitempty"`
}

func (n NetLabel) String() string {
	if n.Tag != NetTagNone {
		return "INDECISIVE " + n.Tag.String()
	}
	return n.Label.String()
}

// ThresholdSet holds the four percentile thresholds for one
// (institution, segment, batch) scope. All values are non-negative since
// they are derived from absolute samples; percentile monotonicity on the
// same sorted sample guarantees OIP80 >= OIP40 and ChangeP80 >= ChangeP20.
type ThresholdSet struct {
	OIP80     float64 `json:"oi_p80"`
	OIP40     float64 `json:"oi_p40"`
	ChangeP80 float64 `json:"change_p80"`
	ChangeP20 float64 `json:"change_p20"`
}

// CompositionResult is the engine output for one (date, institution,
// segment): the raw values and the composed final label. For the derived
// NetOptions segment NetOI and Change are call minus put, and Tag may
// qualify an indecisive final label.
type CompositionResult struct {
	Date        time.Time   `json:"date"`
	Institution Institution `json:"institution"`
	Segment     Segment     `json:"segment"`
	NetOI       float64     `json:"net_oi"`
	Change      float64     `json:"change"`
	OILabel     Label       `json:"oi_label"`
	ChangeLabel Label       `json:"change_label"`
	Final       Label       `json:"final"`
	Tag         NetTag      `json:"tag,omitempty"`
}

// FinalString renders the final label the way the daily report prints it.
func (r CompositionResult) FinalString() string {
	return NetLabel{Label: r.Final, Tag: r.Tag}.String()
}
