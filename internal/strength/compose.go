package strength

import "github.com/dkrao/fiipulse/internal/contracts"

// Short aliases keep the truth tables readable. Row/column order follows
// the label ordinals: SB, MB, MLB, Sb, Mb, Mlb.
const (
	ind = contracts.LabelIndecisive
	sb  = contracts.LabelStrongBullish
	mb  = contracts.LabelMediumBullish
	mlb = contracts.LabelMildBullish
	sB  = contracts.LabelStrongBearish
	mB  = contracts.LabelMediumBearish
	mlB = contracts.LabelMildBearish
)

// signalTable composes the OI-level label (row) with the change-level label
// (column) into the segment's final label. Same-direction pairs combine
// toward the stronger tier, STRONG beats an opposite MILD outright, and
// STRONG/MEDIUM conflicts cancel to INDECISIVE.
var signalTable = [6][6]contracts.Label{
	//       SB   MB   MLB  Sb   Mb   Mlb
	/* SB  */ {sb, sb, sb, ind, ind, sb},
	/* MB  */ {sb, mb, mb, ind, ind, mb},
	/* MLB */ {mb, mlb, mlb, mB, ind, ind},
	/* Sb  */ {ind, ind, sB, sB, sB, sB},
	/* Mb  */ {ind, ind, mB, sB, mB, mB},
	/* Mlb */ {mb, ind, ind, mB, mlB, mlB},
}

// Compose resolves one segment's final label from its OI-level and
// change-level labels. Any pair outside the decisive 6x6 space resolves to
// INDECISIVE.
func Compose(oi, change contracts.Label) contracts.Label {
	if !oi.Decisive() || !change.Decisive() {
		return contracts.LabelIndecisive
	}
	return signalTable[oi-1][change-1]
}
