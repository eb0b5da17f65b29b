package backtest

import "github.com/dkrao/fiipulse/internal/contracts"

// Outcome is the next-day index expectation implied by a (call, put) label
// pair. OutcomeNone means no expectation; those dates count as indecisive.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeUp
	OutcomeDown
	OutcomeFlat
	OutcomeNeutral
	OutcomeFlatOrUp
	OutcomeFlatOrDown
	OutcomeVolatile
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUp:
		return "UP"
	case OutcomeDown:
		return "DOWN"
	case OutcomeFlat:
		return "FLAT"
	case OutcomeNeutral:
		return "NEUTRAL"
	case OutcomeFlatOrUp:
		return "FLAT OR UP"
	case OutcomeFlatOrDown:
		return "FLAT OR DOWN"
	case OutcomeVolatile:
		return "VOLATILE"
	}
	return ""
}

// Expectation carries the two expectation columns: retail (CLIENT) tends to
// be positioned against the next move, so its column frequently inverts the
// institutional one.
type Expectation struct {
	Client Outcome
	Other  Outcome
}

// Short aliases for the table below.
const (
	up   = OutcomeUp
	down = OutcomeDown
	flt  = OutcomeFlat
	neu  = OutcomeNeutral
	fou  = OutcomeFlatOrUp
	fod  = OutcomeFlatOrDown
	vol  = OutcomeVolatile
)

var none = Expectation{}

// expectationTable maps the Call segment's final label (row) and the Put
// segment's final label (column) to next-day expectations. Row and column
// order follows the label ordinals: IND, SB, MB, MLB, Sb, Mb, Mlb.
var expectationTable = [contracts.LabelCount][contracts.LabelCount]Expectation{
	//          IND          SB           MB           MLB          Sb           Mb           Mlb
	/* IND */ {none, {down, fou}, {fod, fou}, none, {fou, down}, {fou, down}, none},
	/* SB  */ {{fod, up}, {down, up}, {fod, up}, {fod, up}, {flt, vol}, {fod, up}, {fod, up}},
	/* MB  */ {{fod, up}, {down, fou}, {fod, up}, {fod, up}, {fou, down}, {flt, neu}, {fod, up}},
	/* MLB */ {none, {down, fou}, {fod, fou}, {fod, up}, {fou, down}, {fou, down}, none},
	/* Sb  */ {{fou, fod}, {vol, neu}, {fou, fod}, {up, fod}, {up, down}, {up, fod}, {up, fod}},
	/* Mb  */ {{fou, down}, {down, fou}, {vol, neu}, {fou, fod}, {fou, down}, {fou, down}, {fou, fod}},
	/* Mlb */ {none, {down, fou}, {fod, fou}, none, {fou, down}, {fou, fod}, none},
}

// ExpectationFor resolves the expectation for one institution. CLIENT reads
// the retail column; FII and PRO read the institutional one.
func ExpectationFor(call, put contracts.Label, inst contracts.Institution) Outcome {
	if int(call) >= contracts.LabelCount || int(put) >= contracts.LabelCount {
		return OutcomeNone
	}
	e := expectationTable[call][put]
	if inst == contracts.InstitutionClient {
		return e.Client
	}
	return e.Other
}

// Correct evaluates the outcome against the realized next-day return (in
// percent) at the given movement threshold.
func (o Outcome) Correct(nextReturnPct, threshold float64) bool {
	switch o {
	case OutcomeUp:
		return nextReturnPct > 0
	case OutcomeDown:
		return nextReturnPct < 0
	case OutcomeFlat, OutcomeNeutral:
		return nextReturnPct >= -threshold && nextReturnPct <= threshold
	case OutcomeFlatOrUp:
		return nextReturnPct >= -threshold
	case OutcomeFlatOrDown:
		return nextReturnPct <= threshold
	case OutcomeVolatile:
		return nextReturnPct < -threshold || nextReturnPct > threshold
	}
	return false
}
