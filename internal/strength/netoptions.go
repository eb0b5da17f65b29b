package strength

import "github.com/dkrao/fiipulse/internal/contracts"

// Net Options table values. Conflicting call/put legs resolve to an
// indecisive label tagged VOLATILE (both legs heavy, opposite bias) or
// NEUTRAL (offsetting bias, flat expectation).
var (
	netIndecisive = contracts.NetLabel{Label: contracts.LabelIndecisive}
	netVolatile   = contracts.NetLabel{Label: contracts.LabelIndecisive, Tag: contracts.NetTagVolatile}
	netNeutral    = contracts.NetLabel{Label: contracts.LabelIndecisive, Tag: contracts.NetTagNeutral}
)

func netOf(l contracts.Label) contracts.NetLabel {
	return contracts.NetLabel{Label: l}
}

// netTable composes the Call segment's final label (row) with the Put
// segment's final label (column) into the Net Options label. Row and
// column order follows the label ordinals: IND, SB, MB, MLB, Sb, Mb, Mlb.
// A bearish put leg confirms the bullish call story, so e.g. a STRONG
// BEARISH put against a MILD BULLISH call escalates the net to STRONG
// BEARISH on the put's conviction.
var netTable = [contracts.LabelCount][contracts.LabelCount]contracts.NetLabel{
	//          IND            SB         MB         MLB            Sb         Mb           Mlb
	/* IND */ {netIndecisive, netOf(sb), netOf(mb), netIndecisive, netOf(sB), netOf(mB), netIndecisive},
	/* SB  */ {netOf(sb), netOf(sb), netOf(sb), netOf(sb), netVolatile, netOf(mb), netOf(sb)},
	/* MB  */ {netOf(mb), netOf(sb), netOf(mb), netOf(mb), netOf(mB), netVolatile, netOf(mb)},
	/* MLB */ {netIndecisive, netOf(sb), netOf(mb), netOf(mlb), netOf(sB), netOf(mlB), netIndecisive},
	/* Sb  */ {netOf(sB), netNeutral, netOf(mB), netOf(sB), netOf(sB), netOf(sB), netOf(sB)},
	/* Mb  */ {netOf(mB), netOf(sb), netNeutral, netOf(mB), netOf(sB), netOf(mB), netOf(mB)},
	/* Mlb */ {netIndecisive, netOf(sb), netOf(mb), netIndecisive, netOf(sB), netOf(mB), netIndecisive},
}

// ComposeNet resolves the Net Options label from the call and put segments'
// final labels. Every pair in the 7x7 space has an explicit entry; the
// zero value of the table already defaults to INDECISIVE.
func ComposeNet(call, put contracts.Label) contracts.NetLabel {
	if int(call) >= contracts.LabelCount || int(put) >= contracts.LabelCount {
		return netIndecisive
	}
	return netTable[call][put]
}
