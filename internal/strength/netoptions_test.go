package strength

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkrao/fiipulse/internal/contracts"
)

func TestComposeNet_AnchorPairs(t *testing.T) {
	tests := []struct {
		name      string
		call, put contracts.Label
		want      contracts.NetLabel
	}{
		{"medium bullish vs indecisive", mb, ind, netOf(mb)},
		{"medium bullish vs medium bearish is volatile", mb, mB, netVolatile},
		{"strong bullish vs strong bearish is volatile", sb, sB, netVolatile},
		{"medium bearish vs medium bullish is neutral", mB, mb, netNeutral},
		{"mild bullish vs mild bearish cancels", mlb, mlB, netIndecisive},
		{"both indecisive", ind, ind, netIndecisive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeNet(tt.call, tt.put))
		})
	}
}

func TestComposeNet_PutLegConfirmsCall(t *testing.T) {
	// A bearish put is a bullish bet, so it reinforces a bullish call leg
	// rather than cancelling it.
	tests := []struct {
		name      string
		call, put contracts.Label
		want      contracts.NetLabel
	}{
		{"strong put bearish escalates mild call", mlb, sB, netOf(sB)},
		{"strong put bullish escalates mild bearish call", mlB, sb, netOf(sb)},
		{"medium bearish call holds against mild put", mB, mlB, netOf(mB)},
		{"strong bullish call absorbs medium put bearish", sb, mB, netOf(mb)},
		{"indecisive call follows strong put", ind, sB, netOf(sB)},
		{"indecisive call ignores mild put", ind, mlb, netIndecisive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeNet(tt.call, tt.put))
		})
	}
}

func TestComposeNet_TagOnlyOnIndecisive(t *testing.T) {
	for call := contracts.Label(0); call < contracts.LabelCount; call++ {
		for put := contracts.Label(0); put < contracts.LabelCount; put++ {
			net := ComposeNet(call, put)
			if net.Tag != contracts.NetTagNone {
				assert.Equal(t, contracts.LabelIndecisive, net.Label,
					"tagged result for (%v, %v) must be indecisive", call, put)
			}
		}
	}
}
