package contracts

import (
	"testing"
	"time"
)

func TestMakeLabel(t *testing.T) {
	tests := []struct {
		name string
		tier Tier
		dir  Direction
		want Label
	}{
		{"strong bullish", TierStrong, DirectionBullish, LabelStrongBullish},
		{"medium bullish", TierMedium, DirectionBullish, LabelMediumBullish},
		{"mild bullish", TierMild, DirectionBullish, LabelMildBullish},
		{"strong bearish", TierStrong, DirectionBearish, LabelStrongBearish},
		{"medium bearish", TierMedium, DirectionBearish, LabelMediumBearish},
		{"mild bearish", TierMild, DirectionBearish, LabelMildBearish},
		{"none tier", TierNone, DirectionBullish, LabelIndecisive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MakeLabel(tt.tier, tt.dir); got != tt.want {
				t.Errorf("MakeLabel(%v, %v) = %v, want %v", tt.tier, tt.dir, got, tt.want)
			}
		})
	}
}

func TestLabel_RoundTrip(t *testing.T) {
	// Every decisive label must decompose back into its parts.
	for _, tier := range []Tier{TierMild, TierMedium, TierStrong} {
		for _, dir := range []Direction{DirectionBullish, DirectionBearish} {
			l := MakeLabel(tier, dir)
			if !l.Decisive() {
				t.Fatalf("MakeLabel(%v, %v) not decisive", tier, dir)
			}
			if l.Tier() != tier {
				t.Errorf("label %v: Tier() = %v, want %v", l, l.Tier(), tier)
			}
			if l.Direction() != dir {
				t.Errorf("label %v: Direction() = %v, want %v", l, l.Direction(), dir)
			}
		}
	}
}

func TestLabel_String(t *testing.T) {
	if got := LabelStrongBullish.String(); got != "STRONG BULLISH" {
		t.Errorf("got %q, want %q", got, "STRONG BULLISH")
	}
	if got := LabelMildBearish.String(); got != "MILD BEARISH" {
		t.Errorf("got %q, want %q", got, "MILD BEARISH")
	}
	if got := LabelIndecisive.String(); got != "INDECISIVE" {
		t.Errorf("got %q, want %q", got, "INDECISIVE")
	}
}

func TestNetLabel_String(t *testing.T) {
	tests := []struct {
		name string
		nl   NetLabel
		want string
	}{
		{"decisive", NetLabel{Label: LabelMediumBullish}, "MEDIUM BULLISH"},
		{"plain indecisive", NetLabel{Label: LabelIndecisive}, "INDECISIVE"},
		{"volatile", NetLabel{Label: LabelIndecisive, Tag: NetTagVolatile}, "INDECISIVE VOLATILE"},
		{"neutral", NetLabel{Label: LabelIndecisive, Tag: NetTagNeutral}, "INDECISIVE NEUTRAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.nl.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstitution_Scored(t *testing.T) {
	if InstitutionDII.Scored() {
		t.Error("DII must be excluded from scoring")
	}
	for _, inst := range ScoredInstitutions {
		if !inst.Scored() {
			t.Errorf("%s should be scored", inst)
		}
	}
}

func TestCompositionResult_FinalString(t *testing.T) {
	r := CompositionResult{
		Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Institution: InstitutionFII,
		Segment:     SegmentNetOptions,
		Final:       LabelIndecisive,
		Tag:         NetTagVolatile,
	}
	if got := r.FinalString(); got != "INDECISIVE VOLATILE" {
		t.Errorf("FinalString() = %q", got)
	}
}
