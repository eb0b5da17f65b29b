package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkrao/fiipulse/internal/contracts"
	"github.com/dkrao/fiipulse/internal/strength"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

// bullishSeries builds ten days of FII options flow where both legs always
// read strong bullish: the call book grows long, the put book grows short,
// and the latest observation tops every rolling window.
func bullishSeries() *strength.FlowSeries {
	var points []contracts.FlowPoint
	for d := 1; d <= 10; d++ {
		callChange, putChange := 100.0, -30.0
		if d == 1 {
			callChange, putChange = 0, 0
		}
		points = append(points,
			contracts.FlowPoint{
				Date: day(d), Institution: contracts.InstitutionFII,
				Segment: contracts.SegmentCallOptions, NetOI: float64(100 * d), OIChange: callChange,
			},
			contracts.FlowPoint{
				Date: day(d), Institution: contracts.InstitutionFII,
				Segment: contracts.SegmentPutOptions, NetOI: float64(-30 * d), OIChange: putChange,
			},
		)
	}
	return strength.NewFlowSeries(points)
}

func TestCounts_PercentCorrect(t *testing.T) {
	tests := []struct {
		name   string
		counts Counts
		want   float64
	}{
		{"nothing decided", Counts{Indecisive: 5}, 0},
		{"all correct", Counts{Correct: 4}, 100},
		{"two thirds", Counts{Correct: 2, Wrong: 1}, 100.0 * 2 / 3},
		{"indecisive excluded from denominator", Counts{Correct: 1, Wrong: 1, Indecisive: 10}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.counts.PercentCorrect(), 1e-9)
		})
	}
}

func TestEvaluator_Run(t *testing.T) {
	cfg := Config{
		Lookback:   4,
		Thresholds: []float64{0.2, 0.3, 0.4},
		Window: strength.WindowConfig{
			Lookback: 10,
			Mode:     strength.WindowPerDateRolling,
			Pooling:  strength.PoolRespective,
		},
	}
	eval := NewEvaluator(cfg, nil)

	// Scored dates are days 7-9; day 10 has no forward return. FII reads
	// strong bullish on both legs, which expects UP for institutions.
	closes := []contracts.IndexClose{
		{Date: day(7), Close: 100},
		{Date: day(8), Close: 101},     // day 7 -> +1%
		{Date: day(9), Close: 100},     // day 8 -> -0.99%
		{Date: day(10), Close: 100.05}, // day 9 -> +0.05%
	}

	report, err := eval.Run(bullishSeries(), closes)
	require.NoError(t, err)

	assert.Equal(t, day(7), report.From)
	assert.Equal(t, day(9), report.To)
	assert.Equal(t, 3, report.ScoredDays)
	require.Len(t, report.Results, 3)

	for _, row := range report.Results {
		fii := row.Counts[contracts.InstitutionFII]
		require.NotNil(t, fii, "threshold %v", row.Threshold)
		// UP scores against the sign of the return regardless of
		// threshold: +1% and +0.05% are correct, -0.99% is wrong.
		assert.Equal(t, 2, fii.Correct, "threshold %v", row.Threshold)
		assert.Equal(t, 1, fii.Wrong, "threshold %v", row.Threshold)
		assert.Equal(t, 0, fii.Indecisive, "threshold %v", row.Threshold)
		assert.InDelta(t, 100.0*2/3, fii.PercentCorrect(), 1e-9)

		// No PRO or CLIENT flow in the series, so their cells stay zero.
		assert.Equal(t, Counts{}, *row.Counts[contracts.InstitutionPRO])
		assert.Equal(t, Counts{}, *row.Counts[contracts.InstitutionClient])
	}
}

func TestEvaluator_Run_MissingCloseSkipsDate(t *testing.T) {
	cfg := Config{
		Lookback:   4,
		Thresholds: []float64{0.3},
		Window: strength.WindowConfig{
			Lookback: 10,
			Mode:     strength.WindowPerDateRolling,
			Pooling:  strength.PoolRespective,
		},
	}
	eval := NewEvaluator(cfg, nil)

	// Day 9's close is missing, so day 8 has no forward return and day 9
	// has no own close; only day 7 is scored.
	closes := []contracts.IndexClose{
		{Date: day(7), Close: 100},
		{Date: day(8), Close: 102},
		{Date: day(10), Close: 101},
	}

	report, err := eval.Run(bullishSeries(), closes)
	require.NoError(t, err)

	fii := report.Results[0].Counts[contracts.InstitutionFII]
	assert.Equal(t, 1, fii.Correct)
	assert.Equal(t, 0, fii.Wrong)
}

func TestEvaluator_Run_TooFewDates(t *testing.T) {
	eval := NewEvaluator(DefaultConfig(), nil)

	series := strength.NewFlowSeries([]contracts.FlowPoint{{
		Date: day(1), Institution: contracts.InstitutionFII,
		Segment: contracts.SegmentCallOptions, NetOI: 100, OIChange: 10,
	}})

	_, err := eval.Run(series, nil)
	assert.Error(t, err)
}

func TestEvaluator_Run_LookbackClampsToHistory(t *testing.T) {
	cfg := DefaultConfig() // lookback 60, far more than the series has
	eval := NewEvaluator(cfg, nil)

	closes := make([]contracts.IndexClose, 0, 10)
	for d := 1; d <= 10; d++ {
		closes = append(closes, contracts.IndexClose{Date: day(d), Close: 100 + float64(d)})
	}

	report, err := eval.Run(bullishSeries(), closes)
	require.NoError(t, err)
	assert.Equal(t, 9, report.ScoredDays)
	assert.Equal(t, day(1), report.From)
	assert.Equal(t, day(9), report.To)
}
