package strength

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkrao/fiipulse/internal/contracts"
)

// fiiSeries builds ten days of FII positioning: futures and calls building
// long, puts building short (a bullish book on every leg).
func fiiSeries() *FlowSeries {
	var points []contracts.FlowPoint
	for d := 1; d <= 10; d++ {
		change := 100.0
		if d == 1 {
			change = 0
		}
		points = append(points,
			contracts.FlowPoint{
				Date: day(d), Institution: contracts.InstitutionFII,
				Segment: contracts.SegmentIndexFutures, NetOI: float64(100 * d), OIChange: change,
			},
			contracts.FlowPoint{
				Date: day(d), Institution: contracts.InstitutionFII,
				Segment: contracts.SegmentCallOptions, NetOI: float64(50 * d), OIChange: change / 2,
			},
			contracts.FlowPoint{
				Date: day(d), Institution: contracts.InstitutionFII,
				Segment: contracts.SegmentPutOptions, NetOI: float64(-30 * d), OIChange: -change * 0.3,
			},
		)
	}
	return NewFlowSeries(points)
}

func resultFor(results []contracts.CompositionResult, seg contracts.Segment) (contracts.CompositionResult, bool) {
	for _, r := range results {
		if r.Segment == seg {
			return r, true
		}
	}
	return contracts.CompositionResult{}, false
}

func TestEngine_EvaluateDate(t *testing.T) {
	engine := NewEngine(Config{Window: DefaultWindowConfig()}, nil)
	series := fiiSeries()

	results := engine.EvaluateDate(series, day(10))
	require.Len(t, results, 4, "futures, call, put and derived net options")

	futures, ok := resultFor(results, contracts.SegmentIndexFutures)
	require.True(t, ok)
	// OI 1000 vs p80 820 and change 100 at its p80: strong bullish on both
	// levels composes to strong bullish.
	assert.Equal(t, contracts.LabelStrongBullish, futures.OILabel)
	assert.Equal(t, contracts.LabelStrongBullish, futures.ChangeLabel)
	assert.Equal(t, contracts.LabelStrongBullish, futures.Final)

	call, ok := resultFor(results, contracts.SegmentCallOptions)
	require.True(t, ok)
	assert.Equal(t, contracts.LabelStrongBullish, call.Final)

	// Short put book reads bullish through the inverted direction rule.
	put, ok := resultFor(results, contracts.SegmentPutOptions)
	require.True(t, ok)
	assert.Equal(t, contracts.LabelStrongBullish, put.Final)

	net, ok := resultFor(results, contracts.SegmentNetOptions)
	require.True(t, ok)
	assert.Equal(t, contracts.LabelStrongBullish, net.Final)
	assert.Equal(t, contracts.NetTagNone, net.Tag)
	assert.InDelta(t, 800.0, net.NetOI, 1e-9)  // 500 - (-300)
	assert.InDelta(t, 80.0, net.Change, 1e-9)  // 50 - (-30)
}

func TestEngine_NetSkippedWithoutBothLegs(t *testing.T) {
	var points []contracts.FlowPoint
	for d := 1; d <= 5; d++ {
		points = append(points,
			contracts.FlowPoint{
				Date: day(d), Institution: contracts.InstitutionPRO,
				Segment: contracts.SegmentIndexFutures, NetOI: float64(10 * d), OIChange: 10,
			},
			contracts.FlowPoint{
				Date: day(d), Institution: contracts.InstitutionPRO,
				Segment: contracts.SegmentCallOptions, NetOI: float64(5 * d), OIChange: 5,
			},
		)
	}
	engine := NewEngine(Config{Window: DefaultWindowConfig()}, nil)

	results := engine.EvaluateDate(NewFlowSeries(points), day(5))
	require.Len(t, results, 2)
	_, ok := resultFor(results, contracts.SegmentNetOptions)
	assert.False(t, ok, "net options needs both call and put labels")
}

func TestEngine_MissingDateSkipped(t *testing.T) {
	engine := NewEngine(Config{Window: DefaultWindowConfig()}, nil)

	results := engine.EvaluateDate(fiiSeries(), day(25))
	assert.Empty(t, results, "no observations on the date means no labels")
}

func TestEngine_RollingExcludesLaterData(t *testing.T) {
	series := fiiSeries()

	rolling := NewEngine(Config{Window: WindowConfig{
		Lookback: 5,
		Mode:     WindowPerDateRolling,
		Pooling:  PoolRespective,
	}}, nil)
	fixed := NewEngine(Config{Window: WindowConfig{
		Lookback: 5,
		Mode:     WindowFixedBatch,
		Pooling:  PoolRespective,
	}}, nil)

	// Day 5 under a rolling window only sees days 1-5 and classifies its
	// OI of 500 as strong; the fixed batch window (days 6-10) puts the
	// same value at the bottom of the sample.
	rollingRes := rolling.EvaluateDate(series, day(5))
	fixedRes := fixed.EvaluateDate(series, day(5))

	rFut, ok := resultFor(rollingRes, contracts.SegmentIndexFutures)
	require.True(t, ok)
	fFut, ok := resultFor(fixedRes, contracts.SegmentIndexFutures)
	require.True(t, ok)

	assert.Equal(t, contracts.TierStrong, rFut.OILabel.Tier())
	assert.Equal(t, contracts.TierMild, fFut.OILabel.Tier())
}

func TestEngine_Deterministic(t *testing.T) {
	engine := NewEngine(Config{Window: DefaultWindowConfig()}, nil)
	series := fiiSeries()
	dates := series.TradingDates()

	first := engine.EvaluateDates(series, dates)
	second := engine.EvaluateDates(series, dates)
	assert.Equal(t, first, second, "identical inputs must yield identical output")
}

// End-to-end worked example: OI thresholds p80=1000/p40=400, change
// thresholds p80=150/p20=50; OI 1200 is strong bullish, change 80 is
// medium bullish, and the composition keeps strong bullish.
func TestClassifyAndCompose_WorkedExample(t *testing.T) {
	oiLabel := Classify(1200, 1000, 400, contracts.SegmentIndexFutures)
	changeLabel := Classify(80, 150, 50, contracts.SegmentIndexFutures)

	assert.Equal(t, contracts.LabelStrongBullish, oiLabel)
	assert.Equal(t, contracts.LabelMediumBullish, changeLabel)
	assert.Equal(t, contracts.LabelStrongBullish, Compose(oiLabel, changeLabel))
}

func TestEngine_LatestDate(t *testing.T) {
	assert.Equal(t, day(10), fiiSeries().LatestDate())
	assert.True(t, NewFlowSeries(nil).LatestDate().IsZero())
}
