package strength

import (
	"math"
	"sort"
	"time"

	"github.com/dkrao/fiipulse/internal/contracts"
)

// DefaultLookback is the number of distinct trading dates in a threshold
// window.
const DefaultLookback = 60

// WindowMode selects how lookback windows relate to the dates being scored.
type WindowMode uint8

const (
	// WindowFixedBatch computes one threshold set per (institution,
	// segment) as of the batch reference date and reuses it for every
	// scored date.
	WindowFixedBatch WindowMode = iota

	// WindowPerDateRolling recomputes thresholds from the lookback window
	// ending at each scored date. Required when scoring many historical
	// dates so thresholds never see data from after the scored date.
	WindowPerDateRolling
)

// PoolingMode selects how option samples feed the threshold estimator.
type PoolingMode uint8

const (
	// PoolRespective keeps Call and Put samples separate per segment.
	PoolRespective PoolingMode = iota

	// PoolCombinedOptions pools Call and Put OI/change values into one
	// combined sample per institution before estimating thresholds.
	PoolCombinedOptions
)

// WindowConfig parameterizes threshold window construction.
type WindowConfig struct {
	Lookback int
	Mode     WindowMode
	Pooling  PoolingMode
}

// DefaultWindowConfig returns the production defaults.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Lookback: DefaultLookback,
		Mode:     WindowFixedBatch,
		Pooling:  PoolRespective,
	}
}

type seriesKey struct {
	inst contracts.Institution
	seg  contracts.Segment
}

// FlowSeries is the engine's in-memory index: (institution, segment) to an
// ordered, append-only sequence of flow points. Built once per evaluation
// from the ETL output and never mutated afterwards.
type FlowSeries struct {
	points map[seriesKey][]contracts.FlowPoint
	dates  []time.Time // distinct trading dates, ascending
}

// NewFlowSeries indexes the supplied points. Non-scored institutions (DII)
// are dropped, dates are normalized to midnight UTC, and each series is
// kept ascending by date.
func NewFlowSeries(points []contracts.FlowPoint) *FlowSeries {
	s := &FlowSeries{points: make(map[seriesKey][]contracts.FlowPoint)}

	seen := make(map[time.Time]struct{})
	for _, p := range points {
		if !p.Institution.Scored() {
			continue
		}
		p.Date = normalizeDate(p.Date)
		key := seriesKey{inst: p.Institution, seg: p.Segment}
		s.points[key] = append(s.points[key], p)

		if _, ok := seen[p.Date]; !ok {
			seen[p.Date] = struct{}{}
			s.dates = append(s.dates, p.Date)
		}
	}

	for key := range s.points {
		series := s.points[key]
		sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	}
	sort.Slice(s.dates, func(i, j int) bool { return s.dates[i].Before(s.dates[j]) })

	return s
}

// TradingDates returns the distinct trading dates ascending.
func (s *FlowSeries) TradingDates() []time.Time {
	return s.dates
}

// LatestDate returns the most recent trading date, or the zero time when
// the series is empty.
func (s *FlowSeries) LatestDate() time.Time {
	if len(s.dates) == 0 {
		return time.Time{}
	}
	return s.dates[len(s.dates)-1]
}

// Point returns the observation for one (institution, segment, date).
func (s *FlowSeries) Point(inst contracts.Institution, seg contracts.Segment, date time.Time) (contracts.FlowPoint, bool) {
	date = normalizeDate(date)
	for _, p := range s.points[seriesKey{inst: inst, seg: seg}] {
		if p.Date.Equal(date) {
			return p, true
		}
	}
	return contracts.FlowPoint{}, false
}

// windowDates returns the n most-recent distinct trading dates at or before
// asOf, ascending. Fewer than n dates may be returned near the start of the
// series.
func (s *FlowSeries) windowDates(asOf time.Time, n int) []time.Time {
	asOf = normalizeDate(asOf)

	// First index strictly after asOf.
	end := sort.Search(len(s.dates), func(i int) bool { return s.dates[i].After(asOf) })
	start := end - n
	if start < 0 {
		start = 0
	}
	return s.dates[start:end]
}

// absSamples collects the |netOI| and |oiChange| samples for one series
// restricted to the window dates, each sorted ascending.
func (s *FlowSeries) absSamples(inst contracts.Institution, seg contracts.Segment, window []time.Time) (oi, change []float64) {
	if len(window) == 0 {
		return nil, nil
	}
	inWindow := make(map[time.Time]struct{}, len(window))
	for _, d := range window {
		inWindow[d] = struct{}{}
	}

	for _, p := range s.points[seriesKey{inst: inst, seg: seg}] {
		if _, ok := inWindow[p.Date]; !ok {
			continue
		}
		oi = append(oi, math.Abs(p.NetOI))
		change = append(change, math.Abs(p.OIChange))
	}
	sort.Float64s(oi)
	sort.Float64s(change)
	return oi, change
}

// thresholdsAsOf computes the per-(institution, segment) threshold sets
// from the lookback window ending at asOf. Segments whose window sample is
// empty are absent from the result and skipped downstream.
func (s *FlowSeries) thresholdsAsOf(asOf time.Time, cfg WindowConfig) map[seriesKey]contracts.ThresholdSet {
	window := s.windowDates(asOf, cfg.Lookback)
	out := make(map[seriesKey]contracts.ThresholdSet)

	for _, inst := range contracts.ScoredInstitutions {
		// Index futures thresholds are always per-segment.
		if ts, ok := estimateSet(s.absSamples(inst, contracts.SegmentIndexFutures, window)); ok {
			out[seriesKey{inst: inst, seg: contracts.SegmentIndexFutures}] = ts
		}

		switch cfg.Pooling {
		case PoolCombinedOptions:
			callOI, callChange := s.absSamples(inst, contracts.SegmentCallOptions, window)
			putOI, putChange := s.absSamples(inst, contracts.SegmentPutOptions, window)
			oi := mergeSorted(callOI, putOI)
			change := mergeSorted(callChange, putChange)
			if ts, ok := estimateSet(oi, change); ok {
				out[seriesKey{inst: inst, seg: contracts.SegmentCallOptions}] = ts
				out[seriesKey{inst: inst, seg: contracts.SegmentPutOptions}] = ts
			}
		default:
			for _, seg := range []contracts.Segment{contracts.SegmentCallOptions, contracts.SegmentPutOptions} {
				if ts, ok := estimateSet(s.absSamples(inst, seg, window)); ok {
					out[seriesKey{inst: inst, seg: seg}] = ts
				}
			}
		}
	}
	return out
}

// estimateSet derives the four thresholds from sorted absolute samples.
// Returns false when either sample is empty.
func estimateSet(oi, change []float64) (contracts.ThresholdSet, bool) {
	oiP80, err := Threshold(80, oi)
	if err != nil {
		return contracts.ThresholdSet{}, false
	}
	oiP40, _ := Threshold(40, oi)
	changeP80, err := Threshold(80, change)
	if err != nil {
		return contracts.ThresholdSet{}, false
	}
	changeP20, _ := Threshold(20, change)

	return contracts.ThresholdSet{
		OIP80:     oiP80,
		OIP40:     oiP40,
		ChangeP80: changeP80,
		ChangeP20: changeP20,
	}, true
}

func mergeSorted(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	sort.Float64s(out)
	return out
}

func normalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
