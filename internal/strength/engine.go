package strength

import (
	"time"

	"github.com/dkrao/fiipulse/internal/contracts"
	"github.com/dkrao/fiipulse/pkg/logger"
)

// Config holds engine configuration.
type Config struct {
	Window WindowConfig
}

// Engine runs the classification-and-composition pipeline over an indexed
// flow series. It holds no state across calls; thresholds and labels are
// derived per evaluation and discarded.
type Engine struct {
	cfg    Config
	logger *logger.Logger
}

// NewEngine creates a new strength engine. A nil logger disables logging.
func NewEngine(cfg Config, log *logger.Logger) *Engine {
	if cfg.Window.Lookback <= 0 {
		cfg.Window.Lookback = DefaultLookback
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{cfg: cfg, logger: log}
}

// EvaluateDate classifies every (institution, segment) for one trading
// date, using the window strategy from the engine config. Segments without
// a usable window or without an observation on the date are skipped.
func (e *Engine) EvaluateDate(series *FlowSeries, date time.Time) []contracts.CompositionResult {
	return e.EvaluateDates(series, []time.Time{date})
}

// EvaluateDates scores a batch of trading dates. Under WindowFixedBatch one
// threshold set per (institution, segment) is computed as of the latest
// trading date in the series and shared by every scored date; under
// WindowPerDateRolling thresholds are rebuilt from the window ending at
// each date.
func (e *Engine) EvaluateDates(series *FlowSeries, dates []time.Time) []contracts.CompositionResult {
	var fixed map[seriesKey]contracts.ThresholdSet
	if e.cfg.Window.Mode == WindowFixedBatch {
		fixed = series.thresholdsAsOf(series.LatestDate(), e.cfg.Window)
	}

	var results []contracts.CompositionResult
	for _, date := range dates {
		thresholds := fixed
		if e.cfg.Window.Mode == WindowPerDateRolling {
			thresholds = series.thresholdsAsOf(date, e.cfg.Window)
		}
		results = append(results, e.evaluateDate(series, normalizeDate(date), thresholds)...)
	}
	return results
}

func (e *Engine) evaluateDate(series *FlowSeries, date time.Time, thresholds map[seriesKey]contracts.ThresholdSet) []contracts.CompositionResult {
	var results []contracts.CompositionResult

	for _, inst := range contracts.ScoredInstitutions {
		var call, put contracts.CompositionResult
		var haveCall, havePut bool

		for _, seg := range contracts.ReportedSegments {
			ts, ok := thresholds[seriesKey{inst: inst, seg: seg}]
			if !ok {
				continue
			}
			point, ok := series.Point(inst, seg, date)
			if !ok {
				continue
			}

			oiLabel := Classify(point.NetOI, ts.OIP80, ts.OIP40, seg)
			changeLabel := Classify(point.OIChange, ts.ChangeP80, ts.ChangeP20, seg)

			result := contracts.CompositionResult{
				Date:        date,
				Institution: inst,
				Segment:     seg,
				NetOI:       point.NetOI,
				Change:      point.OIChange,
				OILabel:     oiLabel,
				ChangeLabel: changeLabel,
				Final:       Compose(oiLabel, changeLabel),
			}
			results = append(results, result)

			switch seg {
			case contracts.SegmentCallOptions:
				call, haveCall = result, true
			case contracts.SegmentPutOptions:
				put, havePut = result, true
			}

			e.logger.WithFields(map[string]interface{}{
				"date":        date.Format("2006-01-02"),
				"institution": inst,
				"segment":     seg,
				"oi_label":    oiLabel.String(),
				"chg_label":   changeLabel.String(),
				"final":       result.Final.String(),
			}).Debug("Classified segment")
		}

		// Net Options only exists when both legs were scored.
		if haveCall && havePut {
			net := ComposeNet(call.Final, put.Final)
			results = append(results, contracts.CompositionResult{
				Date:        date,
				Institution: inst,
				Segment:     contracts.SegmentNetOptions,
				NetOI:       call.NetOI - put.NetOI,
				Change:      call.Change - put.Change,
				Final:       net.Label,
				Tag:         net.Tag,
			})
		}
	}
	return results
}
