// Package backtest measures how often composed call/put labels predict the
// next day's index move.
package backtest

import (
	"fmt"
	"time"

	"github.com/dkrao/fiipulse/internal/contracts"
	"github.com/dkrao/fiipulse/internal/strength"
	"github.com/dkrao/fiipulse/pkg/logger"
)

// Config holds backtest configuration.
type Config struct {
	// Lookback is the evaluation span in trading days; the most recent
	// date is always excluded since it has no known forward return.
	Lookback int

	// Thresholds are the movement thresholds in percent at which
	// directional correctness is scored.
	Thresholds []float64

	// Window configures the threshold windows used when labelling the
	// scored dates. Per-date rolling is the default: a fixed batch window
	// leaks future data into historical thresholds.
	Window strength.WindowConfig
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	w := strength.DefaultWindowConfig()
	w.Mode = strength.WindowPerDateRolling
	return Config{
		Lookback:   strength.DefaultLookback,
		Thresholds: []float64{0.2, 0.3, 0.4},
		Window:     w,
	}
}

// Counts accumulates scoring results for one (threshold, institution) cell.
type Counts struct {
	Correct    int `json:"correct"`
	Wrong      int `json:"wrong"`
	Indecisive int `json:"indecisive"`
}

// PercentCorrect returns correct / (correct+wrong) * 100, or 0 when no
// decisive predictions were scored.
func (c Counts) PercentCorrect() float64 {
	decided := c.Correct + c.Wrong
	if decided == 0 {
		return 0
	}
	return float64(c.Correct) / float64(decided) * 100
}

// ThresholdResult is one row of the report: counts per institution at one
// movement threshold.
type ThresholdResult struct {
	Threshold float64                           `json:"threshold"`
	Counts    map[contracts.Institution]*Counts `json:"counts"`
}

// Report is the backtest output table.
type Report struct {
	From       time.Time         `json:"from"`
	To         time.Time         `json:"to"`
	ScoredDays int               `json:"scored_days"`
	Results    []ThresholdResult `json:"results"`
}

// Evaluator scores label prediction accuracy against forward index returns.
type Evaluator struct {
	engine *strength.Engine
	cfg    Config
	logger *logger.Logger
}

// NewEvaluator creates a new backtest evaluator.
func NewEvaluator(cfg Config, log *logger.Logger) *Evaluator {
	if cfg.Lookback <= 0 {
		cfg.Lookback = strength.DefaultLookback
	}
	if len(cfg.Thresholds) == 0 {
		cfg.Thresholds = []float64{0.2, 0.3, 0.4}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Evaluator{
		engine: strength.NewEngine(strength.Config{Window: cfg.Window}, log),
		cfg:    cfg,
		logger: log,
	}
}

type dateInstKey struct {
	date time.Time
	inst contracts.Institution
}

type legPair struct {
	call, put contracts.Label
	haveCall  bool
	havePut   bool
}

// Run labels the scored dates and evaluates each institution's (call, put)
// expectation against the realized next-day index return.
func (e *Evaluator) Run(series *strength.FlowSeries, closes []contracts.IndexClose) (*Report, error) {
	dates := series.TradingDates()
	if len(dates) < 2 {
		return nil, fmt.Errorf("backtest needs at least two trading dates, have %d", len(dates))
	}

	// Scored dates: up to lookback-1 dates immediately preceding the most
	// recent one.
	end := len(dates) - 1
	start := end - (e.cfg.Lookback - 1)
	if start < 0 {
		start = 0
	}
	scored := dates[start:end]
	if len(scored) == 0 {
		return nil, fmt.Errorf("no scorable dates within lookback %d", e.cfg.Lookback)
	}

	closeByDate := make(map[time.Time]float64, len(closes))
	for _, c := range closes {
		y, m, d := c.Date.Date()
		closeByDate[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)] = c.Close
	}

	// Label every scored date once, then index the call/put legs.
	legs := make(map[dateInstKey]*legPair)
	for _, r := range e.engine.EvaluateDates(series, scored) {
		key := dateInstKey{date: r.Date, inst: r.Institution}
		pair := legs[key]
		if pair == nil {
			pair = &legPair{}
			legs[key] = pair
		}
		switch r.Segment {
		case contracts.SegmentCallOptions:
			pair.call, pair.haveCall = r.Final, true
		case contracts.SegmentPutOptions:
			pair.put, pair.havePut = r.Final, true
		}
	}

	report := &Report{
		From:       scored[0],
		To:         scored[len(scored)-1],
		ScoredDays: len(scored),
	}

	for _, threshold := range e.cfg.Thresholds {
		row := ThresholdResult{
			Threshold: threshold,
			Counts:    make(map[contracts.Institution]*Counts, len(contracts.ScoredInstitutions)),
		}
		for _, inst := range contracts.ScoredInstitutions {
			row.Counts[inst] = &Counts{}
		}

		for i, date := range scored {
			nextDate := dates[start+i+1]
			today, ok := closeByDate[date]
			if !ok {
				continue
			}
			next, ok := closeByDate[nextDate]
			if !ok || today == 0 {
				continue
			}
			nextReturnPct := (next - today) / today * 100

			for _, inst := range contracts.ScoredInstitutions {
				pair := legs[dateInstKey{date: date, inst: inst}]
				if pair == nil || !pair.haveCall || !pair.havePut {
					continue
				}

				outcome := ExpectationFor(pair.call, pair.put, inst)
				if outcome == OutcomeNone {
					row.Counts[inst].Indecisive++
					continue
				}

				if outcome.Correct(nextReturnPct, threshold) {
					row.Counts[inst].Correct++
				} else {
					row.Counts[inst].Wrong++
				}
			}
		}

		report.Results = append(report.Results, row)
	}

	e.logger.WithFields(map[string]interface{}{
		"from":        report.From.Format("2006-01-02"),
		"to":          report.To.Format("2006-01-02"),
		"scored_days": report.ScoredDays,
		"thresholds":  e.cfg.Thresholds,
	}).Info("Backtest complete")

	return report, nil
}
