// Package pipeline wires fetching, persistence, the strength engine and
// the cache into the operations the API, CLI and scheduler expose.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkrao/fiipulse/internal/backtest"
	"github.com/dkrao/fiipulse/internal/contracts"
	"github.com/dkrao/fiipulse/internal/external/nse"
	"github.com/dkrao/fiipulse/internal/strength"
	"github.com/dkrao/fiipulse/pkg/config"
	"github.com/dkrao/fiipulse/pkg/logger"
	"github.com/dkrao/fiipulse/pkg/redis"
)

// DefaultIndexName is the index whose closes the backtest scores against.
const DefaultIndexName = "NIFTY 50"

// Pipeline runs the collect / evaluate / backtest operations.
type Pipeline struct {
	flows     contracts.FlowRepository
	closes    contracts.IndexRepository
	labels    contracts.StrengthRepository
	nse       *nse.Client
	cache     *redis.Cache
	logger    *logger.Logger
	engineCfg config.EngineConfig
	indexName string
}

// New creates a new pipeline. The cache may be nil when Redis is disabled.
func New(
	flows contracts.FlowRepository,
	closes contracts.IndexRepository,
	labels contracts.StrengthRepository,
	nseClient *nse.Client,
	cache *redis.Cache,
	engineCfg config.EngineConfig,
	log *logger.Logger,
) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		flows:     flows,
		closes:    closes,
		labels:    labels,
		nse:       nseClient,
		cache:     cache,
		logger:    log,
		engineCfg: engineCfg,
		indexName: DefaultIndexName,
	}
}

// WindowConfigFrom translates engine configuration into a window config.
func WindowConfigFrom(cfg config.EngineConfig) strength.WindowConfig {
	w := strength.WindowConfig{
		Lookback: cfg.LookbackDays,
		Mode:     strength.WindowFixedBatch,
		Pooling:  strength.PoolRespective,
	}
	if cfg.WindowMode == "rolling" {
		w.Mode = strength.WindowPerDateRolling
	}
	if cfg.OptionsPooling == "combined" {
		w.Pooling = strength.PoolCombinedOptions
	}
	return w
}

// Collect downloads participant open interest for every business day in
// [from, to], computes day-over-day changes and persists the points. It
// also upserts the index closes for the same range so backtests over
// freshly backfilled history have returns to score against. Unpublished
// dates (holidays, files not out yet) are skipped.
func (p *Pipeline) Collect(ctx context.Context, from, to time.Time) (int, error) {
	prev := p.seedPrevious(ctx, from)

	saved := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if isWeekend(d) {
			continue
		}

		snap, err := p.nse.FetchParticipantOI(ctx, d)
		if err != nil {
			if errors.Is(err, nse.ErrNotPublished) {
				p.logger.WithField("date", d.Format("2006-01-02")).Debug("No participant file, skipping")
				continue
			}
			return saved, fmt.Errorf("fetch participant OI: %w", err)
		}

		points := nse.FlowPoints(snap, prev)
		if err := p.flows.SaveBatch(ctx, points); err != nil {
			return saved, fmt.Errorf("save flow points: %w", err)
		}
		saved += len(points)
		prev = snap
	}

	if err := p.collectIndexCloses(ctx, from, to); err != nil {
		return saved, err
	}

	p.logger.WithFields(map[string]interface{}{
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"saved": saved,
	}).Info("Collection complete")

	return saved, nil
}

// collectIndexCloses backfills index closes for [from, to] via the
// historical quotes endpoint, falling back to the latest quote when the
// range fetch yields nothing. A fetch failure is only a warning; the flow
// points are already saved.
func (p *Pipeline) collectIndexCloses(ctx context.Context, from, to time.Time) error {
	closes, err := p.nse.FetchIndexCloseRange(ctx, p.indexName, from, to)
	if err != nil {
		p.logger.WithError(err).Warn("Historical index close fetch failed")
	} else if len(closes) > 0 {
		if err := p.closes.SaveBatch(ctx, closes); err != nil {
			return fmt.Errorf("save index closes: %w", err)
		}
		return nil
	}

	idxClose, err := p.nse.FetchIndexClose(ctx, p.indexName)
	if err != nil {
		p.logger.WithError(err).Warn("Index close fetch failed")
		return nil
	}
	if err := p.closes.Save(ctx, idxClose); err != nil {
		return fmt.Errorf("save index close: %w", err)
	}
	return nil
}

// seedPrevious looks for a published participant file shortly before the
// collection window so the first collected day gets a real day-over-day
// change instead of zero.
func (p *Pipeline) seedPrevious(ctx context.Context, from time.Time) *nse.Snapshot {
	for back := 1; back <= 5; back++ {
		d := from.AddDate(0, 0, -back)
		if isWeekend(d) {
			continue
		}
		snap, err := p.nse.FetchParticipantOI(ctx, d)
		if err == nil {
			return snap
		}
		if !errors.Is(err, nse.ErrNotPublished) {
			return nil
		}
	}
	return nil
}

// EvaluateLatest labels the most recent trading date from stored flow
// data, persists the labels and caches the snapshot.
func (p *Pipeline) EvaluateLatest(ctx context.Context) ([]contracts.CompositionResult, error) {
	window := WindowConfigFrom(p.engineCfg)

	points, err := p.flows.GetRecent(ctx, window.Lookback)
	if err != nil {
		return nil, fmt.Errorf("load recent flow: %w", err)
	}

	series := strength.NewFlowSeries(points)
	latest := series.LatestDate()
	if latest.IsZero() {
		return nil, fmt.Errorf("no flow data to evaluate")
	}

	engine := strength.NewEngine(strength.Config{Window: window}, p.logger)
	results := engine.EvaluateDate(series, latest)
	if len(results) == 0 {
		return nil, fmt.Errorf("no labels produced for %s", latest.Format("2006-01-02"))
	}

	if err := p.labels.SaveBatch(ctx, results); err != nil {
		return nil, fmt.Errorf("save labels: %w", err)
	}

	if p.cache != nil {
		key := redis.StrengthKey(latest.Format("2006-01-02"))
		if err := p.cache.Set(ctx, key, results, redis.TTLDaily); err != nil {
			p.logger.WithError(err).Warn("Strength cache write failed")
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"date":   latest.Format("2006-01-02"),
		"labels": len(results),
	}).Info("Strength evaluation complete")

	return results, nil
}

// StrengthByDate returns the stored labels for a date, trying the cache
// first.
func (p *Pipeline) StrengthByDate(ctx context.Context, date time.Time) ([]contracts.CompositionResult, error) {
	key := redis.StrengthKey(date.Format("2006-01-02"))

	if p.cache != nil {
		var cached []contracts.CompositionResult
		if hit, err := p.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	results, err := p.labels.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}

	if p.cache != nil && len(results) > 0 {
		if err := p.cache.Set(ctx, key, results, redis.TTLDaily); err != nil {
			p.logger.WithError(err).Warn("Strength cache write failed")
		}
	}
	return results, nil
}

// LatestStrength returns the labels for the most recent evaluated date.
func (p *Pipeline) LatestStrength(ctx context.Context) ([]contracts.CompositionResult, error) {
	latest, err := p.labels.GetLatestDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest label date: %w", err)
	}
	if latest.IsZero() {
		return nil, nil
	}
	return p.StrengthByDate(ctx, latest)
}

// Backtest scores prediction accuracy over the lookback window using
// stored flow and index data. Reports are cached for a day.
func (p *Pipeline) Backtest(ctx context.Context, lookback int) (*backtest.Report, error) {
	if lookback <= 0 {
		lookback = p.engineCfg.LookbackDays
	}
	key := redis.BacktestKey(lookback)

	if p.cache != nil {
		var cached backtest.Report
		if hit, err := p.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	window := WindowConfigFrom(p.engineCfg)
	// Rolling thresholds keep historical labels free of future data.
	window.Mode = strength.WindowPerDateRolling

	// The earliest scored date still needs a full threshold window behind
	// it, so load enough history for both.
	span := lookback + window.Lookback
	points, err := p.flows.GetRecent(ctx, span)
	if err != nil {
		return nil, fmt.Errorf("load flow history: %w", err)
	}
	closes, err := p.closes.GetRecent(ctx, span)
	if err != nil {
		return nil, fmt.Errorf("load index history: %w", err)
	}

	evaluator := backtest.NewEvaluator(backtest.Config{
		Lookback:   lookback,
		Thresholds: p.engineCfg.MovementThresholds,
		Window:     window,
	}, p.logger)

	report, err := evaluator.Run(strength.NewFlowSeries(points), closes)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, report, redis.TTLDaily); err != nil {
			p.logger.WithError(err).Warn("Backtest cache write failed")
		}
	}
	return report, nil
}

// RefreshBacktest drops the cached report before recomputing, so scheduled
// refreshes replace stale copies instead of serving them.
func (p *Pipeline) RefreshBacktest(ctx context.Context, lookback int) (*backtest.Report, error) {
	if lookback <= 0 {
		lookback = p.engineCfg.LookbackDays
	}
	if p.cache != nil {
		if err := p.cache.Delete(ctx, redis.BacktestKey(lookback)); err != nil {
			p.logger.WithError(err).Warn("Backtest cache delete failed")
		}
	}
	return p.Backtest(ctx, lookback)
}

func isWeekend(d time.Time) bool {
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}
