package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkrao/fiipulse/internal/contracts"
	"github.com/dkrao/fiipulse/internal/strength"
	"github.com/dkrao/fiipulse/pkg/config"
)

type fakeFlowRepo struct {
	points []contracts.FlowPoint
	saved  []contracts.FlowPoint
}

func (f *fakeFlowRepo) GetByDateRange(_ context.Context, from, to time.Time) ([]contracts.FlowPoint, error) {
	var out []contracts.FlowPoint
	for _, p := range f.points {
		if !p.Date.Before(from) && !p.Date.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeFlowRepo) GetRecent(_ context.Context, n int) ([]contracts.FlowPoint, error) {
	// Fixtures are small; returning everything keeps the fake simple.
	return f.points, nil
}

func (f *fakeFlowRepo) Save(_ context.Context, p contracts.FlowPoint) error {
	f.saved = append(f.saved, p)
	return nil
}

func (f *fakeFlowRepo) SaveBatch(_ context.Context, points []contracts.FlowPoint) error {
	f.saved = append(f.saved, points...)
	return nil
}

type fakeIndexRepo struct {
	closes []contracts.IndexClose
}

func (f *fakeIndexRepo) GetByDateRange(_ context.Context, from, to time.Time) ([]contracts.IndexClose, error) {
	return f.closes, nil
}

func (f *fakeIndexRepo) GetRecent(_ context.Context, n int) ([]contracts.IndexClose, error) {
	return f.closes, nil
}

func (f *fakeIndexRepo) Save(_ context.Context, c contracts.IndexClose) error {
	f.closes = append(f.closes, c)
	return nil
}

func (f *fakeIndexRepo) SaveBatch(_ context.Context, closes []contracts.IndexClose) error {
	f.closes = append(f.closes, closes...)
	return nil
}

type fakeStrengthRepo struct {
	byDate map[time.Time][]contracts.CompositionResult
}

func newFakeStrengthRepo() *fakeStrengthRepo {
	return &fakeStrengthRepo{byDate: make(map[time.Time][]contracts.CompositionResult)}
}

func (f *fakeStrengthRepo) GetByDate(_ context.Context, date time.Time) ([]contracts.CompositionResult, error) {
	return f.byDate[date], nil
}

func (f *fakeStrengthRepo) GetLatestDate(_ context.Context) (time.Time, error) {
	var latest time.Time
	for d := range f.byDate {
		if d.After(latest) {
			latest = d
		}
	}
	return latest, nil
}

func (f *fakeStrengthRepo) SaveBatch(_ context.Context, results []contracts.CompositionResult) error {
	for _, r := range results {
		f.byDate[r.Date] = append(f.byDate[r.Date], r)
	}
	return nil
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func fixtureFlows() []contracts.FlowPoint {
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
	return points
}

func engineConfig() config.EngineConfig {
	return config.EngineConfig{
		LookbackDays:       10,
		WindowMode:         "fixed",
		OptionsPooling:     "respective",
		MovementThresholds: []float64{0.2, 0.3, 0.4},
	}
}

func TestWindowConfigFrom(t *testing.T) {
	w := WindowConfigFrom(config.EngineConfig{
		LookbackDays: 30, WindowMode: "rolling", OptionsPooling: "combined",
	})
	assert.Equal(t, 30, w.Lookback)
	assert.Equal(t, strength.WindowPerDateRolling, w.Mode)
	assert.Equal(t, strength.PoolCombinedOptions, w.Pooling)

	w = WindowConfigFrom(config.EngineConfig{
		LookbackDays: 60, WindowMode: "fixed", OptionsPooling: "respective",
	})
	assert.Equal(t, strength.WindowFixedBatch, w.Mode)
	assert.Equal(t, strength.PoolRespective, w.Pooling)
}

func TestPipeline_EvaluateLatest(t *testing.T) {
	flows := &fakeFlowRepo{points: fixtureFlows()}
	labels := newFakeStrengthRepo()
	p := New(flows, &fakeIndexRepo{}, labels, nil, nil, engineConfig(), nil)

	results, err := p.EvaluateLatest(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 4, "three segments plus net options")

	for _, r := range results {
		assert.Equal(t, day(10), r.Date)
		assert.Equal(t, contracts.InstitutionFII, r.Institution)
	}

	stored, err := labels.GetByDate(context.Background(), day(10))
	require.NoError(t, err)
	assert.Len(t, stored, 4, "labels must be persisted")
}

func TestPipeline_EvaluateLatest_NoData(t *testing.T) {
	p := New(&fakeFlowRepo{}, &fakeIndexRepo{}, newFakeStrengthRepo(), nil, nil, engineConfig(), nil)

	_, err := p.EvaluateLatest(context.Background())
	assert.Error(t, err)
}

func TestPipeline_LatestStrength(t *testing.T) {
	labels := newFakeStrengthRepo()
	labels.byDate[day(9)] = []contracts.CompositionResult{{Date: day(9)}}
	labels.byDate[day(10)] = []contracts.CompositionResult{
		{Date: day(10), Institution: contracts.InstitutionFII},
		{Date: day(10), Institution: contracts.InstitutionPRO},
	}
	p := New(&fakeFlowRepo{}, &fakeIndexRepo{}, labels, nil, nil, engineConfig(), nil)

	results, err := p.LatestStrength(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 2, "only the latest date's labels")

	// Empty store yields no labels and no error.
	p = New(&fakeFlowRepo{}, &fakeIndexRepo{}, newFakeStrengthRepo(), nil, nil, engineConfig(), nil)
	results, err = p.LatestStrength(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPipeline_Backtest(t *testing.T) {
	flows := &fakeFlowRepo{points: fixtureFlows()}
	closes := &fakeIndexRepo{}
	for d := 1; d <= 10; d++ {
		closes.closes = append(closes.closes, contracts.IndexClose{
			Date: day(d), Close: 100 + float64(d),
		})
	}
	p := New(flows, closes, newFakeStrengthRepo(), nil, nil, engineConfig(), nil)

	report, err := p.Backtest(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 3, report.ScoredDays)
	require.Len(t, report.Results, 3, "one row per movement threshold")
	assert.InDelta(t, 0.2, report.Results[0].Threshold, 1e-9)
}
