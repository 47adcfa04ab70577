package generator

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/armadafleet/fleetsynth/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(seed int64, opts ...Option) *Generator {
	return NewGenerator(catalog.Default(), schedule.Builtin(), Config{Seed: seed, Vessel: "armada-7801"}, opts...)
}

func mustRange(t *testing.T, from, to string) models.DateRange {
	t.Helper()
	r, err := models.ParseDateRange(from, to)
	require.NoError(t, err)
	return r
}

func TestGenerate_LengthAndBounds(t *testing.T) {
	ranges := [][2]string{
		{"2024-01-01", "2024-01-01"},
		{"2024-01-01", "2024-01-02"},
		{"2024-01-01", "2024-01-07"},
		{"2024-01-01", "2024-03-01"},
	}

	for seed := int64(1); seed <= 5; seed++ {
		gen := newTestGenerator(seed)
		for _, rr := range ranges {
			series, err := gen.Generate(mustRange(t, rr[0], rr[1]))
			require.NoError(t, err)
			require.Len(t, series.Points, models.PointCount)

			for _, p := range series.Points {
				require.Len(t, p.Values, len(gen.Catalog().Sensors))
				for _, s := range gen.Catalog().Sensors {
					v := p.Values[s.ID]
					assert.GreaterOrEqual(t, v, s.Min, "%s at %d", s.ID, p.TimePercent)
					assert.LessOrEqual(t, v, s.Max, "%s at %d", s.ID, p.TimePercent)
				}
			}
		}
	}
}

func TestGenerate_TimestampsAndEndpoints(t *testing.T) {
	r := mustRange(t, "2024-01-01", "2024-01-07")
	series, err := newTestGenerator(7).Generate(r)
	require.NoError(t, err)

	first, last := series.Points[0], series.Points[models.PointCount-1]
	assert.Equal(t, r.From.UnixMilli(), first.Timestamp)
	assert.Equal(t, r.To.UnixMilli(), last.Timestamp)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", first.FormattedTime)
	assert.Equal(t, "2024-01-07T00:00:00.000Z", last.FormattedTime)

	for i, p := range series.Points {
		assert.Equal(t, i, p.TimePercent)
		assert.Equal(t, p.Time().Format(models.TimeLayout), p.FormattedTime)
		if i > 0 {
			assert.Greater(t, p.Timestamp, series.Points[i-1].Timestamp)
		}
	}
}

func TestGenerate_ZeroLengthRange(t *testing.T) {
	r := mustRange(t, "2024-05-05", "2024-05-05")
	series, err := newTestGenerator(1).Generate(r)
	require.NoError(t, err)

	assert.Equal(t, "short", series.Schedule)
	for _, p := range series.Points {
		assert.Equal(t, r.From.UnixMilli(), p.Timestamp)
	}
}

func TestGenerate_RejectsReversedRange(t *testing.T) {
	r := models.DateRange{
		From: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	series, err := newTestGenerator(1).Generate(r)
	assert.Nil(t, series)

	var rangeErr *models.InvalidRangeError
	assert.True(t, errors.As(err, &rangeErr), "got %v", err)
}

func TestGenerate_ScheduleBoundaries(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	gen := newTestGenerator(3)

	tests := []struct {
		span time.Duration
		want string
	}{
		{6 * time.Hour, "short"},
		{6*time.Hour + time.Millisecond, "daily"},
		{24 * time.Hour, "daily"},
		{24*time.Hour + time.Millisecond, "weekly"},
		{168 * time.Hour, "weekly"},
		{168*time.Hour + time.Millisecond, "monthly"},
	}

	for _, test := range tests {
		series, err := gen.Generate(models.DateRange{From: base, To: base.Add(test.span)})
		require.NoError(t, err)
		assert.Equal(t, test.want, series.Schedule, "span %v", test.span)
	}
}

func TestGenerate_ModesFollowSchedule(t *testing.T) {
	series, err := newTestGenerator(1).Generate(mustRange(t, "2024-01-01", "2024-01-02"))
	require.NoError(t, err)

	assert.Equal(t, "daily", series.Schedule)
	assert.Equal(t, schedule.ModeTransit, series.Points[0].Mode)
	assert.Equal(t, schedule.ModeDPOperations, series.Points[25].Mode)
	assert.Equal(t, schedule.ModeDPOperations, series.Points[50].Mode)
	assert.Equal(t, schedule.ModeTransit, series.Points[70].Mode)
	assert.Equal(t, schedule.ModeTransit, series.Points[100].Mode)
	require.Len(t, series.Intervals, 3)
}

func TestGenerate_DailyDPOperationsEngineBias(t *testing.T) {
	r := mustRange(t, "2024-01-01", "2024-01-02")

	for seed := int64(0); seed < 20; seed++ {
		series, err := newTestGenerator(seed).Generate(r)
		require.NoError(t, err)

		v := series.Points[50].Values["engine_main_temp"]
		assert.Greater(t, v, 85.0, "seed %d", seed)
		assert.LessOrEqual(t, v, 87.0, "seed %d", seed)
	}
}

func TestGenerate_DeterministicWithSeed(t *testing.T) {
	r := mustRange(t, "2024-01-01", "2024-01-07")

	a, err := newTestGenerator(99).Generate(r)
	require.NoError(t, err)
	b, err := newTestGenerator(99).Generate(r)
	require.NoError(t, err)

	assert.Equal(t, a.Points, b.Points)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestGenerate_SameShapeFreshNoise(t *testing.T) {
	r := mustRange(t, "2024-01-01", "2024-01-07")
	gen := newTestGenerator(5)

	a, err := gen.Generate(r)
	require.NoError(t, err)
	b, err := gen.Generate(r)
	require.NoError(t, err)

	differs := false
	for i := range a.Points {
		assert.Equal(t, a.Points[i].Timestamp, b.Points[i].Timestamp)
		assert.Equal(t, a.Points[i].TimePercent, b.Points[i].TimePercent)
		assert.Equal(t, a.Points[i].FormattedTime, b.Points[i].FormattedTime)
		if a.Points[i].Values["engine_rpm"] != b.Points[i].Values["engine_rpm"] {
			differs = true
		}
	}
	assert.True(t, differs, "second call should draw new noise")
}

func TestGenerate_NoNoiseNoOscillationHitsBaselines(t *testing.T) {
	gen := NewGenerator(catalog.Default(), schedule.Builtin(),
		Config{DisableOscillation: true}, WithNoiseFraction(0))

	// weekly: Anchor covers 35-45
	series, err := gen.Generate(mustRange(t, "2024-01-01", "2024-01-07"))
	require.NoError(t, err)

	anchor := series.Points[40]
	require.Equal(t, schedule.ModeAnchor, anchor.Mode)
	assert.Equal(t, 0.0, anchor.Values["vessel_speed"])
	assert.InDelta(t, 60+(80-60)*0.6, anchor.Values["engine_main_temp"], 1e-9)
	assert.InDelta(t, 1013-(1013-980)*0.2, anchor.Values["barometric_pressure"], 1e-9)

	transit := series.Points[5]
	require.Equal(t, schedule.ModeTransit, transit.Mode)
	assert.InDelta(t, 8+(15-8)*0.6, transit.Values["vessel_speed"], 1e-9)
	assert.InDelta(t, 100+(200-100)*0.5, transit.Values["hydraulic_pressure_main"], 1e-9)
	assert.InDelta(t, 180.0, transit.Values["vessel_heading"], 1e-9)
}

func TestGenerate_OscillationShape(t *testing.T) {
	gen := NewGenerator(catalog.Default(), schedule.Builtin(), Config{}, WithNoiseFraction(0))

	// short tier: DP Operations everywhere, air_temp has no DP rule
	series, err := gen.Generate(mustRange(t, "2024-01-01T00:00:00Z", "2024-01-01T04:00:00Z"))
	require.NoError(t, err)

	span := 35.0 - 5.0
	assert.InDelta(t, 20.0, series.Points[0].Values["air_temp"], 1e-9)
	assert.InDelta(t, 20+0.1*span, series.Points[25].Values["air_temp"], 1e-9)
	assert.InDelta(t, 20.0, series.Points[50].Values["air_temp"], 1e-9)
	assert.InDelta(t, 20-0.1*span, series.Points[75].Values["air_temp"], 1e-9)
}

func TestGenerate_InjectedRand(t *testing.T) {
	r := mustRange(t, "2024-01-01", "2024-01-02")

	a, err := newTestGenerator(1, WithRand(rand.New(rand.NewSource(42)))).Generate(r)
	require.NoError(t, err)
	b, err := newTestGenerator(2, WithRand(rand.New(rand.NewSource(42)))).Generate(r)
	require.NoError(t, err)

	assert.Equal(t, a.Points, b.Points)
	assert.Zero(t, a.Seed, "config seed did not produce the series")
	assert.Zero(t, b.Seed)
}

func TestGenerate_SeriesMetadata(t *testing.T) {
	series, err := newTestGenerator(11).Generate(mustRange(t, "2024-01-01", "2024-02-01"))
	require.NoError(t, err)

	assert.Equal(t, "armada-7801", series.Vessel)
	assert.Equal(t, int64(11), series.Seed)
	assert.Equal(t, "monthly", series.Schedule)
	assert.NotEmpty(t, series.RunID)
}
