package generator

import (
	"testing"
	"time"

	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointWith(pct int, mode string, values map[string]float64) models.DataPoint {
	p := models.NewDataPoint(time.Unix(0, 0), pct, mode, len(values))
	for k, v := range values {
		p.Values[k] = v
	}
	return p
}

func TestAggregator_Summarize(t *testing.T) {
	agg := NewAggregator()
	agg.Add(pointWith(0, "Transit", map[string]float64{"a": 1, "b": 10}))
	agg.Add(pointWith(1, "Transit", map[string]float64{"a": 3, "b": 30}))
	agg.Add(pointWith(2, "Anchor", map[string]float64{"a": 2}))
	agg.Add(pointWith(3, "Anchor", map[string]float64{"a": 6}))

	sensors := []catalog.Sensor{{ID: "a", Unit: "bar"}, {ID: "b", Unit: "°C"}, {ID: "c", Unit: "V"}}
	summary := agg.Summarize(sensors)

	assert.Equal(t, 4, summary.Points)
	require.Len(t, summary.Sensors, 3)

	a := summary.Sensors[0]
	assert.Equal(t, 4, a.Count)
	assert.Equal(t, 1.0, a.Min)
	assert.Equal(t, 6.0, a.Max)
	assert.Equal(t, 3.0, a.Mean)
	assert.Equal(t, 6.0, a.Last)

	b := summary.Sensors[1]
	assert.Equal(t, 2, b.Count)
	assert.Equal(t, 20.0, b.Mean)

	assert.Zero(t, summary.Sensors[2].Count)
	assert.Equal(t, map[string]float64{"Transit": 0.5, "Anchor": 0.5}, summary.ModeShare)

	agg.Clear()
	assert.Zero(t, agg.Count())
}

func TestAggregator_ModeShareOfGeneratedSeries(t *testing.T) {
	r, err := models.ParseDateRange("2024-01-01", "2024-01-02")
	require.NoError(t, err)
	series, err := newTestGenerator(1).Generate(r)
	require.NoError(t, err)

	agg := NewAggregator()
	agg.AddSeries(series)
	summary := agg.Summarize(catalog.Default().Sensors)

	// daily: Transit 0-24 and 70-100, DP 25-69
	assert.InDelta(t, 45.0/101.0, summary.ModeShare["DP Operations"], 1e-9)
	assert.InDelta(t, 56.0/101.0, summary.ModeShare["Transit"], 1e-9)
}

func TestGroupByUnit(t *testing.T) {
	sensors := []catalog.Sensor{
		{ID: "t1", Unit: "°C"},
		{ID: "p1", Unit: "bar"},
		{ID: "t2", Unit: "°C"},
		{ID: "r1", Unit: "rpm"},
		{ID: "f1", Unit: "L/h"},
		{ID: "v1", Unit: "V"},
		{ID: "k1", Unit: "kW"},
	}

	groups := GroupByUnit(sensors)
	require.Len(t, groups, 6)

	tests := []struct {
		unit     string
		position string
		offset   int
		count    int
	}{
		{"°C", "left", 0, 2},
		{"bar", "right", 0, 1},
		{"rpm", "left", 60, 1},
		{"L/h", "right", 60, 1},
		{"V", "left", 120, 1},
		{"kW", "right", 120, 1},
	}
	for i, test := range tests {
		assert.Equal(t, test.unit, groups[i].Unit)
		assert.Equal(t, "yAxis-"+test.unit, groups[i].AxisID)
		assert.Equal(t, test.position, groups[i].Position, test.unit)
		assert.Equal(t, test.offset, groups[i].Offset, test.unit)
		assert.Len(t, groups[i].Sensors, test.count, test.unit)
	}
}

func TestAxisDomain(t *testing.T) {
	agg := NewAggregator()
	agg.Add(pointWith(0, "Transit", map[string]float64{"t1": 70, "t2": 60}))
	agg.Add(pointWith(1, "Transit", map[string]float64{"t1": 90, "t2": 65}))

	group := UnitGroup{Unit: "°C", Sensors: []catalog.Sensor{{ID: "t1"}, {ID: "t2"}}}
	domain := agg.AxisDomain(group)
	assert.InDelta(t, 57.0, domain[0], 1e-9)
	assert.InDelta(t, 93.0, domain[1], 1e-9)

	// lower bound never drops below zero
	agg.Add(pointWith(2, "Transit", map[string]float64{"t1": 1}))
	domain = agg.AxisDomain(group)
	assert.Equal(t, 0.0, domain[0])

	empty := agg.AxisDomain(UnitGroup{Sensors: []catalog.Sensor{{ID: "missing"}}})
	assert.Equal(t, [2]float64{0, 100}, empty)
}
