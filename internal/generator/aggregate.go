package generator

import (
	"math"

	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/models"
)

// axisOffsetStep is the pixel offset between stacked axes on the same side
const axisOffsetStep = 60

// Aggregator collects data points and derives chart-facing summaries
type Aggregator struct {
	points []models.DataPoint
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		points: make([]models.DataPoint, 0, models.PointCount),
	}
}

func (a *Aggregator) Add(point models.DataPoint) {
	a.points = append(a.points, point)
}

func (a *Aggregator) AddSeries(series *models.Series) {
	a.points = append(a.points, series.Points...)
}

func (a *Aggregator) Clear() {
	a.points = a.points[:0]
}

func (a *Aggregator) Count() int {
	return len(a.points)
}

// SensorStats summarizes one sensor across the collected points
type SensorStats struct {
	ID    string  `json:"id"`
	Unit  string  `json:"unit"`
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Last  float64 `json:"last"`
}

// Summary is the aggregate view of a series
type Summary struct {
	Points    int                `json:"points"`
	Sensors   []SensorStats      `json:"sensors"`
	ModeShare map[string]float64 `json:"mode_share"`
}

// Summarize computes per-sensor stats, in the order given, and the share of
// points spent in each operating mode.
func (a *Aggregator) Summarize(sensors []catalog.Sensor) Summary {
	summary := Summary{
		Points:    len(a.points),
		Sensors:   make([]SensorStats, 0, len(sensors)),
		ModeShare: make(map[string]float64),
	}

	for _, sensor := range sensors {
		stats := SensorStats{ID: sensor.ID, Unit: sensor.Unit}
		sum := 0.0
		for _, p := range a.points {
			v, ok := p.Values[sensor.ID]
			if !ok {
				continue
			}
			if stats.Count == 0 || v < stats.Min {
				stats.Min = v
			}
			if stats.Count == 0 || v > stats.Max {
				stats.Max = v
			}
			sum += v
			stats.Count++
			stats.Last = v
		}
		if stats.Count > 0 {
			stats.Mean = sum / float64(stats.Count)
		}
		summary.Sensors = append(summary.Sensors, stats)
	}

	if len(a.points) > 0 {
		for _, p := range a.points {
			summary.ModeShare[p.Mode]++
		}
		for mode, n := range summary.ModeShare {
			summary.ModeShare[mode] = n / float64(len(a.points))
		}
	}

	return summary
}

// UnitGroup is a set of sensors sharing a unit, and so a chart axis
type UnitGroup struct {
	Unit     string           `json:"unit"`
	AxisID   string           `json:"axis_id"`
	Position string           `json:"position"` // "left" or "right"
	Offset   int              `json:"offset"`
	Sensors  []catalog.Sensor `json:"sensors"`
}

// GroupByUnit groups sensors by unit in first-seen order. The first axis goes
// left, the second right, and later ones alternate sides with growing offsets.
func GroupByUnit(sensors []catalog.Sensor) []UnitGroup {
	index := make(map[string]int)
	var groups []UnitGroup
	for _, s := range sensors {
		i, ok := index[s.Unit]
		if !ok {
			i = len(groups)
			index[s.Unit] = i
			groups = append(groups, UnitGroup{Unit: s.Unit, AxisID: "yAxis-" + s.Unit})
		}
		groups[i].Sensors = append(groups[i].Sensors, s)
	}

	for i := range groups {
		switch {
		case i == 0:
			groups[i].Position = "left"
		case i == 1:
			groups[i].Position = "right"
		default:
			if i%2 == 0 {
				groups[i].Position = "left"
			} else {
				groups[i].Position = "right"
			}
			groups[i].Offset = ((i-2)/2 + 1) * axisOffsetStep
		}
	}
	return groups
}

// AxisDomain returns the padded value range for a unit group: 10% of the
// observed spread on each side, never below zero. Groups without data get [0, 100].
func (a *Aggregator) AxisDomain(group UnitGroup) [2]float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, sensor := range group.Sensors {
		for _, p := range a.points {
			v, ok := p.Values[sensor.ID]
			if !ok {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return [2]float64{0, 100}
	}

	pad := (hi - lo) * 0.1
	return [2]float64{math.Max(0, lo-pad), hi + pad}
}
