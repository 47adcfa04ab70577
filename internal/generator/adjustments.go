package generator

import (
	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/schedule"
)

// Level names a point of a sensor's range
type Level int

const (
	LevelMin Level = iota
	LevelOptimal
	LevelMax
)

func (l Level) of(s catalog.Sensor) float64 {
	switch l {
	case LevelMin:
		return s.Min
	case LevelMax:
		return s.Max
	default:
		return s.Optimal
	}
}

func (l Level) String() string {
	switch l {
	case LevelMin:
		return "min"
	case LevelMax:
		return "max"
	default:
		return "optimal"
	}
}

// Rule moves a sensor's baseline from one level toward another by Fraction.
// It matches on SensorID when set, otherwise on Category; with neither set it
// matches every sensor.
type Rule struct {
	SensorID string
	Category string
	From     Level
	Toward   Level
	Fraction float64
}

// Matches reports whether the rule applies to s
func (r Rule) Matches(s catalog.Sensor) bool {
	switch {
	case r.SensorID != "":
		return r.SensorID == s.ID
	case r.Category != "":
		return r.Category == s.Category
	default:
		return true
	}
}

// Apply returns the adjusted baseline for s
func (r Rule) Apply(s catalog.Sensor) float64 {
	from := r.From.of(s)
	return from + (r.Toward.of(s)-from)*r.Fraction
}

// RuleTable maps an operating mode to its ordered rules. The first matching
// rule wins; sensors with no match keep their optimal value.
type RuleTable map[string][]Rule

// Baseline returns the mode-adjusted starting value for s
func (t RuleTable) Baseline(mode string, s catalog.Sensor) float64 {
	for _, rule := range t[mode] {
		if rule.Matches(s) {
			return rule.Apply(s)
		}
	}
	return s.Optimal
}

// DefaultRules returns the hand-tuned per-mode adjustments
func DefaultRules() RuleTable {
	return RuleTable{
		schedule.ModeDPOperations: {
			{Category: catalog.CategoryEngine, From: LevelOptimal, Toward: LevelMax, Fraction: 0.4},
			{Category: catalog.CategoryFuel, From: LevelOptimal, Toward: LevelMax, Fraction: 0.5},
			{SensorID: "vessel_speed", From: LevelMin, Toward: LevelMax, Fraction: 0.1},
			{Category: catalog.CategoryElectrical, From: LevelOptimal, Toward: LevelMax, Fraction: 0.3},
			{Category: catalog.CategoryHydraulics, From: LevelOptimal, Toward: LevelMax, Fraction: 0.4},
		},
		schedule.ModeTransit: {
			{SensorID: "vessel_speed", From: LevelOptimal, Toward: LevelMax, Fraction: 0.6},
			{Category: catalog.CategoryFuel, From: LevelOptimal, Toward: LevelMax, Fraction: 0.3},
			{Category: catalog.CategoryEngine, From: LevelOptimal, Toward: LevelMax, Fraction: 0.2},
			{Category: catalog.CategoryHydraulics, From: LevelMin, Toward: LevelOptimal, Fraction: 0.5},
		},
		schedule.ModeAnchor: {
			{SensorID: "vessel_speed", From: LevelMin, Toward: LevelMin},
			{Category: catalog.CategoryEngine, From: LevelMin, Toward: LevelOptimal, Fraction: 0.6},
			{Category: catalog.CategoryFuel, From: LevelMin, Toward: LevelOptimal, Fraction: 0.4},
			{Category: catalog.CategoryHydraulics, From: LevelMin, Toward: LevelOptimal, Fraction: 0.3},
			{From: LevelOptimal, Toward: LevelMin, Fraction: 0.2},
		},
	}
}
