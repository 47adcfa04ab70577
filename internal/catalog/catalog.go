package catalog

import (
	"fmt"
	"math"
	"os"

	"github.com/armadafleet/fleetsynth/internal/models"
	"gopkg.in/yaml.v3"
)

// Sensor categories used by the baseline adjustment table.
const (
	CategoryEngine        = "Engine"
	CategoryFuel          = "Fuel"
	CategoryNavigation    = "Navigation"
	CategoryEnvironmental = "Environmental"
	CategoryElectrical    = "Electrical"
	CategoryHydraulics    = "Hydraulics"
)

// Sensor is an immutable catalog entry describing one measurement channel
type Sensor struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	Unit     string  `yaml:"unit" json:"unit"`
	Category string  `yaml:"category" json:"category"`
	Color    string  `yaml:"color,omitempty" json:"color,omitempty"`
	Min      float64 `yaml:"min" json:"min"`
	Max      float64 `yaml:"max" json:"max"`
	Optimal  float64 `yaml:"optimal" json:"optimal"`
}

// Span returns max - min.
func (s Sensor) Span() float64 {
	return s.Max - s.Min
}

// Clamp limits v to the sensor's declared range.
func (s Sensor) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Vessel is a fleet member that series can be attributed to
type Vessel struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Catalog holds the ordered sensor list and the fleet
type Catalog struct {
	Sensors []Sensor `yaml:"sensors" json:"sensors"`
	Vessels []Vessel `yaml:"vessels" json:"vessels"`
}

// CategoryGroup is one category with its sensors in catalog order
type CategoryGroup struct {
	Category string
	Sensors  []Sensor
}

// LoadFromFile reads a catalog from YAML and validates it
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if len(c.Vessels) == 0 {
		c.Vessels = defaultVessels()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks min <= optimal <= max for every sensor and that IDs are unique
// and do not shadow the fixed data point fields.
func (c *Catalog) Validate() error {
	if len(c.Sensors) == 0 {
		return &models.ValidationError{Field: "sensors", Message: "catalog is empty"}
	}

	seen := make(map[string]bool, len(c.Sensors))
	for i, s := range c.Sensors {
		field := fmt.Sprintf("sensors[%d]", i)
		switch {
		case s.ID == "":
			return &models.ValidationError{Field: field, Message: "id is required"}
		case isReserved(s.ID):
			return &models.ValidationError{Field: field, Message: fmt.Sprintf("id %q is reserved", s.ID)}
		case seen[s.ID]:
			return &models.ValidationError{Field: field, Message: fmt.Sprintf("duplicate id %q", s.ID)}
		case !isFinite(s.Min) || !isFinite(s.Max) || !isFinite(s.Optimal):
			return &models.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s: min, optimal and max must be finite numbers", s.ID),
			}
		case s.Min > s.Optimal || s.Optimal > s.Max:
			return &models.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s: need min <= optimal <= max, got %g/%g/%g", s.ID, s.Min, s.Optimal, s.Max),
			}
		}
		seen[s.ID] = true
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isReserved(id string) bool {
	switch id {
	case models.KeyTimestamp, models.KeyTimePercent, models.KeyFormattedTime, models.KeyMode:
		return true
	}
	return false
}

// Get returns the sensor with the given ID
func (c *Catalog) Get(id string) (Sensor, error) {
	for _, s := range c.Sensors {
		if s.ID == id {
			return s, nil
		}
	}
	return Sensor{}, fmt.Errorf("sensor '%s' not found", id)
}

// Filter returns the named sensors in catalog order. An empty list selects all.
func (c *Catalog) Filter(ids []string) ([]Sensor, error) {
	if len(ids) == 0 {
		return c.Sensors, nil
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, err := c.Get(id); err != nil {
			return nil, err
		}
		want[id] = true
	}

	out := make([]Sensor, 0, len(want))
	for _, s := range c.Sensors {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

// ByCategory groups sensors by category, preserving first-seen order
func (c *Catalog) ByCategory() []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, s := range c.Sensors {
		i, ok := index[s.Category]
		if !ok {
			i = len(groups)
			index[s.Category] = i
			groups = append(groups, CategoryGroup{Category: s.Category})
		}
		groups[i].Sensors = append(groups[i].Sensors, s)
	}
	return groups
}

// Vessel returns the vessel with the given ID
func (c *Catalog) Vessel(id string) (Vessel, error) {
	for _, v := range c.Vessels {
		if v.ID == id {
			return v, nil
		}
	}
	return Vessel{}, fmt.Errorf("vessel '%s' not found", id)
}
