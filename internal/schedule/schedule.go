package schedule

import (
	"fmt"

	"github.com/armadafleet/fleetsynth/internal/models"
)

// Operating modes used by the built-in schedules.
const (
	ModeTransit      = "Transit"
	ModeDPOperations = "DP Operations"
	ModeAnchor       = "Anchor"
)

// DefaultMode is reported for positions no interval covers.
const DefaultMode = ModeTransit

// AxisMax is the end of the normalized time axis.
const AxisMax = 100

// Schedule partitions the normalized time axis into operating modes. It applies
// to ranges up to MaxHours long; MaxHours of zero marks the unbounded tier.
type Schedule struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	MaxHours    float64           `yaml:"max_hours" json:"max_hours"`
	Intervals   []models.Interval `yaml:"intervals" json:"intervals"`
}

// Unbounded reports whether the schedule catches every duration above the other tiers.
func (s *Schedule) Unbounded() bool {
	return s.MaxHours == 0
}

// Covers reports whether a range of the given length falls in this tier.
func (s *Schedule) Covers(hours float64) bool {
	return s.Unbounded() || hours <= s.MaxHours
}

// Validate checks that the intervals are ordered and contiguous from 0 to 100.
func (s *Schedule) Validate() error {
	if s.Name == "" {
		return &models.ValidationError{Field: "name", Message: "is required"}
	}
	if s.MaxHours < 0 {
		return &models.ValidationError{Field: "max_hours", Message: "must not be negative"}
	}
	if len(s.Intervals) == 0 {
		return &models.ValidationError{Field: "intervals", Message: "at least one interval is required"}
	}

	prevEnd := 0.0
	for i, iv := range s.Intervals {
		field := fmt.Sprintf("intervals[%d]", i)
		if iv.Mode == "" {
			return &models.ValidationError{Field: field, Message: "mode is required"}
		}
		if iv.Start != prevEnd {
			return &models.ValidationError{Field: field, Message: fmt.Sprintf("starts at %g, expected %g", iv.Start, prevEnd)}
		}
		if iv.End <= iv.Start {
			return &models.ValidationError{Field: field, Message: fmt.Sprintf("end %g must be after start %g", iv.End, iv.Start)}
		}
		prevEnd = iv.End
	}
	if prevEnd != AxisMax {
		return &models.ValidationError{Field: "intervals", Message: fmt.Sprintf("last interval ends at %g, expected %d", prevEnd, AxisMax)}
	}
	return nil
}

// IntervalAt returns the interval owning pos: the first one with
// start <= pos < end. The final position belongs to the last interval.
func (s *Schedule) IntervalAt(pos float64) *models.Interval {
	for i := range s.Intervals {
		if pos >= s.Intervals[i].Start && pos < s.Intervals[i].End {
			return &s.Intervals[i]
		}
	}
	if n := len(s.Intervals); n > 0 && pos == s.Intervals[n-1].End {
		return &s.Intervals[n-1]
	}
	return nil
}

// ModeAt returns the operating mode at pos, or DefaultMode when uncovered.
func (s *Schedule) ModeAt(pos float64) string {
	if iv := s.IntervalAt(pos); iv != nil {
		return iv.Mode
	}
	return DefaultMode
}

// Modes returns the distinct modes in order of first appearance.
func (s *Schedule) Modes() []string {
	seen := make(map[string]bool)
	var modes []string
	for _, iv := range s.Intervals {
		if !seen[iv.Mode] {
			seen[iv.Mode] = true
			modes = append(modes, iv.Mode)
		}
	}
	return modes
}
