package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout matches the millisecond UTC form used for formatted_time.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// PointCount is the number of samples in every series (positions 0..100).
const PointCount = 101

// Reserved keys of a flattened data point. Sensor IDs must not collide with them.
const (
	KeyTimestamp     = "timestamp"
	KeyTimePercent   = "time_percent"
	KeyFormattedTime = "formatted_time"
	KeyMode          = "operating_mode"
)

// DataPoint is one row of a series. It marshals flat: the fixed fields sit next
// to one numeric field per sensor, keyed by sensor ID.
type DataPoint struct {
	Timestamp     int64
	TimePercent   int
	FormattedTime string
	Mode          string
	Values        map[string]float64
}

// NewDataPoint creates a point at position pct for instant t
func NewDataPoint(t time.Time, pct int, mode string, sensorCount int) DataPoint {
	return DataPoint{
		Timestamp:     t.UnixMilli(),
		TimePercent:   pct,
		FormattedTime: t.UTC().Format(TimeLayout),
		Mode:          mode,
		Values:        make(map[string]float64, sensorCount),
	}
}

// Time returns the point's instant.
func (p DataPoint) Time() time.Time {
	return time.UnixMilli(p.Timestamp).UTC()
}

// Value returns the reading for a sensor.
func (p DataPoint) Value(sensorID string) (float64, bool) {
	v, ok := p.Values[sensorID]
	return v, ok
}

func (p DataPoint) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(p.Values)+4)
	for id, v := range p.Values {
		flat[id] = v
	}
	flat[KeyTimestamp] = p.Timestamp
	flat[KeyTimePercent] = p.TimePercent
	flat[KeyFormattedTime] = p.FormattedTime
	if p.Mode != "" {
		flat[KeyMode] = p.Mode
	}
	return json.Marshal(flat)
}

func (p *DataPoint) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = DataPoint{Values: make(map[string]float64, len(raw))}
	for key, msg := range raw {
		var err error
		switch key {
		case KeyTimestamp:
			err = json.Unmarshal(msg, &p.Timestamp)
		case KeyTimePercent:
			err = json.Unmarshal(msg, &p.TimePercent)
		case KeyFormattedTime:
			err = json.Unmarshal(msg, &p.FormattedTime)
		case KeyMode:
			err = json.Unmarshal(msg, &p.Mode)
		default:
			var v float64
			err = json.Unmarshal(msg, &v)
			p.Values[key] = v
		}
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	return nil
}

// Interval is one operating-mode span on the 0-100 axis, as reported with a series.
type Interval struct {
	Mode  string  `json:"mode" yaml:"mode"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Color string  `json:"color" yaml:"color"`
}

// Series is a complete synthesized run
type Series struct {
	RunID     string      `json:"run_id"`
	Vessel    string      `json:"vessel,omitempty"`
	Seed      int64       `json:"seed"`
	Range     DateRange   `json:"range"`
	Schedule  string      `json:"schedule"`
	Intervals []Interval  `json:"intervals"`
	Points    []DataPoint `json:"points"`
}
