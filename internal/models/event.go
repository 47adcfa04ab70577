package models

import "time"

// SchemaVersion identifies the streamed event envelope.
const SchemaVersion = "fleetsynth.point.v1"

// Event wraps a single data point for streaming and recording
type Event struct {
	SchemaVersion string    `json:"schema_version"`
	EventID       string    `json:"event_id"`
	Timestamp     string    `json:"ts"`
	Source        Source    `json:"source"`
	Session       Session   `json:"session"`
	Point         DataPoint `json:"point"`
	Meta          Meta      `json:"meta"`
}

// Source identifies the vessel the point is attributed to
type Source struct {
	Type string `json:"type"` // always "vessel" for now
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Session contains metadata about the generating run
type Session struct {
	RunID    string `json:"run_id"`
	Schedule string `json:"schedule"`
	Seed     int64  `json:"seed"`
}

// Meta carries the position of the event within its stream
type Meta struct {
	Sequence int64 `json:"sequence"`
	Total    int   `json:"total,omitempty"`
}

// NewEvent creates a new Event stamped with the current time
func NewEvent(eventID string, source Source, session Session, point DataPoint, sequence int64) Event {
	return Event{
		SchemaVersion: SchemaVersion,
		EventID:       eventID,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Source:        source,
		Session:       session,
		Point:         point,
		Meta: Meta{
			Sequence: sequence,
			Total:    PointCount,
		},
	}
}
