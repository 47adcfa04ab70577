package encoding

import (
	"encoding/json"
	"fmt"

	"github.com/armadafleet/fleetsynth/internal/models"
)

// Format represents the encoding format
type Format string

const (
	FormatJSON     Format = "json"
	FormatProtobuf Format = "protobuf"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatProtobuf, "proto":
		return FormatProtobuf, nil
	}
	return "", &models.ValidationError{Field: "format", Message: fmt.Sprintf("unknown format %q (expected json or protobuf)", s)}
}

// Encoder encodes events to bytes
type Encoder interface {
	Encode(event models.Event) ([]byte, error)
	ContentType() string
}

// JSONEncoder encodes events as JSON, with the point flattened
type JSONEncoder struct{}

func NewJSONEncoder() *JSONEncoder {
	return &JSONEncoder{}
}

func (e *JSONEncoder) Encode(event models.Event) ([]byte, error) {
	return json.Marshal(event)
}

func (e *JSONEncoder) ContentType() string {
	return "application/json"
}

// DecodeJSON reverses JSONEncoder.Encode
func DecodeJSON(data []byte) (models.Event, error) {
	var event models.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return models.Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return event, nil
}

// NewEncoder creates an encoder for the given format
func NewEncoder(format Format) Encoder {
	switch format {
	case FormatProtobuf:
		return NewProtobufEncoder()
	default:
		return NewJSONEncoder()
	}
}
