package encoding

import (
	"fmt"
	"strconv"

	"github.com/armadafleet/fleetsynth/internal/models"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtobufEncoder encodes events as a google.protobuf.Struct. The field layout
// mirrors the JSON envelope so consumers can share one schema.
type ProtobufEncoder struct{}

func NewProtobufEncoder() *ProtobufEncoder {
	return &ProtobufEncoder{}
}

func (e *ProtobufEncoder) Encode(event models.Event) ([]byte, error) {
	pb, err := eventToStruct(event)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(pb)
}

func (e *ProtobufEncoder) ContentType() string {
	return "application/x-protobuf"
}

func eventToStruct(e models.Event) (*structpb.Struct, error) {
	point := make(map[string]any, len(e.Point.Values)+4)
	for id, v := range e.Point.Values {
		point[id] = v
	}
	point[models.KeyTimestamp] = e.Point.Timestamp
	point[models.KeyTimePercent] = e.Point.TimePercent
	point[models.KeyFormattedTime] = e.Point.FormattedTime
	if e.Point.Mode != "" {
		point[models.KeyMode] = e.Point.Mode
	}

	pb, err := structpb.NewStruct(map[string]any{
		"schema_version": e.SchemaVersion,
		"event_id":       e.EventID,
		"ts":             e.Timestamp,
		"source": map[string]any{
			"type": e.Source.Type,
			"id":   e.Source.ID,
			"name": e.Source.Name,
		},
		"session": map[string]any{
			"run_id":   e.Session.RunID,
			"schedule": e.Session.Schedule,
			"seed":     strconv.FormatInt(e.Session.Seed, 10),
		},
		"point": point,
		"meta": map[string]any{
			"sequence": e.Meta.Sequence,
			"total":    e.Meta.Total,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build protobuf struct: %w", err)
	}
	return pb, nil
}

// decodeSeed reads the seed, which travels as a decimal string because struct
// numbers are doubles and lose precision above 2^53.
func decodeSeed(v *structpb.Value) (int64, error) {
	if v == nil {
		return 0, nil
	}
	if _, ok := v.GetKind().(*structpb.Value_StringValue); !ok {
		return int64(v.GetNumberValue()), nil
	}
	seed, err := strconv.ParseInt(v.GetStringValue(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid session seed: %w", err)
	}
	return seed, nil
}

// DecodeProtobuf reverses ProtobufEncoder.Encode. Numbers come back as float64
// on the wire, so integer fields are converted back here.
func DecodeProtobuf(data []byte) (models.Event, error) {
	var pb structpb.Struct
	if err := proto.Unmarshal(data, &pb); err != nil {
		return models.Event{}, fmt.Errorf("failed to decode event: %w", err)
	}

	f := pb.GetFields()
	source := f["source"].GetStructValue().GetFields()
	session := f["session"].GetStructValue().GetFields()
	meta := f["meta"].GetStructValue().GetFields()

	seed, err := decodeSeed(session["seed"])
	if err != nil {
		return models.Event{}, err
	}

	event := models.Event{
		SchemaVersion: f["schema_version"].GetStringValue(),
		EventID:       f["event_id"].GetStringValue(),
		Timestamp:     f["ts"].GetStringValue(),
		Source: models.Source{
			Type: source["type"].GetStringValue(),
			ID:   source["id"].GetStringValue(),
			Name: source["name"].GetStringValue(),
		},
		Session: models.Session{
			RunID:    session["run_id"].GetStringValue(),
			Schedule: session["schedule"].GetStringValue(),
			Seed:     seed,
		},
		Meta: models.Meta{
			Sequence: int64(meta["sequence"].GetNumberValue()),
			Total:    int(meta["total"].GetNumberValue()),
		},
	}

	point := f["point"].GetStructValue().GetFields()
	event.Point.Values = make(map[string]float64, len(point))
	for key, v := range point {
		switch key {
		case models.KeyTimestamp:
			event.Point.Timestamp = int64(v.GetNumberValue())
		case models.KeyTimePercent:
			event.Point.TimePercent = int(v.GetNumberValue())
		case models.KeyFormattedTime:
			event.Point.FormattedTime = v.GetStringValue()
		case models.KeyMode:
			event.Point.Mode = v.GetStringValue()
		default:
			event.Point.Values[key] = v.GetNumberValue()
		}
	}
	return event, nil
}
