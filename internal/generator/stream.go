package generator

import (
	"context"
	"time"

	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/google/uuid"
)

// Streamer replays generated series point by point as events
type Streamer struct {
	gen      *Generator
	dr       models.DateRange
	source   models.Source
	loop     bool
	sequence int64
}

// NewStreamer creates a streamer for one date range. When loop is set a fresh
// series is generated each time the previous one has been emitted.
func NewStreamer(gen *Generator, dr models.DateRange, source models.Source, loop bool) *Streamer {
	return &Streamer{
		gen:    gen,
		dr:     dr,
		source: source,
		loop:   loop,
	}
}

// Stream emits one event per tick until the series is exhausted (and loop is
// off) or ctx is cancelled
func (s *Streamer) Stream(ctx context.Context, ticker *time.Ticker, output chan<- models.Event) error {
	for {
		series, err := s.gen.Generate(s.dr)
		if err != nil {
			return err
		}

		session := models.Session{
			RunID:    series.RunID,
			Schedule: series.Schedule,
			Seed:     series.Seed,
		}

		for _, point := range series.Points {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}

			s.sequence++
			event := models.NewEvent(uuid.New().String(), s.source, session, point, s.sequence)

			select {
			case output <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if !s.loop {
			return nil
		}
	}
}

// Sequence returns the number of events emitted so far
func (s *Streamer) Sequence() int64 {
	return s.sequence
}
