package recorder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/armadafleet/fleetsynth/internal/encoding"
	"github.com/armadafleet/fleetsynth/internal/models"
)

// maxLine bounds one recorded event; wide catalogs produce long lines
const maxLine = 1024 * 1024

// Replayer re-emits a recording with its original spacing, scaled by speed
type Replayer struct {
	path       string
	speed      float64
	loop       bool
	eventCount int
	firstEvent *models.Event
	loaded     bool
}

// NewReplayer creates a replayer. A speed of 2 plays twice as fast; zero or
// negative speeds are treated as 1.
func NewReplayer(path string, speed float64, loop bool) *Replayer {
	if speed <= 0 {
		speed = 1
	}
	return &Replayer{
		path:  path,
		speed: speed,
		loop:  loop,
	}
}

func newScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	return scanner
}

// loadMetadata reads the file once to cache count and first event
func (r *Replayer) loadMetadata() error {
	if r.loaded {
		return nil
	}

	file, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("failed to open recording file: %w", err)
	}
	defer file.Close()

	scanner := newScanner(file)
	r.eventCount = 0

	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		r.eventCount++
		if r.eventCount == 1 {
			event, err := encoding.DecodeJSON(scanner.Bytes())
			if err != nil {
				return fmt.Errorf("failed to parse first event: %w", err)
			}
			r.firstEvent = &event
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	r.loaded = true
	return nil
}

// Replay sends recorded events to output until the file ends (or, when
// looping, until ctx is cancelled)
func (r *Replayer) Replay(ctx context.Context, output chan<- models.Event) error {
	for {
		if err := r.replayOnce(ctx, output); err != nil {
			return err
		}
		if !r.loop {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (r *Replayer) replayOnce(ctx context.Context, output chan<- models.Event) error {
	file, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("failed to open recording file: %w", err)
	}
	defer file.Close()

	scanner := newScanner(file)
	var last time.Time
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		event, err := encoding.DecodeJSON(scanner.Bytes())
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}

		emitted, err := time.Parse(time.RFC3339Nano, event.Timestamp)
		if err != nil {
			return fmt.Errorf("line %d: invalid ts %q: %w", lineNum, event.Timestamp, err)
		}

		if !last.IsZero() {
			if delay := time.Duration(float64(emitted.Sub(last)) / r.speed); delay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
			}
		}
		last = emitted

		select {
		case <-ctx.Done():
			return ctx.Err()
		case output <- event:
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}
	return nil
}

// CountEvents returns the number of events in the recording
func (r *Replayer) CountEvents() (int, error) {
	if err := r.loadMetadata(); err != nil {
		return 0, err
	}
	return r.eventCount, nil
}

// FirstEvent returns the first event in the recording
func (r *Replayer) FirstEvent() (*models.Event, error) {
	if err := r.loadMetadata(); err != nil {
		return nil, err
	}
	if r.firstEvent == nil {
		return nil, fmt.Errorf("recording %s is empty", r.path)
	}
	return r.firstEvent, nil
}
