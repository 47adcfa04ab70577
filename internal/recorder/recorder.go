package recorder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/armadafleet/fleetsynth/internal/encoding"
	"github.com/armadafleet/fleetsynth/internal/models"
)

// Recorder appends point events to an NDJSON file, one event per line
type Recorder struct {
	path    string
	file    *os.File
	writer  *bufio.Writer
	encoder *encoding.JSONEncoder
	count   int
	mu      sync.Mutex
}

// NewRecorder creates (or truncates) the recording file
func NewRecorder(path string) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording file: %w", err)
	}

	return &Recorder{
		path:    path,
		file:    file,
		writer:  bufio.NewWriter(file),
		encoder: encoding.NewJSONEncoder(),
	}, nil
}

// Record encodes one event and writes it as a line
func (r *Recorder) Record(event models.Event) error {
	data, err := r.encoder.Encode(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %d: %w", event.Meta.Sequence, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := r.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	r.count++
	return nil
}

// RecordFromChannel records events until the channel closes or ctx is
// cancelled, then closes the file. onEntry runs after every written event.
func (r *Recorder) RecordFromChannel(ctx context.Context, events <-chan models.Event, onEntry func(models.Event)) error {
	for {
		select {
		case <-ctx.Done():
			return r.Close()
		case event, ok := <-events:
			if !ok {
				return r.Close()
			}
			if err := r.Record(event); err != nil {
				r.Close()
				return err
			}
			if onEntry != nil {
				onEntry(event)
			}
		}
	}
}

// Count returns the number of events written
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Path returns the recording file path
func (r *Recorder) Path() string {
	return r.path
}

// Flush flushes buffered lines to disk
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writer.Flush()
}

// Close flushes and closes the file. Closing twice is a no-op.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	file := r.file
	r.file = nil

	if err := r.writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
