package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/models"
)

// Format selects how a series is rendered
type Format string

const (
	FormatJSON   Format = "json"   // whole series, indented
	FormatNDJSON Format = "ndjson" // one flat point per line
	FormatTable  Format = "table"  // human-readable columns
)

// ParseFormat validates a user-supplied output format
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatNDJSON, FormatTable:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", &models.ValidationError{Field: "output", Message: fmt.Sprintf("unknown format %q (expected json, ndjson or table)", s)}
}

// Writer defines the interface for series output writers
type Writer interface {
	Write(series *models.Series) error
	Close() error
}

// StdoutWriter renders series to a stream, stdout in the CLI
type StdoutWriter struct {
	out     io.Writer
	format  Format
	sensors []catalog.Sensor
	mu      sync.Mutex
}

// NewStdoutWriter creates a stream writer. sensors picks the table columns;
// the other formats ignore it.
func NewStdoutWriter(out io.Writer, format Format, sensors []catalog.Sensor) *StdoutWriter {
	return &StdoutWriter{
		out:     out,
		format:  format,
		sensors: sensors,
	}
}

func (w *StdoutWriter) Write(series *models.Series) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.format {
	case FormatTable:
		return writeTable(w.out, series, w.sensors)
	case FormatNDJSON:
		return writeNDJSON(w.out, series)
	default:
		return writeJSON(w.out, series)
	}
}

// Close is a no-op for stream writers
func (w *StdoutWriter) Close() error {
	return nil
}

func writeJSON(out io.Writer, series *models.Series) error {
	data, err := json.MarshalIndent(series, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}

func writeNDJSON(out io.Writer, series *models.Series) error {
	enc := json.NewEncoder(out)
	for _, p := range series.Points {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to write point %d: %w", p.TimePercent, err)
		}
	}
	return nil
}

// FileWriter writes each series to its own file in a directory
type FileWriter struct {
	dir    string
	format Format
	mu     sync.Mutex
}

// NewFileWriter creates the directory if needed
func NewFileWriter(dir string, format Format) (*FileWriter, error) {
	if format == FormatTable {
		return nil, &models.ValidationError{Field: "output", Message: "table output cannot be written to files"}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &FileWriter{
		dir:    dir,
		format: format,
	}, nil
}

// Path returns the file a series is written to
func (w *FileWriter) Path(series *models.Series) string {
	ext := "json"
	if w.format == FormatNDJSON {
		ext = "ndjson"
	}
	vessel := series.Vessel
	if vessel == "" {
		vessel = "fleet"
	}
	return filepath.Join(w.dir, fmt.Sprintf("fleetsynth_%s_%s.%s", vessel, series.RunID, ext))
}

func (w *FileWriter) Write(series *models.Series) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	file, err := os.Create(w.Path(series))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if w.format == FormatNDJSON {
		err = writeNDJSON(file, series)
	} else {
		err = writeJSON(file, series)
	}
	if err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Close is a no-op for file writer
func (w *FileWriter) Close() error {
	return nil
}

// MultiWriter writes to multiple destinations
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a writer that writes to multiple destinations
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes to all underlying writers, stopping at the first error
func (w *MultiWriter) Write(series *models.Series) error {
	for _, writer := range w.writers {
		if err := writer.Write(series); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all underlying writers
func (w *MultiWriter) Close() error {
	for _, writer := range w.writers {
		if err := writer.Close(); err != nil {
			return err
		}
	}
	return nil
}
