package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/models"
)

func testSeries() *models.Series {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := &models.Series{
		RunID:    "run-abc",
		Vessel:   "armada-7801",
		Seed:     42,
		Range:    models.DateRange{From: from, To: from.Add(24 * time.Hour)},
		Schedule: "daily",
	}
	for i := 0; i < 3; i++ {
		p := models.NewDataPoint(from.Add(time.Duration(i)*time.Hour), i, "Transit", 1)
		p.Values["engine_main_temp"] = 60 + float64(i)*10
		series.Points = append(series.Points, p)
	}
	return series
}

func TestStdoutWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	writer := NewStdoutWriter(&buf, FormatJSON, nil)

	if err := writer.Write(testSeries()); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	var parsed models.Series
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\nOutput: %s", err, buf.String())
	}
	if parsed.RunID != "run-abc" {
		t.Errorf("expected run_id 'run-abc', got '%s'", parsed.RunID)
	}
	if len(parsed.Points) != 3 || parsed.Points[2].Values["engine_main_temp"] != 80 {
		t.Errorf("points not preserved: %+v", parsed.Points)
	}
}

func TestStdoutWriter_NDJSON(t *testing.T) {
	var buf bytes.Buffer
	writer := NewStdoutWriter(&buf, FormatNDJSON, nil)

	if err := writer.Write(testSeries()); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	lines := 0
	for scanner.Scan() {
		var raw map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			t.Fatalf("line %d is not JSON: %v", lines, err)
		}
		if raw["time_percent"] != float64(lines) {
			t.Errorf("line %d: time_percent = %v", lines, raw["time_percent"])
		}
		if _, ok := raw["engine_main_temp"]; !ok {
			t.Errorf("line %d: sensor field missing", lines)
		}
		lines++
	}
	if lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}
}

func TestStdoutWriter_Table(t *testing.T) {
	var buf bytes.Buffer
	sensor, _ := catalog.Default().Get("engine_main_temp")
	writer := NewStdoutWriter(&buf, FormatTable, []catalog.Sensor{sensor})

	if err := writer.Write(testSeries()); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "engine_main_temp (°C)") {
		t.Errorf("missing sensor header:\n%s", out)
	}
	if !strings.Contains(out, "2024-01-01T02:00:00.000Z") {
		t.Errorf("missing formatted time:\n%s", out)
	}
	if !strings.Contains(out, "█") {
		t.Errorf("missing range bar:\n%s", out)
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
		{1.5, "████"},
		{-1, "░░░░"},
	}
	for _, tt := range tests {
		if got := renderBar(tt.score, 4); got != tt.want {
			t.Errorf("renderBar(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewFileWriter(dir, FormatNDJSON)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}

	series := testSeries()
	if err := writer.Write(series); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	path := writer.Path(series)
	if !strings.HasSuffix(path, "fleetsynth_armada-7801_run-abc.ndjson") {
		t.Errorf("unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if n := strings.Count(string(data), "\n"); n != 3 {
		t.Errorf("expected 3 lines, got %d", n)
	}
}

func TestFileWriter_RejectsTable(t *testing.T) {
	if _, err := NewFileWriter(t.TempDir(), FormatTable); err == nil {
		t.Error("expected error for table file output")
	}
}

func TestMultiWriter(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	multi := NewMultiWriter(
		NewStdoutWriter(&buf1, FormatJSON, nil),
		NewStdoutWriter(&buf2, FormatNDJSON, nil),
	)

	if err := multi.Write(testSeries()); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if buf1.Len() == 0 || buf2.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
	if err := multi.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"json", "ndjson", "table", ""} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q) unexpected error: %v", in, err)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Error("expected error for csv")
	}
}
