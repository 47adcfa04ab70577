package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func section(id byte, content ...byte) []byte {
	return append([]byte{id, byte(len(content))}, content...)
}

func name(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

func export(n string, kind, index byte) []byte {
	return append(name(n), kind, index)
}

// buildModule assembles a minimal transform module: a bump allocator,
// no-op frees, and the given bodies for transform and last_error.
func buildModule(transform, lastError []byte, data []byte) []byte {
	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	wasm = append(wasm, section(0x01,
		0x04,
		0x60, 0x01, 0x7f, 0x01, 0x7f, // (i32) -> i32
		0x60, 0x02, 0x7f, 0x7f, 0x00, // (i32, i32)
		0x60, 0x01, 0x7f, 0x00, // (i32)
		0x60, 0x00, 0x01, 0x7f, // () -> i32
	)...)
	wasm = append(wasm, section(0x03, 0x05, 0x00, 0x01, 0x00, 0x02, 0x03)...)
	wasm = append(wasm, section(0x05, 0x01, 0x00, 0x01)...)
	wasm = append(wasm, section(0x06, 0x01, 0x7f, 0x01, 0x41, 0x80, 0x08, 0x0b)...) // heap starts at 1024

	var exports []byte
	exports = append(exports, 0x06)
	exports = append(exports, export("memory", 0x02, 0)...)
	exports = append(exports, export("alloc", 0x00, 0)...)
	exports = append(exports, export("dealloc", 0x00, 1)...)
	exports = append(exports, export("transform", 0x00, 2)...)
	exports = append(exports, export("free_string", 0x00, 3)...)
	exports = append(exports, export("last_error", 0x00, 4)...)
	wasm = append(wasm, section(0x07, exports...)...)

	alloc := []byte{0x00, 0x23, 0x00, 0x23, 0x00, 0x20, 0x00, 0x6a, 0x24, 0x00, 0x0b}
	noop := []byte{0x00, 0x0b}

	code := []byte{0x05}
	for _, body := range [][]byte{alloc, noop, transform, noop, lastError} {
		code = append(code, byte(len(body)))
		code = append(code, body...)
	}
	wasm = append(wasm, section(0x0a, code...)...)

	if data != nil {
		seg := []byte{0x01, 0x00, 0x41, 0x10, 0x0b} // one segment at offset 16
		seg = append(seg, byte(len(data)))
		seg = append(seg, data...)
		wasm = append(wasm, section(0x0b, seg...)...)
	}
	return wasm
}

var (
	identityBody = []byte{0x00, 0x20, 0x00, 0x0b} // return the input pointer
	failBody     = []byte{0x00, 0x41, 0x00, 0x0b} // return 0
	noErrorBody  = []byte{0x00, 0x41, 0x00, 0x0b}
	errorAtBody  = []byte{0x00, 0x41, 0x10, 0x0b} // return 16
)

func TestEngine_IdentityTransform(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngineFromBytes(ctx, buildModule(identityBody, noErrorBody, nil))
	require.NoError(t, err)
	defer engine.Close(ctx)

	out, err := engine.Transform(ctx, `{"vessel_speed":8.5}`)
	require.NoError(t, err)
	assert.Equal(t, `{"vessel_speed":8.5}`, out)

	point := models.NewDataPoint(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 50, "Anchor", 1)
	point.Values["vessel_speed"] = 0
	got, err := engine.TransformPoint(ctx, point)
	require.NoError(t, err)
	assert.Equal(t, point, got)
}

func TestEngine_TransformSeries(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngineFromBytes(ctx, buildModule(identityBody, noErrorBody, nil))
	require.NoError(t, err)
	defer engine.Close(ctx)

	series := &models.Series{}
	for i := 0; i < 3; i++ {
		p := models.NewDataPoint(time.UnixMilli(int64(i)*1000), i, "Transit", 1)
		p.Values["fuel_level"] = float64(70 - i)
		series.Points = append(series.Points, p)
	}

	require.NoError(t, engine.TransformSeries(ctx, series))
	assert.Equal(t, 68.0, series.Points[2].Values["fuel_level"])
}

func TestEngine_TransformErrorMessage(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngineFromBytes(ctx, buildModule(failBody, errorAtBody, []byte("bad point\x00")))
	require.NoError(t, err)
	defer engine.Close(ctx)

	_, err = engine.Transform(ctx, "{}")
	assert.EqualError(t, err, "transform error: bad point")
}

func TestEngine_TransformErrorWithoutMessage(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngineFromBytes(ctx, buildModule(failBody, noErrorBody, nil))
	require.NoError(t, err)
	defer engine.Close(ctx)

	_, err = engine.TransformPoint(ctx, models.DataPoint{Values: map[string]float64{}})
	assert.ErrorContains(t, err, "without an error message")
}

func TestEngine_LoadErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewEngine(ctx, filepath.Join(t.TempDir(), "missing.wasm"))
	assert.ErrorContains(t, err, "failed to read wasm file")

	bad := filepath.Join(t.TempDir(), "bad.wasm")
	require.NoError(t, os.WriteFile(bad, []byte("not wasm"), 0o644))
	_, err = NewEngine(ctx, bad)
	assert.ErrorContains(t, err, "failed to compile")

	empty := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	_, err = NewEngineFromBytes(ctx, empty)
	assert.ErrorContains(t, err, "does not export alloc")
}
