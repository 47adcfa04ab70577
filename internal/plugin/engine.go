package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Exports a transform module must provide. Strings cross the boundary as
// NUL-terminated UTF-8 in guest memory.
const (
	exportAlloc      = "alloc"       // (size i32) -> ptr
	exportDealloc    = "dealloc"     // (ptr, size i32)
	exportTransform  = "transform"   // (ptr) -> ptr, 0 on failure
	exportFreeString = "free_string" // (ptr)
	exportLastError  = "last_error"  // () -> ptr, 0 if none
)

var requiredExports = []string{exportAlloc, exportDealloc, exportTransform, exportFreeString, exportLastError}

// Engine runs a WASM module that rewrites data points as JSON. A module
// instance is not safe for concurrent calls, so calls are serialized.
type Engine struct {
	runtime wazero.Runtime
	module  api.Module
	mu      sync.Mutex
}

// NewEngine loads a transform module from disk
func NewEngine(ctx context.Context, wasmPath string) (*Engine, error) {
	wasmBytes, err := os.ReadFile(wasmPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read wasm file: %w", err)
	}
	return NewEngineFromBytes(ctx, wasmBytes)
}

// NewEngineFromBytes compiles and instantiates a transform module
func NewEngineFromBytes(ctx context.Context, wasmBytes []byte) (*Engine, error) {
	r := wazero.NewRuntime(ctx)

	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("failed to compile wasm module: %w", err)
	}

	// guest stdout goes to stderr so it cannot corrupt generated output
	config := wazero.NewModuleConfig().WithStdout(os.Stderr).WithStderr(os.Stderr)
	mod, err := r.InstantiateModule(ctx, compiled, config)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate wasm module: %w", err)
	}

	for _, name := range requiredExports {
		if mod.ExportedFunction(name) == nil {
			r.Close(ctx)
			return nil, fmt.Errorf("wasm module does not export %s", name)
		}
	}
	if mod.Memory() == nil {
		r.Close(ctx)
		return nil, fmt.Errorf("wasm module has no memory")
	}

	return &Engine{
		runtime: r,
		module:  mod,
	}, nil
}

// Close releases the runtime
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Transform passes input through the module's transform export
func (e *Engine) Transform(ctx context.Context, input string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ptr, size, err := e.writeString(ctx, input)
	if err != nil {
		return "", err
	}
	defer e.dealloc(ctx, ptr, size)

	results, err := e.module.ExportedFunction(exportTransform).Call(ctx, uint64(ptr))
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", exportTransform, err)
	}

	resPtr := uint32(results[0])
	if resPtr == 0 {
		return "", e.lastError(ctx)
	}
	defer e.freeString(ctx, resPtr)

	return e.readString(resPtr)
}

// TransformPoint round-trips one point through the module as flat JSON
func (e *Engine) TransformPoint(ctx context.Context, point models.DataPoint) (models.DataPoint, error) {
	data, err := json.Marshal(point)
	if err != nil {
		return models.DataPoint{}, fmt.Errorf("failed to marshal point: %w", err)
	}

	out, err := e.Transform(ctx, string(data))
	if err != nil {
		return models.DataPoint{}, fmt.Errorf("point %d: %w", point.TimePercent, err)
	}

	var transformed models.DataPoint
	if err := json.Unmarshal([]byte(out), &transformed); err != nil {
		return models.DataPoint{}, fmt.Errorf("point %d: transform returned invalid JSON: %w", point.TimePercent, err)
	}
	return transformed, nil
}

// TransformSeries rewrites every point of a series in place
func (e *Engine) TransformSeries(ctx context.Context, series *models.Series) error {
	for i, p := range series.Points {
		transformed, err := e.TransformPoint(ctx, p)
		if err != nil {
			return err
		}
		series.Points[i] = transformed
	}
	return nil
}

func (e *Engine) writeString(ctx context.Context, s string) (uint32, uint32, error) {
	nullTerminated := s + "\x00"
	size := uint32(len(nullTerminated))

	results, err := e.module.ExportedFunction(exportAlloc).Call(ctx, uint64(size))
	if err != nil {
		return 0, 0, fmt.Errorf("alloc failed: %w", err)
	}

	ptr := uint32(results[0])
	if !e.module.Memory().Write(ptr, []byte(nullTerminated)) {
		return 0, 0, fmt.Errorf("failed to write %d bytes to guest memory at %d", size, ptr)
	}
	return ptr, size, nil
}

func (e *Engine) dealloc(ctx context.Context, ptr, size uint32) {
	_, _ = e.module.ExportedFunction(exportDealloc).Call(ctx, uint64(ptr), uint64(size))
}

func (e *Engine) freeString(ctx context.Context, ptr uint32) {
	_, _ = e.module.ExportedFunction(exportFreeString).Call(ctx, uint64(ptr))
}

func (e *Engine) lastError(ctx context.Context) error {
	results, err := e.module.ExportedFunction(exportLastError).Call(ctx)
	if err != nil {
		return fmt.Errorf("failed to get last error: %w", err)
	}

	ptr := uint32(results[0])
	if ptr == 0 {
		return fmt.Errorf("transform failed without an error message")
	}

	msg, err := e.readString(ptr)
	if err != nil {
		return fmt.Errorf("failed to read error message: %w", err)
	}
	return fmt.Errorf("transform error: %s", msg)
}

func (e *Engine) readString(ptr uint32) (string, error) {
	mem := e.module.Memory()
	buf, ok := mem.Read(ptr, mem.Size()-ptr)
	if !ok {
		return "", fmt.Errorf("failed to read from memory at %d", ptr)
	}

	for i, b := range buf {
		if b == 0 {
			return string(buf[:i]), nil
		}
	}
	return "", fmt.Errorf("string not null-terminated")
}
