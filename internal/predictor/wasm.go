package predictor

import (
	"context"
	"os"
	"sync"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// Wasm runs a predictor compiled to WebAssembly. The module must export
//
//	memory
//	alloc(size i32) i32                  returns a pointer to size writable bytes
//	predict(ptr, rows, cols i32) f64     reads rows*cols little endian float64 values
//
// The window is written row by row at the pointer returned by alloc.
// Calls are serialized; a module instance is not safe for concurrent use.
type Wasm struct {
	mu      sync.Mutex
	ctx     context.Context
	runtime wazero.Runtime
	module  api.Module
	alloc   api.Function
	predict api.Function
}

// NewWasm loads the predictor module at path.
func NewWasm(ctx context.Context, path string) (*Wasm, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Newf(errors.ErrCodePredictorLoadFailed, "file does not exist: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodePredictorLoadFailed, err, "failed to read %s", path)
	}

	return NewWasmFromBytes(ctx, b)
}

// NewWasmFromBytes compiles and instantiates a predictor module.
func NewWasmFromBytes(ctx context.Context, b []byte) (*Wasm, error) {
	// a dedicated runtime per predictor so modules never share state
	r := wazero.NewRuntime(ctx)

	w, err := instantiate(ctx, r, b)
	if err != nil {
		_ = r.Close(ctx)

		return nil, err
	}

	return w, nil
}

func instantiate(ctx context.Context, r wazero.Runtime, b []byte) (*Wasm, error) {
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		return nil, errors.Wrap(errors.ErrCodePredictorLoadFailed, "failed to instantiate wasi", err)
	}

	code, err := r.CompileModule(ctx, b)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePredictorLoadFailed, "failed to compile predictor module", err)
	}

	module, err := r.InstantiateModule(ctx, code, wazero.NewModuleConfig())
	if err != nil {
		// modules built as commands exit after _start; exports stay callable
		if exitErr, ok := err.(*sys.ExitError); !ok || exitErr.ExitCode() != 0 {
			return nil, errors.Wrap(errors.ErrCodePredictorLoadFailed, "failed to instantiate predictor module", err)
		}
	}

	if module.Memory() == nil {
		return nil, errors.New(errors.ErrCodePredictorLoadFailed, "memory is not exported")
	}

	alloc := module.ExportedFunction("alloc")
	if alloc == nil {
		return nil, errors.New(errors.ErrCodePredictorLoadFailed, "alloc is not exported")
	}

	predict := module.ExportedFunction("predict")
	if predict == nil {
		return nil, errors.New(errors.ErrCodePredictorLoadFailed, "predict is not exported")
	}

	return &Wasm{
		ctx:     ctx,
		runtime: r,
		module:  module,
		alloc:   alloc,
		predict: predict,
	}, nil
}

// Predict passes the window to the module's predict export.
func (w *Wasm) Predict(window []types.FeatureVector) (float64, error) {
	if len(window) == 0 {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "empty prediction window")
	}

	cols := len(window[0])
	for i, row := range window {
		if len(row) != cols {
			return 0, errors.Newf(errors.ErrCodeMismatchedLength, "window row %d has %d features, expected %d", i, len(row), cols)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	size := uint32(len(window) * cols * 8)

	res, err := w.alloc.Call(w.ctx, api.EncodeU32(size))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodePredictionFailed, "alloc failed", err)
	}

	if len(res) != 1 {
		return 0, errors.New(errors.ErrCodePredictionFailed, "invalid alloc signature")
	}

	ptr := api.DecodeU32(res[0])
	mem := w.module.Memory()

	offset := ptr
	for _, row := range window {
		for _, v := range row {
			if !mem.WriteFloat64Le(offset, v) {
				return 0, errors.Newf(errors.ErrCodePredictionFailed, "window does not fit module memory at offset %d", offset)
			}

			offset += 8
		}
	}

	res, err = w.predict.Call(w.ctx, api.EncodeU32(ptr), api.EncodeI32(int32(len(window))), api.EncodeI32(int32(cols)))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodePredictionFailed, "predict failed", err)
	}

	if len(res) != 1 {
		return 0, errors.New(errors.ErrCodePredictionFailed, "invalid predict signature")
	}

	return api.DecodeF64(res[0]), nil
}

// Close releases the module and its runtime.
func (w *Wasm) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.runtime.Close(w.ctx)
}
