package predictor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// lastRowModule is a minimal predictor module: alloc always returns 1024 and
// predict returns the first value of the last row.
var lastRowModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// types: (i32) -> i32, (i32, i32, i32) -> f64
	0x01, 0x0d, 0x02, 0x60, 0x01, 0x7f, 0x01, 0x7f, 0x60, 0x03, 0x7f, 0x7f, 0x7f, 0x01, 0x7c,
	// functions
	0x03, 0x03, 0x02, 0x00, 0x01,
	// one page of memory
	0x05, 0x03, 0x01, 0x00, 0x01,
	// exports: memory, alloc, predict
	0x07, 0x1c, 0x03,
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, 0x02, 0x00,
	0x05, 0x61, 0x6c, 0x6c, 0x6f, 0x63, 0x00, 0x00,
	0x07, 0x70, 0x72, 0x65, 0x64, 0x69, 0x63, 0x74, 0x00, 0x01,
	// code
	0x0a, 0x1b, 0x02,
	0x05, 0x00, 0x41, 0x80, 0x08, 0x0b,
	0x13, 0x00, 0x20, 0x00, 0x20, 0x01, 0x41, 0x01, 0x6b, 0x20, 0x02, 0x6c, 0x41, 0x03, 0x74, 0x6a, 0x2b, 0x03, 0x00, 0x0b,
}

// emptyModule is a valid module without exports.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

type WasmTestSuite struct {
	suite.Suite
	ctx context.Context
}

func TestWasmSuite(t *testing.T) {
	suite.Run(t, new(WasmTestSuite))
}

func (suite *WasmTestSuite) SetupTest() {
	suite.ctx = context.Background()
}

func (suite *WasmTestSuite) TestPredict() {
	w, err := NewWasmFromBytes(suite.ctx, lastRowModule)
	suite.Require().NoError(err)

	defer w.Close()

	y, err := w.Predict(window(0.2, 0.35, 0.8))
	suite.Require().NoError(err)
	suite.Equal(0.8, y)

	// repeated calls reuse the module
	y, err = w.Predict(window(0.4))
	suite.Require().NoError(err)
	suite.Equal(0.4, y)
}

func (suite *WasmTestSuite) TestLoadFromFile() {
	path := filepath.Join(suite.T().TempDir(), "model.wasm")
	suite.Require().NoError(os.WriteFile(path, lastRowModule, 0o600))

	w, err := NewWasm(suite.ctx, path)
	suite.Require().NoError(err)
	suite.NoError(w.Close())
}

func (suite *WasmTestSuite) TestFileNotFound() {
	w, err := NewWasm(suite.ctx, "/nonexistent/path/model.wasm")
	suite.Nil(w)
	suite.True(errors.HasCode(err, errors.ErrCodePredictorLoadFailed))
	suite.Contains(err.Error(), "file does not exist")
}

func (suite *WasmTestSuite) TestRejectsInvalidModules() {
	tests := []struct {
		name  string
		bytes []byte
		want  string
	}{
		{"garbage", []byte{0x01, 0x02, 0x03}, "failed to compile"},
		{"no exports", emptyModule, "memory is not exported"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w, err := NewWasmFromBytes(suite.ctx, tt.bytes)
			suite.Nil(w)
			suite.True(errors.HasCode(err, errors.ErrCodePredictorLoadFailed))
			suite.Contains(err.Error(), tt.want)
		})
	}
}

func (suite *WasmTestSuite) TestRaggedWindow() {
	w, err := NewWasmFromBytes(suite.ctx, lastRowModule)
	suite.Require().NoError(err)

	defer w.Close()

	_, err = w.Predict([]types.FeatureVector{{1, 2}, {3}})
	suite.True(errors.HasCode(err, errors.ErrCodeMismatchedLength))

	_, err = w.Predict(nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}
