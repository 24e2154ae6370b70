//go:build !windows

package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	initOnce sync.Once
	initErr  error
)

// InitOnnxRuntime loads the ONNX Runtime shared library. Only the first call
// has an effect; later calls return the result of the first.
func InitOnnxRuntime(dylib string) error {
	initOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}
		if dylib == "" {
			initErr = errors.New("ONNX_RUNTIME_DYLIB must be set to load onnx models")
			return
		}
		ort.SetSharedLibraryPath(dylib)
		if err := ort.InitializeEnvironment(); err != nil {
			initErr = fmt.Errorf("could not init ONNX Runtime: %w", err)
		}
	})
	return initErr
}

// OnnxModel runs a regressor exported with skl2onnx. The graph must take a
// single float tensor of shape [batch, 2] and produce a float tensor of shape
// [batch] or [batch, 1].
type OnnxModel struct {
	session     *ort.DynamicAdvancedSession
	inputName   string
	outputName  string
	outputShape ort.Shape
}

// singleRowShape returns dims for a batch of one. Dynamic dimensions are
// reported as -1 and are fixed to 1; a scalar output becomes [1].
func singleRowShape(dims ort.Shape) ort.Shape {
	if len(dims) == 0 {
		return ort.NewShape(1)
	}
	shape := make(ort.Shape, len(dims))
	for i, d := range dims {
		if i == 0 || d <= 0 {
			d = 1
		}
		shape[i] = d
	}
	return shape
}

func LoadOnnxModel(path string) (*OnnxModel, error) {
	onnxBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read onnx model: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(onnxBytes)
	if err != nil {
		return nil, fmt.Errorf("inspect onnx model: %w", err)
	}
	if len(inputs) != 1 || len(outputs) == 0 {
		return nil, fmt.Errorf("onnx model must have one input and at least one output, found %d inputs and %d outputs", len(inputs), len(outputs))
	}
	if dims := inputs[0].Dimensions; len(dims) == 2 && dims[1] > 0 && dims[1] != FeatureCount {
		return nil, fmt.Errorf("%w: onnx input '%s' has shape %v", ErrFeatureCountInvalid, inputs[0].Name, dims)
	}

	session, err := ort.NewDynamicAdvancedSessionWithONNXData(
		onnxBytes,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory session: %w", err)
	}

	return &OnnxModel{
		session:     session,
		inputName:   inputs[0].Name,
		outputName:  outputs[0].Name,
		outputShape: singleRowShape(outputs[0].Dimensions),
	}, nil
}

func (m *OnnxModel) Predict(_ context.Context, features []float64) (float64, error) {
	if err := checkFeatures(features); err != nil {
		return 0, err
	}

	data := make([]float32, len(features))
	for i, f := range features {
		data[i] = float32(f)
	}

	inT, err := ort.NewTensor(ort.NewShape(1, FeatureCount), data)
	if err != nil {
		return 0, err
	}
	defer inT.Destroy()

	outT, err := ort.NewEmptyTensor[float32](m.outputShape)
	if err != nil {
		return 0, err
	}
	defer outT.Destroy()

	if err := m.session.Run([]ort.Value{inT}, []ort.Value{outT}); err != nil {
		return 0, fmt.Errorf("session run error: %w", err)
	}

	out := outT.GetData()
	if len(out) == 0 {
		return 0, fmt.Errorf("onnx output '%s' is empty", m.outputName)
	}
	return float64(out[0]), nil
}

func (m *OnnxModel) Release() {
	m.session.Destroy()
}

// ShutdownOnnxRuntime releases the ONNX Runtime environment if it was started.
func ShutdownOnnxRuntime() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}
