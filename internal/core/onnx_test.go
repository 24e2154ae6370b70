//go:build !windows

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	ort "github.com/yalue/onnxruntime_go"
)

func TestSingleRowShape(t *testing.T) {
	for name, tc := range map[string]struct {
		dims     ort.Shape
		expected ort.Shape
	}{
		"Rank1Dynamic": {dims: ort.NewShape(-1), expected: ort.NewShape(1)},
		"Rank1Fixed":   {dims: ort.NewShape(8), expected: ort.NewShape(1)},
		"Rank2Dynamic": {dims: ort.NewShape(-1, 1), expected: ort.NewShape(1, 1)},
		"Rank2AllDyn":  {dims: ort.NewShape(-1, -1), expected: ort.NewShape(1, 1)},
		"Scalar":       {dims: ort.Shape{}, expected: ort.NewShape(1)},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, singleRowShape(tc.dims))
		})
	}
}

func TestLoadOnnxModelErrors(t *testing.T) {
	_, err := LoadOnnxModel(t.TempDir() + "/missing.onnx")
	assert.ErrorContains(t, err, "read onnx model")
}
