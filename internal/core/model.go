package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ModelType identifies the on-disk format of a regression artifact.
type ModelType string

const (
	Linear ModelType = "linear"
	Onnx   ModelType = "onnx"
)

// FeatureCount is the size of the feature vector every predictor consumes:
// engine size followed by cylinder count.
const FeatureCount = 2

var (
	ErrModelNotLoaded      = errors.New("model not loaded")
	ErrInvalidInput        = errors.New("invalid input values")
	ErrInference           = errors.New("inference failed")
	ErrUnsupportedModel    = errors.New("unsupported model type")
	ErrFeatureCountInvalid = fmt.Errorf("model must accept exactly %d features", FeatureCount)
)

// Predictor maps a feature vector to a single numeric prediction. Implementations
// are read-only after loading and must be safe for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (float64, error)

	Release()
}

type ModelLoader func(path string) (Predictor, error)

type LoaderConfig struct {
	OnnxRuntimeDylib string
}

func NewModelLoaders(cfg LoaderConfig) map[ModelType]ModelLoader {
	return map[ModelType]ModelLoader{
		Linear: func(path string) (Predictor, error) {
			model, err := LoadLinearModel(path)
			if err != nil {
				return nil, err
			}
			return model, nil
		},
		Onnx: func(path string) (Predictor, error) {
			if err := InitOnnxRuntime(cfg.OnnxRuntimeDylib); err != nil {
				return nil, err
			}
			model, err := LoadOnnxModel(path)
			if err != nil {
				return nil, err
			}
			return model, nil
		},
	}
}

// InferModelType guesses the artifact format from its file extension.
func InferModelType(path string) (ModelType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return Linear, nil
	case ".onnx":
		return Onnx, nil
	default:
		return "", fmt.Errorf("%w: cannot infer model type from '%s'", ErrUnsupportedModel, path)
	}
}

func checkFeatures(features []float64) error {
	if len(features) != FeatureCount {
		return fmt.Errorf("%w: expected %d features, got %d", ErrInvalidInput, FeatureCount, len(features))
	}
	return nil
}
