package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// LinearModel is a least squares regression exported from scikit-learn as its
// coef_ and intercept_ attributes.
type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	FeatureNames []string  `json:"feature_names,omitempty"`
}

func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading linear model: %w", err)
	}

	var model LinearModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("error decoding linear model %s: %w", path, err)
	}

	if len(model.Coefficients) != FeatureCount {
		return nil, fmt.Errorf("%w: linear model has %d coefficients", ErrFeatureCountInvalid, len(model.Coefficients))
	}
	if len(model.FeatureNames) != 0 && len(model.FeatureNames) != len(model.Coefficients) {
		return nil, fmt.Errorf("linear model has %d feature names for %d coefficients", len(model.FeatureNames), len(model.Coefficients))
	}

	for _, c := range append([]float64{model.Intercept}, model.Coefficients...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, errors.New("linear model contains non-finite parameters")
		}
	}

	return &model, nil
}

func (m *LinearModel) Predict(_ context.Context, features []float64) (float64, error) {
	if err := checkFeatures(features); err != nil {
		return 0, err
	}

	y := m.Intercept
	for i, x := range features {
		y += m.Coefficients[i] * x
	}
	return y, nil
}

func (m *LinearModel) Release() {}
