package core

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearModelPredict(t *testing.T) {
	model := &LinearModel{Intercept: 1.5, Coefficients: []float64{3.0, 2.5}}

	y, err := model.Predict(context.Background(), []float64{2.0, 4})
	require.NoError(t, err)
	assert.InDelta(t, 17.5, y, 1e-9)

	_, err = model.Predict(context.Background(), []float64{2.0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLinearModelConcurrentPredict(t *testing.T) {
	model := &LinearModel{Intercept: 0, Coefficients: []float64{1, 1}}

	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			y, err := model.Predict(context.Background(), []float64{float64(i), 1})
			assert.NoError(t, err)
			assert.Equal(t, float64(i+1), y)
		}(i)
	}
	wg.Wait()
}

func TestLoadLinearModelRejectsNonFinite(t *testing.T) {
	// JSON has no NaN literal; an overflowing exponent is the closest thing.
	path := writeFile(t, filepath.Join(t.TempDir(), "m.json"), `{"intercept": 1e400, "coefficients": [1, 1]}`)
	_, err := LoadLinearModel(path)
	assert.Error(t, err)
}

func TestLoadLinearModelFeatureNames(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "m.json"), `{"intercept": 1, "coefficients": [1, 1], "feature_names": ["a"]}`)
	_, err := LoadLinearModel(path)
	assert.ErrorContains(t, err, "feature names")
}
