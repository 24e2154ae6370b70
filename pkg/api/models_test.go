package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestPredictionRequestFeatures(t *testing.T) {
	engineSize, cylinders, err := PredictionRequest{EngineSize: ptr(2.0), Cylinders: ptr(4.0)}.Features()
	require.NoError(t, err)
	assert.Equal(t, 2.0, engineSize)
	assert.Equal(t, 4, cylinders)

	engineSize, cylinders, err = PredictionRequest{Input1: ptr(1.6), Input2: ptr(6.0)}.Features()
	require.NoError(t, err)
	assert.Equal(t, 1.6, engineSize)
	assert.Equal(t, 6, cylinders)

	_, cylinders, err = PredictionRequest{EngineSize: ptr(2.0), Cylinders: ptr(8.0), Input2: ptr(4.0)}.Features()
	require.NoError(t, err)
	assert.Equal(t, 8, cylinders)
}

func TestPredictionRequestFeaturesErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		req PredictionRequest
		msg string
	}{
		"MissingEngineSize": {PredictionRequest{Cylinders: ptr(4.0)}, "missing required field 'engineSize'"},
		"MissingCylinders":  {PredictionRequest{EngineSize: ptr(2.0)}, "missing required field 'cylinders'"},
		"FractionalCyl":     {PredictionRequest{EngineSize: ptr(2.0), Cylinders: ptr(4.5)}, "field 'cylinders' must be a whole number of cylinders"},
		"FractionalInput2":  {PredictionRequest{Input1: ptr(2.0), Input2: ptr(4.5)}, "field 'input2' must be a whole number of cylinders"},
		"HugeCylinders":     {PredictionRequest{EngineSize: ptr(2.0), Cylinders: ptr(1e300)}, "field 'cylinders' must be a whole number of cylinders"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := tc.req.Features()
			assert.EqualError(t, err, tc.msg)
		})
	}
}
