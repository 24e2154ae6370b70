package api

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type PredictionRequest struct {
	EngineSize *float64 `json:"engineSize" schema:"engineSize"`
	Cylinders  *float64 `json:"cylinders" schema:"cylinders"`

	// Field names used by the first version of the endpoint.
	Input1 *float64 `json:"input1,omitempty" schema:"input1"`
	Input2 *float64 `json:"input2,omitempty" schema:"input2"`
}

// Features returns the engine size and cylinder count of the request, falling
// back to the legacy input1/input2 fields when the named fields are absent.
// The cylinder count may be sent as a float but must be a whole number.
func (r PredictionRequest) Features() (float64, int, error) {
	engineSize := r.EngineSize
	if engineSize == nil {
		engineSize = r.Input1
	}
	if engineSize == nil {
		return 0, 0, errors.New("missing required field 'engineSize'")
	}

	field, cylinders := "cylinders", r.Cylinders
	if cylinders == nil {
		field, cylinders = "input2", r.Input2
	}
	if cylinders == nil {
		return 0, 0, errors.New("missing required field 'cylinders'")
	}
	if *cylinders != math.Trunc(*cylinders) || math.Abs(*cylinders) > math.MaxInt32 {
		return 0, 0, fmt.Errorf("field '%s' must be a whole number of cylinders", field)
	}
	return *engineSize, int(*cylinders), nil
}

type PredictionResponse struct {
	Prediction float64 `json:"prediction"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type HomeResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"modelLoaded"`
	Error       string `json:"error,omitempty"`
}

type ModelInfo struct {
	Type        string    `json:"type"`
	Path        string    `json:"path"`
	Checksum    string    `json:"checksum"`
	Version     string    `json:"version,omitempty"`
	Description string    `json:"description,omitempty"`
	Features    []string  `json:"features,omitempty"`
	LoadedAt    time.Time `json:"loadedAt"`
}

type ModelLoad struct {
	Id           uuid.UUID `json:"id"`
	ArtifactPath string    `json:"artifactPath"`
	ModelType    string    `json:"modelType,omitempty"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	Checksum     string    `json:"checksum,omitempty"`
	LoadTime     time.Time `json:"loadTime"`
}

type ModelLoadsParams struct {
	Limit *int `schema:"limit"`
}
