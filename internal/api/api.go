package api

import (
	"context"
	"errors"
	"fmt"
	"fuel-predictor/internal/core"
	"fuel-predictor/internal/database"
	"fuel-predictor/internal/metrics"
	"fuel-predictor/pkg/api"
	"log/slog"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

const (
	msgInvalidInput    = "Invalid input values"
	msgModelNotLoaded  = "Model not loaded"
	msgInferenceFailed = "Inference failed"

	homeMessage = "Fuel consumption prediction API"

	defaultLoadsLimit = 10
	maxLoadsLimit     = 100
)

type ServiceConfig struct {
	// StaticDir holds index.html and assets for the landing page. When empty
	// the home route answers with a liveness message instead.
	StaticDir string

	// InferenceTimeout bounds a single predictor invocation; zero disables it.
	InferenceTimeout time.Duration

	// UnavailableStatus is returned when no predictor is loaded.
	UnavailableStatus int
}

// PredictionService serves predictions from a predictor that was loaded once at
// startup. The load result is never modified, so handlers need no locking.
type PredictionService struct {
	model   core.LoadResult
	history *gorm.DB
	cfg     ServiceConfig
}

// NewPredictionService creates the service. history may be nil, in which case
// load history endpoints report that they are unavailable.
func NewPredictionService(model core.LoadResult, history *gorm.DB, cfg ServiceConfig) *PredictionService {
	if cfg.UnavailableStatus == 0 {
		cfg.UnavailableStatus = http.StatusInternalServerError
	}
	return &PredictionService{model: model, history: history, cfg: cfg}
}

func (s *PredictionService) AddRoutes(r chi.Router) {
	r.Get("/", s.Home)
	if s.cfg.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir))))
	}

	r.Get("/health", RestHandler(s.Health))

	r.Route("/predict", func(r chi.Router) {
		r.Post("/", RestHandler(s.Predict))
		r.Get("/", RestHandler(s.PredictQuery))
	})

	r.Route("/model", func(r chi.Router) {
		r.Get("/", RestHandler(s.ModelInfo))
		r.Get("/loads", RestHandler(s.ListModelLoads))
	})
}

func (s *PredictionService) Home(w http.ResponseWriter, r *http.Request) {
	if s.cfg.StaticDir == "" {
		WriteJsonResponse(w, api.HomeResponse{Message: homeMessage})
		return
	}

	page := filepath.Join(s.cfg.StaticDir, "index.html")
	if info, err := os.Stat(page); err != nil || info.IsDir() {
		slog.Warn("landing page not found", "path", page, "error", err)
		WriteJsonError(w, http.StatusNotFound, "page not found")
		return
	}

	http.ServeFile(w, r, page)
}

func (s *PredictionService) Health(r *http.Request) (any, error) {
	res := api.HealthResponse{Status: "ok", ModelLoaded: s.model.Loaded()}
	if s.model.Err != nil {
		res.Error = s.model.Err.Error()
	}
	return res, nil
}

func (s *PredictionService) Predict(r *http.Request) (any, error) {
	req, err := ParseRequest[api.PredictionRequest](r)
	if err != nil {
		metrics.ObservePrediction(metrics.OutcomeInvalidInput)
		return nil, err
	}
	return s.predict(r.Context(), req)
}

func (s *PredictionService) PredictQuery(r *http.Request) (any, error) {
	req, err := ParseRequestQueryParams[api.PredictionRequest](r)
	if err != nil {
		metrics.ObservePrediction(metrics.OutcomeInvalidInput)
		return nil, err
	}
	return s.predict(r.Context(), req)
}

// predict validates the request before looking at the predictor, so bad input
// is rejected with 400 whether or not a model is loaded.
func (s *PredictionService) predict(ctx context.Context, req api.PredictionRequest) (any, error) {
	engineSize, cylinders, err := req.Features()
	if err != nil {
		metrics.ObservePrediction(metrics.OutcomeInvalidInput)
		return nil, CodedErrorf(http.StatusBadRequest, "unable to parse request body: %v", err)
	}

	if !(engineSize > 0) || cylinders <= 0 || math.IsInf(engineSize, 0) {
		metrics.ObservePrediction(metrics.OutcomeInvalidInput)
		return nil, CodedError(http.StatusBadRequest, errors.New(msgInvalidInput))
	}

	if !s.model.Loaded() {
		metrics.ObservePrediction(metrics.OutcomeUnavailable)
		return nil, CodedError(s.cfg.UnavailableStatus, errors.New(msgModelNotLoaded))
	}

	prediction, err := s.infer(ctx, []float64{engineSize, float64(cylinders)})
	if err != nil {
		metrics.ObservePrediction(metrics.OutcomeInference)
		slog.Error("prediction failed", "engine_size", engineSize, "cylinders", cylinders, "error", err)
		return nil, CodedError(http.StatusInternalServerError, errors.New(msgInferenceFailed))
	}

	metrics.ObservePrediction(metrics.OutcomeSuccess)
	return api.PredictionResponse{Prediction: prediction}, nil
}

type inferenceResult struct {
	value float64
	err   error
}

// infer invokes the predictor in its own goroutine so that a slow call can be
// abandoned once the context expires and a panic becomes an error.
func (s *PredictionService) infer(ctx context.Context, features []float64) (float64, error) {
	if s.cfg.InferenceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.InferenceTimeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan inferenceResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- inferenceResult{err: fmt.Errorf("%w: predictor panicked: %v", core.ErrInference, r)}
			}
		}()

		value, err := s.model.Predictor.Predict(ctx, features)
		done <- inferenceResult{value: value, err: err}
	}()

	select {
	case res := <-done:
		metrics.InferenceDuration.Observe(time.Since(start).Seconds())
		if res.err != nil {
			if errors.Is(res.err, core.ErrInference) {
				return 0, res.err
			}
			return 0, fmt.Errorf("%w: %w", core.ErrInference, res.err)
		}
		if math.IsNaN(res.value) || math.IsInf(res.value, 0) {
			return 0, fmt.Errorf("%w: predictor returned non-finite value %v", core.ErrInference, res.value)
		}
		return res.value, nil
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %w", core.ErrInference, ctx.Err())
	}
}

func (s *PredictionService) ModelInfo(r *http.Request) (any, error) {
	if !s.model.Loaded() {
		return nil, CodedErrorf(s.cfg.UnavailableStatus, "%s: %v", msgModelNotLoaded, s.model.Err)
	}

	return api.ModelInfo{
		Type:        string(s.model.Type),
		Path:        s.model.Path,
		Checksum:    s.model.Checksum,
		Version:     s.model.Manifest.Version,
		Description: s.model.Manifest.Description,
		Features:    s.model.Manifest.Features,
		LoadedAt:    s.model.LoadedAt,
	}, nil
}

func (s *PredictionService) ListModelLoads(r *http.Request) (any, error) {
	if s.history == nil {
		return nil, CodedErrorf(http.StatusServiceUnavailable, "load history is not available")
	}

	params, err := ParseRequestQueryParams[api.ModelLoadsParams](r)
	if err != nil {
		return nil, err
	}

	limit := defaultLoadsLimit
	if params.Limit != nil {
		if *params.Limit <= 0 {
			return nil, CodedErrorf(http.StatusBadRequest, "limit must be positive")
		}
		limit = min(*params.Limit, maxLoadsLimit)
	}

	loads, err := database.ListModelLoads(r.Context(), s.history, limit)
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving load history")
	}

	res := make([]api.ModelLoad, 0, len(loads))
	for _, load := range loads {
		res = append(res, convertModelLoad(load))
	}
	return res, nil
}

func convertModelLoad(load database.ModelLoad) api.ModelLoad {
	return api.ModelLoad{
		Id:           load.Id,
		ArtifactPath: load.ArtifactPath,
		ModelType:    load.ModelType,
		Status:       load.Status,
		Error:        load.Error.String,
		Checksum:     load.Checksum,
		LoadTime:     load.LoadTime,
	}
}
