package main

import (
	"context"
	"errors"
	"fmt"
	"fuel-predictor/cmd"
	"fuel-predictor/internal/api"
	"fuel-predictor/internal/core"
	"fuel-predictor/internal/database"
	"fuel-predictor/internal/metrics"
	"fuel-predictor/internal/storage"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"
)

type APIConfig struct {
	Port              int    `env:"PORT" envDefault:"8000"`
	ModelPath         string `env:"MODEL_PATH" envDefault:"models/fuel_consumption_model.json"`
	ModelType         string `env:"MODEL_TYPE"`
	StaticDir         string `env:"STATIC_DIR"`
	DatabaseURL       string `env:"DATABASE_URL" envDefault:"sqlite://data/predictor.db"`
	ModelS3Bucket     string `env:"MODEL_S3_BUCKET"`
	ModelS3Key        string `env:"MODEL_S3_KEY"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION"`
	OnnxRuntimeDylib  string `env:"ONNX_RUNTIME_DYLIB"`

	InferenceTimeout    time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"5s"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	PredictionCacheSize int           `env:"PREDICTION_CACHE_SIZE" envDefault:"0"`
	UnavailableStatus   int           `env:"UNAVAILABLE_STATUS" envDefault:"500"`

	LogFile        string   `env:"LOG_FILE"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

func (cfg APIConfig) Validate() error {
	if cfg.UnavailableStatus != http.StatusInternalServerError && cfg.UnavailableStatus != http.StatusServiceUnavailable {
		return fmt.Errorf("UNAVAILABLE_STATUS must be 500 or 503, got %d", cfg.UnavailableStatus)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.PredictionCacheSize < 0 {
		return fmt.Errorf("PREDICTION_CACHE_SIZE must not be negative, got %d", cfg.PredictionCacheSize)
	}
	return nil
}

func main() {
	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logs := cmd.SetupLogging(cfg.LogFile)
	defer logs.Close()

	log.Println("Starting prediction server...")

	model := loadModel(cfg)
	if model.Loaded() {
		defer model.Predictor.Release()
	}
	defer func() {
		if err := core.ShutdownOnnxRuntime(); err != nil {
			slog.Error("error shutting down onnx runtime", "error", err)
		}
	}()
	metrics.SetModelLoaded(model.Loaded())

	// The service runs without load history if the database is unreachable.
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database, load history disabled", "error", err)
			db = nil
		} else if err := cmd.RecordModelLoad(context.Background(), db, model); err != nil {
			slog.Error("failed to record model load", "error", err)
		}
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Handle("/metrics", metrics.Handler())

	service := api.NewPredictionService(model, db, api.ServiceConfig{
		StaticDir:         cfg.StaticDir,
		InferenceTimeout:  cfg.InferenceTimeout,
		UnavailableStatus: cfg.UnavailableStatus,
	})
	service.AddRoutes(r)

	addr := ":" + strconv.Itoa(cfg.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	idle := make(chan struct{})
	go func() {
		defer close(idle)
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	log.Printf("Prediction server listening on %s (model loaded: %t)", addr, model.Loaded())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Could not listen on %s: %v\n", addr, err)
	}
	<-idle

	log.Println("Server stopped.")
}

// loadModel fetches the artifact from S3 when a bucket is configured and then
// loads it from MODEL_PATH. It never fails; problems are carried in the result.
func loadModel(cfg APIConfig) core.LoadResult {
	if cfg.ModelS3Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := downloadModel(ctx, cfg); err != nil {
			slog.Error("failed to download model artifact", "bucket", cfg.ModelS3Bucket, "key", cfg.ModelS3Key, "error", err)
			return core.NotLoaded(cfg.ModelPath, err)
		}
	}

	loaders := core.NewModelLoaders(core.LoaderConfig{OnnxRuntimeDylib: cfg.OnnxRuntimeDylib})
	res := core.LoadPredictor(cfg.ModelPath, core.ModelType(cfg.ModelType), loaders)
	if !res.Loaded() || cfg.PredictionCacheSize <= 0 {
		return res
	}

	cached, err := core.WithCache(res.Predictor, cfg.PredictionCacheSize)
	if err != nil {
		slog.Warn("prediction cache disabled", "size", cfg.PredictionCacheSize, "error", err)
		return res
	}
	res.Predictor = cached
	return res
}

func downloadModel(ctx context.Context, cfg APIConfig) error {
	if cfg.ModelS3Key == "" {
		return errors.New("MODEL_S3_KEY must be set when MODEL_S3_BUCKET is set")
	}

	store, err := storage.NewS3ObjectStore(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3EndpointURL,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		return fmt.Errorf("error creating s3 client: %w", err)
	}

	slog.Info("downloading model artifact", "bucket", cfg.ModelS3Bucket, "key", cfg.ModelS3Key, "dest", cfg.ModelPath)
	return storage.FetchArtifact(ctx, store, cfg.ModelS3Bucket, cfg.ModelS3Key, cfg.ModelPath)
}
