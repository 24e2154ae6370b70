package main

import (
	"context"
	"flag"
	"fmt"
	"fuel-predictor/cmd"
	"fuel-predictor/internal/core"
	"fuel-predictor/internal/storage"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/schollz/progressbar/v3"
)

type FetchConfig struct {
	ModelS3Bucket     string `env:"MODEL_S3_BUCKET"`
	ModelS3Key        string `env:"MODEL_S3_KEY"`
	ModelPath         string `env:"MODEL_PATH" envDefault:"models/fuel_consumption_model.json"`
	ModelType         string `env:"MODEL_TYPE"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION"`
	OnnxRuntimeDylib  string `env:"ONNX_RUNTIME_DYLIB"`
}

// fetchmodel downloads a model artifact from S3 to the local model path and
// checks that it loads, so a deployment can be prepared before the server starts.
func main() {
	bucket := flag.String("bucket", "", "bucket holding the artifact (default $MODEL_S3_BUCKET)")
	key := flag.String("key", "", "object key of the artifact (default $MODEL_S3_KEY)")
	dest := flag.String("dest", "", "local destination (default $MODEL_PATH)")
	verify := flag.Bool("verify", true, "load the artifact after download")

	cmd.LoadEnvFile()

	var cfg FetchConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	if *bucket == "" {
		*bucket = cfg.ModelS3Bucket
	}
	if *key == "" {
		*key = cfg.ModelS3Key
	}
	if *dest == "" {
		*dest = cfg.ModelPath
	}
	if *bucket == "" || *key == "" {
		log.Fatalf("bucket and key must be provided with flags or MODEL_S3_BUCKET/MODEL_S3_KEY")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	store, err := storage.NewS3ObjectStore(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3EndpointURL,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		log.Fatalf("error creating s3 client: %v", err)
	}

	if err := fetch(ctx, store, *bucket, *key, *dest); err != nil {
		log.Fatalf("error fetching artifact s3://%s/%s: %v", *bucket, *key, err)
	}
	log.Printf("artifact saved to %s", *dest)

	if !*verify {
		return
	}

	res := core.LoadPredictor(*dest, core.ModelType(cfg.ModelType), core.NewModelLoaders(core.LoaderConfig{OnnxRuntimeDylib: cfg.OnnxRuntimeDylib}))
	if !res.Loaded() {
		log.Fatalf("downloaded artifact does not load: %v", res.Err)
	}
	defer res.Predictor.Release()

	log.Printf("verified %s model with checksum %s", res.Type, res.Checksum)
}

func fetch(ctx context.Context, store storage.ObjectStore, bucket, key, dest string) error {
	// Prefixes hold a manifest and its artifact; they are fetched without progress.
	if strings.HasSuffix(key, "/") {
		return storage.FetchArtifact(ctx, store, bucket, key, dest)
	}

	obj, err := storage.StatObject(ctx, store, bucket, key)
	if err != nil {
		return err
	}

	body, err := store.GetObject(ctx, bucket, key)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("error creating destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".fetch-*")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bar := progressbar.DefaultBytes(obj.Size, "downloading "+filepath.Base(key))
	if _, err := io.Copy(io.MultiWriter(tmp, bar), body); err != nil {
		tmp.Close()
		return fmt.Errorf("error downloading object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing temp file: %w", err)
	}

	return os.Rename(tmp.Name(), dest)
}
