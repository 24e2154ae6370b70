package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LoadResult is the outcome of loading a predictor at startup. Exactly one of
// Predictor and Err is set. It is never modified after construction.
type LoadResult struct {
	Predictor Predictor
	Type      ModelType
	Manifest  Manifest
	Path      string
	Checksum  string
	LoadedAt  time.Time
	Err       error
}

func (r LoadResult) Loaded() bool {
	return r.Err == nil && r.Predictor != nil
}

// NotLoaded returns a result for a predictor that could not be obtained at all,
// for example because the artifact could not be downloaded.
func NotLoaded(path string, err error) LoadResult {
	if err == nil {
		err = ErrModelNotLoaded
	}
	return LoadResult{Path: path, Err: err, LoadedAt: time.Now()}
}

// LoadPredictor loads the artifact at path. The path may point at a manifest
// file, a directory holding a manifest, or the artifact itself, in which case
// the model type is modelType or, when empty, inferred from the extension.
// Failures are reported in the result rather than returned, so callers can keep
// serving without a predictor.
func LoadPredictor(path string, modelType ModelType, loaders map[ModelType]ModelLoader) LoadResult {
	res, err := loadPredictor(path, modelType, loaders)
	if err != nil {
		slog.Error("failed to load model", "path", path, "error", err)
		return LoadResult{Path: res.Path, Type: res.Type, Manifest: res.Manifest, Checksum: res.Checksum, LoadedAt: time.Now(), Err: err}
	}
	slog.Info("model loaded", "path", res.Path, "type", res.Type, "checksum", res.Checksum)
	return res
}

func loadPredictor(path string, modelType ModelType, loaders map[ModelType]ModelLoader) (LoadResult, error) {
	res := LoadResult{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		return res, fmt.Errorf("error accessing model artifact: %w", err)
	}

	manifestPath := ""
	if info.IsDir() {
		manifestPath = filepath.Join(path, ManifestFile)
	} else if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		manifestPath = path
	}

	if manifestPath != "" {
		manifest, err := LoadManifest(manifestPath)
		if err != nil {
			return res, err
		}
		res.Manifest = manifest
		res.Path = manifest.ArtifactPath(manifestPath)
		if modelType == "" {
			modelType = manifest.Type
		}
	}

	if modelType == "" {
		modelType, err = InferModelType(res.Path)
		if err != nil {
			return res, err
		}
	}
	res.Type = modelType

	loader, ok := loaders[modelType]
	if !ok {
		return res, fmt.Errorf("%w: '%s'", ErrUnsupportedModel, modelType)
	}

	res.Checksum, err = fileChecksum(res.Path)
	if err != nil {
		return res, err
	}

	predictor, err := loader(res.Path)
	if err != nil {
		return res, fmt.Errorf("error loading %s model from %s: %w", modelType, res.Path, err)
	}

	res.Predictor = predictor
	res.LoadedAt = time.Now()
	return res, nil
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening model artifact: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("error hashing model artifact: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
