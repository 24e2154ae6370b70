package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fuel-predictor/internal/core"
	"fuel-predictor/internal/database"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// SetupLogging sends log and slog output to stderr and, when logFile is set,
// to a size-rotated log file as well. The returned closer flushes the file.
func SetupLogging(logFile string) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if logFile == "" {
		return io.NopCloser(nil)
	}

	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	out := io.MultiWriter(rotator, os.Stderr)
	log.SetOutput(out)
	slog.SetDefault(slog.New(slog.NewTextHandler(out, nil)))

	return rotator
}

// RecordModelLoad stores the outcome of the startup load in the load history.
func RecordModelLoad(ctx context.Context, db *gorm.DB, res core.LoadResult) error {
	load := &database.ModelLoad{
		ArtifactPath: res.Path,
		ModelType:    string(res.Type),
		Status:       database.ModelLoaded,
		Checksum:     res.Checksum,
		LoadTime:     res.LoadedAt,
	}

	if !res.Loaded() {
		loadErr := core.ErrModelNotLoaded
		if res.Err != nil {
			loadErr = res.Err
		}
		load.Status = database.ModelLoadFailed
		load.Error = sql.NullString{String: loadErr.Error(), Valid: true}
	}

	if res.Manifest.File != "" {
		metadata, err := json.Marshal(res.Manifest)
		if err != nil {
			slog.Warn("unable to serialize model manifest", "error", err)
		} else {
			load.Metadata = datatypes.JSON(metadata)
		}
	}

	return database.RecordModelLoad(ctx, db, load)
}
