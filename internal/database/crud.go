package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func RecordModelLoad(ctx context.Context, db *gorm.DB, load *ModelLoad) error {
	if load.Id == uuid.Nil {
		load.Id = uuid.New()
	}

	if err := db.WithContext(ctx).Create(load).Error; err != nil {
		slog.Error("error recording model load", "path", load.ArtifactPath, "error", err)
		return fmt.Errorf("error recording model load: %w", err)
	}
	return nil
}

// ListModelLoads returns the most recent load attempts, newest first.
func ListModelLoads(ctx context.Context, db *gorm.DB, limit int) ([]ModelLoad, error) {
	var loads []ModelLoad
	if err := db.WithContext(ctx).Order("load_time DESC").Limit(limit).Find(&loads).Error; err != nil {
		return nil, fmt.Errorf("error listing model loads: %w", err)
	}
	return loads, nil
}
