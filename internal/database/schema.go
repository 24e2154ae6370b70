package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ModelLoaded     string = "LOADED"
	ModelLoadFailed string = "FAILED"
)

// ModelLoad records one attempt to load the predictor at startup.
type ModelLoad struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	ArtifactPath string `gorm:"not null"`
	ModelType    string `gorm:"size:20"`
	Status       string `gorm:"size:20;not null"`
	Error        sql.NullString
	Checksum     string `gorm:"size:64"`

	Metadata datatypes.JSON

	LoadTime time.Time `gorm:"index"`
}
