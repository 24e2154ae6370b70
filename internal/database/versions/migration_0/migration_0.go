package migration_0

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModelLoad struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	ArtifactPath string `gorm:"not null"`
	ModelType    string `gorm:"size:20"`
	Status       string `gorm:"size:20;not null"`
	Error        sql.NullString
	Checksum     string `gorm:"size:64"`

	LoadTime time.Time
}

func Migration(db *gorm.DB) error {
	return db.AutoMigrate(&ModelLoad{})
}
