package migration_1

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ModelLoad struct {
	Metadata datatypes.JSON
	LoadTime time.Time `gorm:"index"`
}

func Migration(db *gorm.DB) error {
	if err := db.Migrator().AddColumn(&ModelLoad{}, "Metadata"); err != nil {
		return fmt.Errorf("error adding Metadata column: %w", err)
	}

	if err := db.Migrator().CreateIndex(&ModelLoad{}, "LoadTime"); err != nil {
		return fmt.Errorf("error creating LoadTime index: %w", err)
	}

	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropIndex(&ModelLoad{}, "LoadTime"); err != nil {
		return fmt.Errorf("error dropping LoadTime index: %w", err)
	}

	if err := db.Migrator().DropColumn(&ModelLoad{}, "Metadata"); err != nil {
		return fmt.Errorf("error dropping Metadata column: %w", err)
	}

	return nil
}
