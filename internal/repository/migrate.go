package repository

import (
	"github.com/ranger-dev/ranger-agent/internal/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, debug bool) error {
	instanceDB := db

	if debug {
		instanceDB = instanceDB.Debug()
	}

	return instanceDB.AutoMigrate(
		&models.Incident{},
		&models.RemediationPlan{},
		&models.ActionLog{},
		&models.ResourceLock{},
	)
}
