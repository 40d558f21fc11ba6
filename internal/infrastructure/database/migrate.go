package database

import (
	"fmt"

	"hospital-management/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
var Models = []interface{}{
	&entity.User{},
	&entity.Department{},
	&entity.Doctor{},
	&entity.Patient{},
	&entity.Appointment{},
	&entity.AuditLog{},
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	logrus.Info("Database schema migrated")
	return nil
}
