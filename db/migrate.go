package db

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/household-services/models"
)

// Migrate creates or updates the schema for every model.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.Role{},
		&models.Service{},
		&models.User{},
		&models.ServiceRequest{},
		&models.RevokedToken{},
	)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info("migrations applied")
	return nil
}
