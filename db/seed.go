package db

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/household-services/auth"
	"github.com/meinhoongagan/household-services/models"
)

var defaultRoles = []models.Role{
	{Name: models.RoleAdmin, Description: "Administrator role"},
	{Name: models.RoleProfessional, Description: "Service Professional"},
	{Name: models.RoleCustomer, Description: "Customer"},
}

// Seed creates the default roles and the admin account when they are missing.
func Seed(conn *gorm.DB, adminEmail, adminPassword string) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		for _, role := range defaultRoles {
			role := role
			if err := tx.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", role.Name, err)
			}
		}

		var adminRole models.Role
		if err := tx.Where("name = ?", models.RoleAdmin).First(&adminRole).Error; err != nil {
			return fmt.Errorf("load admin role: %w", err)
		}

		var existing models.User
		err := tx.Where("email = ?", adminEmail).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup admin: %w", err)
		}

		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return err
		}
		admin := models.User{
			Username: "admin",
			Email:    adminEmail,
			Password: hash,
			RoleID:   adminRole.ID,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		log.WithField("email", adminEmail).Info("admin user created")
		return nil
	})
}
