package models

import (
	"time"
)

// Role names seeded at startup.
const (
	RoleAdmin        = "admin"
	RoleProfessional = "professional"
	RoleCustomer     = "customer"
)

type Role struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:80;uniqueIndex"`
	Description string    `json:"description" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
