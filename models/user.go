package models

import (
	"time"
)

type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Username      string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Email         string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	Password      string    `json:"-" gorm:"size:255;not null"`
	ContactNumber *string   `json:"contact_number,omitempty" gorm:"size:15"`
	Flagged       bool      `json:"flagged" gorm:"default:false"`
	RoleID        uint      `json:"role_id" gorm:"not null"`
	Role          Role      `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	ServiceID     *uint     `json:"service_id,omitempty"`
	Service       *Service  `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	DocumentPath  *string   `json:"document_path,omitempty" gorm:"size:255"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role.Name == RoleAdmin
}

func (u *User) IsProfessional() bool {
	return u.Role.Name == RoleProfessional
}

func (u *User) IsCustomer() bool {
	return u.Role.Name == RoleCustomer
}

// ServiceOffered is the name of the professional's service, or nil for other roles.
func (u *User) ServiceOffered() *string {
	if !u.IsProfessional() || u.Service == nil {
		return nil
	}
	name := u.Service.Name
	return &name
}
