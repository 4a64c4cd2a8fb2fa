package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type RequestStatus string

const (
	StatusPending   RequestStatus = "Pending"
	StatusAccepted  RequestStatus = "Accepted"
	StatusCompleted RequestStatus = "Completed"
)

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotRatable        = errors.New("only completed requests can be rated")
	ErrAlreadyRated      = errors.New("request already rated")
	ErrRatingOutOfRange  = errors.New("rating must be between 1 and 5")
)

type ServiceRequest struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	CustomerID     uint          `json:"customer_id" gorm:"not null;index"`
	Customer       User          `json:"customer" gorm:"foreignKey:CustomerID"`
	ServiceID      uint          `json:"service_id" gorm:"not null;index"`
	Service        Service       `json:"service" gorm:"foreignKey:ServiceID"`
	ProfessionalID *uint         `json:"professional_id,omitempty" gorm:"index"`
	Professional   *User         `json:"professional,omitempty" gorm:"foreignKey:ProfessionalID"`
	Status         RequestStatus `json:"status" gorm:"size:50;default:Pending"`
	Rating         *int          `json:"rating"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (r *ServiceRequest) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = StatusPending
	}
	return nil
}

// Accept assigns the professional and moves a pending request to Accepted.
func (r *ServiceRequest) Accept(professionalID uint) error {
	if r.Status != StatusPending {
		return ErrInvalidTransition
	}
	r.Status = StatusAccepted
	r.ProfessionalID = &professionalID
	return nil
}

// Complete moves an accepted request to Completed.
func (r *ServiceRequest) Complete() error {
	if r.Status != StatusAccepted {
		return ErrInvalidTransition
	}
	r.Status = StatusCompleted
	return nil
}

// Rate records the customer's rating. A request is rated at most once.
func (r *ServiceRequest) Rate(rating int) error {
	if r.Status != StatusCompleted {
		return ErrNotRatable
	}
	if r.Rating != nil {
		return ErrAlreadyRated
	}
	if rating < MinRating || rating > MaxRating {
		return ErrRatingOutOfRange
	}
	r.Rating = &rating
	return nil
}

// Unassign returns an accepted request to the pending pool.
func (r *ServiceRequest) Unassign() {
	if r.Status == StatusAccepted {
		r.Status = StatusPending
		r.ProfessionalID = nil
	}
}
