package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/household-services/db"
	"github.com/meinhoongagan/household-services/middleware"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/utils"
)

type CreateRequestInput struct {
	ServiceID uint `json:"service_id" validate:"required"`
}

type RateInput struct {
	Rating *int `json:"rating" validate:"required"`
}

type idName struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type idUsername struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type CustomerRequestView struct {
	ID           uint        `json:"id"`
	Service      idName      `json:"service"`
	CreatedAt    time.Time   `json:"created_at"`
	Status       string      `json:"status"`
	Professional *idUsername `json:"professional"`
	Rating       *int        `json:"rating"`
}

func professionalRef(u *models.User) *idUsername {
	if u == nil {
		return nil
	}
	return &idUsername{ID: u.ID, Username: u.Username}
}

// RequestService books an available service for the calling customer.
func RequestService(c *fiber.Ctx) error {
	customer := middleware.CurrentUser(c)

	input := new(CreateRequestInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := utils.Validate(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Service ID is required")
	}

	var service models.Service
	err := db.DB.First(&service, input.ServiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, fiber.StatusNotFound, "Service not found")
	}
	if err != nil {
		return utils.FailInternal(c, "Failed to fetch service", err)
	}
	if !service.Available {
		return utils.Fail(c, fiber.StatusBadRequest, "Service is not available")
	}

	request := models.ServiceRequest{CustomerID: customer.ID, ServiceID: service.ID}
	if err := db.DB.Create(&request).Error; err != nil {
		return utils.FailInternal(c, "Failed to create service request", err)
	}
	log.WithFields(log.Fields{"request_id": request.ID, "customer_id": customer.ID}).Info("service requested")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Service request submitted successfully",
		"id":      request.ID,
	})
}

// GetCustomerRequests lists the caller's requests.
func GetCustomerRequests(c *fiber.Ctx) error {
	customer := middleware.CurrentUser(c)

	var requests []models.ServiceRequest
	err := db.DB.Preload("Service").Preload("Professional").
		Where("customer_id = ?", customer.ID).
		Order("created_at desc").
		Find(&requests).Error
	if err != nil {
		return utils.FailInternal(c, "Failed to fetch service requests", err)
	}

	views := make([]CustomerRequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, CustomerRequestView{
			ID:           r.ID,
			Service:      idName{ID: r.Service.ID, Name: r.Service.Name},
			CreatedAt:    r.CreatedAt,
			Status:       string(r.Status),
			Professional: professionalRef(r.Professional),
			Rating:       r.Rating,
		})
	}
	return c.JSON(views)
}

// CancelRequest deletes one of the caller's requests unless it is completed.
func CancelRequest(c *fiber.Ctx) error {
	customer := middleware.CurrentUser(c)
	id, ok := paramID(c, "id")
	if !ok {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request ID")
	}

	var request models.ServiceRequest
	err := db.DB.Where("id = ? AND customer_id = ?", id, customer.ID).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, fiber.StatusNotFound, "Service request not found")
	}
	if err != nil {
		return utils.FailInternal(c, "Failed to fetch service request", err)
	}
	if request.Status == models.StatusCompleted {
		return utils.Fail(c, fiber.StatusBadRequest, "Completed requests cannot be cancelled")
	}

	if err := db.DB.Delete(&request).Error; err != nil {
		return utils.FailInternal(c, "Failed to delete service request", err)
	}
	return utils.Message(c, fiber.StatusOK, "Service request deleted successfully")
}

// CompleteRequest marks one of the caller's accepted requests as completed.
func CompleteRequest(c *fiber.Ctx) error {
	customer := middleware.CurrentUser(c)
	id, ok := paramID(c, "id")
	if !ok {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request ID")
	}

	var request models.ServiceRequest
	err := db.DB.Where("id = ? AND customer_id = ? AND status = ?", id, customer.ID, models.StatusAccepted).
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, fiber.StatusNotFound, "Request not found or not eligible for completion")
	}
	if err != nil {
		return utils.FailInternal(c, "Failed to fetch service request", err)
	}

	if err := request.Complete(); err != nil {
		return utils.Fail(c, fiber.StatusNotFound, "Request not found or not eligible for completion")
	}
	res := db.DB.Model(&request).
		Where("status = ?", models.StatusAccepted).
		Update("status", request.Status)
	if res.Error != nil {
		return utils.FailInternal(c, "Failed to update service request", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusNotFound, "Request not found or not eligible for completion")
	}

	return utils.Message(c, fiber.StatusOK, "Service request marked as completed")
}

// RateRequest records the customer's rating of a completed request.
func RateRequest(c *fiber.Ctx) error {
	customer := middleware.CurrentUser(c)
	id, ok := paramID(c, "id")
	if !ok {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request ID")
	}

	input := new(RateInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := utils.Validate(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Rating is required (1-5)")
	}

	var request models.ServiceRequest
	err := db.DB.First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, fiber.StatusNotFound, "Service request not found")
	}
	if err != nil {
		return utils.FailInternal(c, "Failed to fetch service request", err)
	}
	if request.CustomerID != customer.ID {
		return utils.Fail(c, fiber.StatusForbidden, "Unauthorized")
	}

	switch err := request.Rate(*input.Rating); {
	case errors.Is(err, models.ErrNotRatable):
		return utils.Fail(c, fiber.StatusBadRequest, "You can only rate completed services")
	case errors.Is(err, models.ErrAlreadyRated):
		return utils.Fail(c, fiber.StatusBadRequest, "You have already rated this service")
	case errors.Is(err, models.ErrRatingOutOfRange):
		return utils.Fail(c, fiber.StatusBadRequest, "Rating must be between 1 and 5")
	case err != nil:
		return utils.FailInternal(c, "Failed to rate service request", err)
	}

	res := db.DB.Model(&request).Where("rating IS NULL").Update("rating", request.Rating)
	if res.Error != nil {
		return utils.FailInternal(c, "Failed to save rating", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "You have already rated this service")
	}

	return utils.Message(c, fiber.StatusOK, "Service request rated successfully")
}
