package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/household-services/db"
	"github.com/meinhoongagan/household-services/middleware"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/utils"
)

type ProfessionalRequestView struct {
	ID              uint    `json:"id"`
	CustomerName    string  `json:"customer_name"`
	CustomerContact *string `json:"customer_contact"`
	ServiceName     string  `json:"service_name"`
	ServicePrice    float64 `json:"service_price"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	Rating          *int    `json:"rating"`
}

// GetProfessionalRequests lists requests for the professional's service
// that are still open or already assigned to them.
func GetProfessionalRequests(c *fiber.Ctx) error {
	pro := middleware.CurrentUser(c)
	if pro.ServiceID == nil {
		return utils.Fail(c, fiber.StatusBadRequest, "No service assigned")
	}

	var requests []models.ServiceRequest
	err := db.DB.Preload("Customer").Preload("Service").
		Where("service_id = ?", *pro.ServiceID).
		Where(db.DB.Where("status = ?", models.StatusPending).Or("professional_id = ?", pro.ID)).
		Order("created_at").
		Find(&requests).Error
	if err != nil {
		return utils.FailInternal(c, "Failed to fetch service requests", err)
	}

	views := make([]ProfessionalRequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, ProfessionalRequestView{
			ID:              r.ID,
			CustomerName:    r.Customer.Username,
			CustomerContact: r.Customer.ContactNumber,
			ServiceName:     r.Service.Name,
			ServicePrice:    r.Service.Price,
			Status:          string(r.Status),
			CreatedAt:       r.CreatedAt.Format("2006-01-02 15:04:05"),
			Rating:          r.Rating,
		})
	}
	return c.JSON(views)
}

// AcceptRequest assigns a pending request to the calling professional.
func AcceptRequest(c *fiber.Ctx) error {
	pro := middleware.CurrentUser(c)
	id, ok := paramID(c, "id")
	if !ok {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request ID")
	}

	var request models.ServiceRequest
	err := db.DB.First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, fiber.StatusNotFound, "Service request not found")
	}
	if err != nil {
		return utils.FailInternal(c, "Failed to fetch service request", err)
	}
	if request.Status != models.StatusPending {
		return utils.Fail(c, fiber.StatusBadRequest, "Service request already accepted")
	}
	if pro.ServiceID == nil || *pro.ServiceID != request.ServiceID {
		return utils.Fail(c, fiber.StatusForbidden, "Service request does not match your service")
	}

	if err := request.Accept(pro.ID); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Service request already accepted")
	}
	// the status guard keeps two professionals from accepting the same request
	res := db.DB.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", request.ID, models.StatusPending).
		Updates(map[string]interface{}{"status": request.Status, "professional_id": pro.ID})
	if res.Error != nil {
		return utils.FailInternal(c, "Failed to accept service request", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "Service request already accepted")
	}

	log.WithFields(log.Fields{"request_id": request.ID, "professional_id": pro.ID}).Info("service request accepted")
	return utils.Message(c, fiber.StatusOK, "Service request accepted successfully")
}
