package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/household-services/db"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/redis"
	"github.com/meinhoongagan/household-services/utils"
)

type ServiceInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
}

// GetAllServices lists the catalogue. The listing is cached under all_services.
func GetAllServices(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if cached, ok := deps.ServicesCache.Get(ctx, redis.KeyAllServices); ok {
		return c.JSON(cached)
	}

	var services []models.Service
	if err := db.DB.Order("id").Find(&services).Error; err != nil {
		return utils.FailInternal(c, "Failed to fetch services", err)
	}
	deps.ServicesCache.Set(ctx, redis.KeyAllServices, services)

	return c.JSON(services)
}

// CreateService adds a service to the catalogue.
func CreateService(c *fiber.Ctx) error {
	input := new(ServiceInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := utils.Validate(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error())
	}

	service := models.Service{
		Name:        input.Name,
		Description: input.Description,
		Price:       *input.Price,
		Available:   true,
	}
	if err := db.DB.Create(&service).Error; err != nil {
		return utils.FailInternal(c, "Failed to create service", err)
	}

	deps.ServicesCache.Delete(c.UserContext(), redis.KeyAllServices)
	log.WithField("service_id", service.ID).Info("service created")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Service added successfully",
		"service": service,
	})
}

func loadService(c *fiber.Ctx) (*models.Service, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, utils.Fail(c, fiber.StatusBadRequest, "Invalid service ID")
	}

	var service models.Service
	err := db.DB.First(&service, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.Fail(c, fiber.StatusNotFound, "Service not found")
	}
	if err != nil {
		return nil, utils.FailInternal(c, "Failed to fetch service", err)
	}
	return &service, nil
}

// DeleteService removes a service, its requests, and the professionals'
// link to it.
func DeleteService(c *fiber.Ctx) error {
	service, err := loadService(c)
	if service == nil {
		return err
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", service.ID).Delete(&models.ServiceRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("service_id = ?", service.ID).
			Update("service_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(service).Error
	})
	if err != nil {
		return utils.FailInternal(c, "Failed to delete service", err)
	}

	ctx := c.UserContext()
	deps.ServicesCache.Delete(ctx, redis.KeyAllServices)
	deps.UsersCache.Delete(ctx, redis.KeyAllUsers)

	return utils.Message(c, fiber.StatusOK, "Service deleted successfully")
}

// ToggleServiceAvailability enables or disables a service.
func ToggleServiceAvailability(c *fiber.Ctx) error {
	service, err := loadService(c)
	if service == nil {
		return err
	}

	available := !service.Available
	if err := db.DB.Model(service).Update("available", available).Error; err != nil {
		return utils.FailInternal(c, "Failed to update service", err)
	}

	deps.ServicesCache.Delete(c.UserContext(), redis.KeyAllServices)

	message := "Service disabled successfully"
	if available {
		message = "Service enabled successfully"
	}
	return c.JSON(fiber.Map{"message": message, "available": available})
}
