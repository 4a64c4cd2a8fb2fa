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

// UserSummary is one row of the admin user listing.
type UserSummary struct {
	ID             uint    `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	Flagged        bool    `json:"flagged"`
	DocumentPath   *string `json:"document_path"`
	ServiceOffered *string `json:"service_offered"`
}

func summarize(u *models.User) UserSummary {
	s := UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role.Name,
		Flagged:        u.Flagged,
		ServiceOffered: u.ServiceOffered(),
	}
	if u.IsProfessional() {
		s.DocumentPath = u.DocumentPath
	}
	return s
}

// GetUsers lists every user. The listing is cached under all_users.
func GetUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if cached, ok := deps.UsersCache.Get(ctx, redis.KeyAllUsers); ok {
		return c.JSON(cached)
	}

	var users []models.User
	if err := db.DB.Preload("Role").Preload("Service").Order("id").Find(&users).Error; err != nil {
		return utils.FailInternal(c, "Failed to fetch users", err)
	}

	summaries := make([]UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, summarize(&users[i]))
	}
	deps.UsersCache.Set(ctx, redis.KeyAllUsers, summaries)

	return c.JSON(summaries)
}

// loadManagedUser fetches the target of an admin action and rejects admins.
func loadManagedUser(c *fiber.Ctx, action string) (*models.User, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, utils.Fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	var user models.User
	err := db.DB.Preload("Role").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.Fail(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return nil, utils.FailInternal(c, "Failed to fetch user", err)
	}
	if user.IsAdmin() {
		return nil, utils.Fail(c, fiber.StatusForbidden, "Admins cannot be "+action)
	}
	return &user, nil
}

// DeleteUser removes a non-admin user. The user's own requests go with it;
// accepted requests they were working on return to the pending pool.
func DeleteUser(c *fiber.Ctx) error {
	user, err := loadManagedUser(c, "deleted")
	if user == nil {
		return err
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", user.ID).Delete(&models.ServiceRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ServiceRequest{}).
			Where("professional_id = ? AND status = ?", user.ID, models.StatusAccepted).
			Updates(map[string]interface{}{"status": models.StatusPending, "professional_id": nil}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ServiceRequest{}).
			Where("professional_id = ?", user.ID).
			Update("professional_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return utils.FailInternal(c, "Failed to delete user", err)
	}

	deps.UsersCache.Delete(c.UserContext(), redis.KeyAllUsers)
	log.WithField("user_id", user.ID).Info("user deleted")

	return utils.Message(c, fiber.StatusOK, "User deleted successfully")
}

// ToggleUserFlag flags or unflags a non-admin user.
func ToggleUserFlag(c *fiber.Ctx) error {
	user, err := loadManagedUser(c, "flagged")
	if user == nil {
		return err
	}

	flagged := !user.Flagged
	if err := db.DB.Model(user).Update("flagged", flagged).Error; err != nil {
		return utils.FailInternal(c, "Failed to update user", err)
	}

	deps.UsersCache.Delete(c.UserContext(), redis.KeyAllUsers)

	message := "User flagged successfully"
	if !flagged {
		message = "User unflagged successfully"
	}
	return c.JSON(fiber.Map{"message": message, "flagged": flagged})
}
