package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/household-services/db"
	"github.com/meinhoongagan/household-services/models"
)

const LocalUser = "currentUser"

// RequireRole loads the caller from the database and checks its role. With
// no roles given any authenticated user passes. Must run after Protected.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(LocalUserID).(uint)
		if !ok {
			return unauthorized(c, "Missing authentication")
		}

		var user models.User
		err := db.DB.Preload("Role").Preload("Service").First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return unauthorized(c, "User not found")
		}
		if err != nil {
			log.WithError(err).Error("load current user")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not load user"})
		}

		if len(roles) > 0 && !hasRole(user.Role.Name, roles) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have the required role to perform this action",
			})
		}

		c.Locals(LocalUser, &user)
		return c.Next()
	}
}

// CurrentUser returns the user loaded by RequireRole.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalUser).(*models.User)
	return user
}

func hasRole(name string, roles []string) bool {
	for _, r := range roles {
		if r == name {
			return true
		}
	}
	return false
}
