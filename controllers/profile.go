package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/household-services/auth"
	"github.com/meinhoongagan/household-services/db"
	"github.com/meinhoongagan/household-services/middleware"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/redis"
	"github.com/meinhoongagan/household-services/utils"
)

type ProfileInput struct {
	Username    string `json:"username" validate:"omitempty,max=100"`
	Email       string `json:"email" validate:"omitempty,email,max=120"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"omitempty,min=4"`
}

// GetUserProfile returns the caller's profile.
func GetUserProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"role":            user.Role.Name,
		"flagged":         user.Flagged,
		"service_offered": user.ServiceOffered(),
	})
}

// UpdateUserProfile changes the caller's username, email or password.
func UpdateUserProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	input := new(ProfileInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := utils.Validate(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error())
	}

	updates := map[string]interface{}{}
	if input.Username != "" && input.Username != user.Username {
		exists, err := taken(c, "username", input.Username, user.ID)
		if err != nil {
			return utils.FailInternal(c, "Failed to check username", err)
		}
		if exists {
			return utils.Fail(c, fiber.StatusBadRequest, "Username already taken")
		}
		updates["username"] = input.Username
	}
	if input.Email != "" && input.Email != user.Email {
		exists, err := taken(c, "email", input.Email, user.ID)
		if err != nil {
			return utils.FailInternal(c, "Failed to check email", err)
		}
		if exists {
			return utils.Fail(c, fiber.StatusBadRequest, "Email already taken")
		}
		updates["email"] = input.Email
	}
	if input.NewPassword != "" {
		if !auth.CheckPassword(input.OldPassword, user.Password) {
			return utils.Fail(c, fiber.StatusBadRequest, "Old password is incorrect")
		}
		hash, err := auth.HashPassword(input.NewPassword)
		if err != nil {
			return utils.FailInternal(c, "Failed to hash password", err)
		}
		updates["password"] = hash
	}

	if len(updates) > 0 {
		if err := db.DB.Model(user).Updates(updates).Error; err != nil {
			return utils.FailInternal(c, "Failed to update profile", err)
		}
	}

	deps.UsersCache.Delete(c.UserContext(), redis.KeyAllUsers)
	return utils.Message(c, fiber.StatusOK, "Profile updated successfully")
}

func taken(c *fiber.Ctx, column, value string, self uint) (bool, error) {
	var count int64
	err := db.DB.WithContext(c.UserContext()).Model(&models.User{}).
		Where(column+" = ? AND id <> ?", value, self).
		Count(&count).Error
	return count > 0, err
}
