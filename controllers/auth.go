package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/household-services/auth"
	"github.com/meinhoongagan/household-services/db"
	"github.com/meinhoongagan/household-services/middleware"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/redis"
	"github.com/meinhoongagan/household-services/utils"
)

type RegisterInput struct {
	Username      string `json:"username" form:"username" validate:"required,max=100"`
	Email         string `json:"email" form:"email" validate:"required,email,max=120"`
	Password      string `json:"password" form:"password" validate:"required,min=4"`
	Role          string `json:"role" form:"role"`
	ContactNumber string `json:"contact_number" form:"contact_number" validate:"max=15"`
	ServiceID     uint   `json:"service_id" form:"service_id"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates a customer or professional account. Professionals must
// upload a PDF document as multipart form data.
func Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse request body")
	}
	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	if err := utils.Validate(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error())
	}

	var count int64
	if err := db.DB.Model(&models.User{}).
		Where("email = ? OR username = ?", input.Email, input.Username).
		Count(&count).Error; err != nil {
		return utils.FailInternal(c, "Failed to check existing users", err)
	}
	if count > 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "User already exists")
	}

	if input.Role != models.RoleCustomer && input.Role != models.RoleProfessional {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid role selected")
	}
	var role models.Role
	if err := db.DB.Where("name = ?", input.Role).First(&role).Error; err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid role selected")
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		RoleID:   role.ID,
	}

	switch input.Role {
	case models.RoleCustomer:
		if input.ContactNumber != "" {
			contact := input.ContactNumber
			user.ContactNumber = &contact
		}
	case models.RoleProfessional:
		document, err := c.FormFile("document")
		if err != nil {
			return utils.Fail(c, fiber.StatusBadRequest, "Document is required for professionals")
		}
		if !utils.IsPDF(document.Filename) {
			return utils.Fail(c, fiber.StatusBadRequest, "Invalid file type")
		}
		if input.ServiceID != 0 {
			var svc models.Service
			if err := db.DB.First(&svc, input.ServiceID).Error; err != nil {
				return utils.Fail(c, fiber.StatusBadRequest, "Invalid service selected")
			}
			serviceID := svc.ID
			user.ServiceID = &serviceID
		}

		path, err := deps.Uploader.Save(c.UserContext(), document, utils.DocumentName(input.Email, ".pdf"))
		if err != nil {
			log.WithError(err).Error("document upload failed")
			return utils.FailInternal(c, "Failed to store document", err)
		}
		user.DocumentPath = &path
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return utils.FailInternal(c, "Failed to hash password", err)
	}
	user.Password = hash

	if err := db.DB.Create(&user).Error; err != nil {
		return utils.FailInternal(c, "Failed to create user", err)
	}

	deps.UsersCache.Delete(c.UserContext(), redis.KeyAllUsers)
	log.WithFields(log.Fields{"user_id": user.ID, "role": input.Role}).Info("user registered")

	return utils.Message(c, fiber.StatusCreated, "User registered successfully")
}

// Login exchanges email and password for an access token.
func Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := utils.Validate(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error())
	}

	var user models.User
	err := db.DB.Preload("Role").Where("email = ?", strings.TrimSpace(input.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return utils.FailInternal(c, "Failed to load user", err)
	}
	if !auth.CheckPassword(input.Password, user.Password) {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if user.Flagged {
		return utils.Fail(c, fiber.StatusForbidden, "Your account has been flagged")
	}

	token, err := deps.Tokens.Issue(user.ID, user.Role.Name)
	if err != nil {
		return utils.FailInternal(c, "Failed to generate token", err)
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"role":         user.Role.Name,
	})
}

// Logout revokes the presented token.
func Logout(c *fiber.Ctx) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil || claims.ID == "" || claims.Subject == "" || claims.ExpiresAt == nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid token")
	}

	if err := deps.Denylist.Revoke(c.UserContext(), claims.ID, claims.ExpiresAt.Time); err != nil {
		return utils.FailInternal(c, "Logout failed", err)
	}
	return utils.Message(c, fiber.StatusOK, "Logged out successfully")
}
