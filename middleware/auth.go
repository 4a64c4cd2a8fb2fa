package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"

	"github.com/meinhoongagan/household-services/auth"
)

// Locals keys set by Protected.
const (
	LocalUserID = "userID"
	LocalRole   = "role"
	LocalClaims = "claims"
)

// Protected validates the bearer token and rejects revoked ones.
func Protected(tokens *auth.TokenService, denylist *auth.Denylist) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    tokens.Secret(),
		SigningMethod: "HS256",
		Claims:        &auth.Claims{},
		ErrorHandler:  jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c, "Invalid token")
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return unauthorized(c, "Invalid token claims")
			}

			userID, err := claims.UserID()
			if err != nil {
				return unauthorized(c, "Invalid user ID in token")
			}

			revoked, err := denylist.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				log.WithError(err).Error("denylist lookup failed")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Could not verify token",
				})
			}
			if revoked {
				return unauthorized(c, "Token has been revoked")
			}

			c.Locals(LocalUserID, userID)
			c.Locals(LocalRole, claims.Role)
			c.Locals(LocalClaims, claims)
			return c.Next()
		},
	})
}

// ClaimsFrom returns the claims stored by Protected.
func ClaimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(LocalClaims).(*auth.Claims)
	return claims
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

func jwtError(c *fiber.Ctx, err error) error {
	log.WithError(err).Debug("jwt rejected")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "Unauthorized",
		"message": "Invalid or expired token",
	})
}
