package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/backdrop/placement-market/internal/config"
	"github.com/backdrop/placement-market/internal/dto"
	"github.com/backdrop/placement-market/internal/models"
	"github.com/backdrop/placement-market/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const actorKey = "actor"

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or expired token",
	})
}

// JWTProtected verifies the bearer token and stores it under Locals("user").
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
}

// UserResolver loads the account a verified token speaks for.
type UserResolver interface {
	Resolve(ctx context.Context, identity *services.Identity) (*models.User, error)
}

// CurrentUser resolves the verified token to a stored user on every request.
// Must run after JWTProtected.
func CurrentUser(users UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := c.Locals("user").(*jwt.Token)
		identity, err := services.IdentityFromToken(token)
		if err != nil {
			return unauthorized(c)
		}

		user, err := users.Resolve(c.UserContext(), identity)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				return unauthorized(c)
			}
			slog.Error("failed to resolve user", "error", err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}

		c.Locals(actorKey, user)
		c.Locals("user_id", user.ID.String())
		return c.Next()
	}
}

// Actor returns the user resolved by CurrentUser, or nil on public routes.
func Actor(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(actorKey).(*models.User)
	return user
}
