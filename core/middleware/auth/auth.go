package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Header is the request header carrying the API key.
const Header = "X-API-Key"

// Config holds configuration for the API key middleware.
type Config struct {
	// ApiKey is the expected key. Empty disables authentication entirely
	// (local development).
	ApiKey string
}

// New returns a middleware that rejects requests without the configured API key.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}

		provided := c.Get(Header)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing API key",
			})
		}

		return c.Next()
	}
}
