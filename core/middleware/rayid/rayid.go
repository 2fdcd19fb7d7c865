package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header is the request/response header carrying the ray id.
const Header = "X-Ray-ID"

// New returns a middleware that assigns every request a ray id.
// An incoming X-Ray-ID header is honored so callers can correlate retries;
// otherwise a fresh UUID is generated. The id is stored in Locals("ray_id")
// for logger.WithRayID and echoed in the response header.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Locals("ray_id", rid)
		c.Set(Header, rid)

		return c.Next()
	}
}
