package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/session"
	"github.com/saturnino-fabrica-de-software/facescan/internal/ws"
)

// SessionLookup resolves a live session
type SessionLookup interface {
	Get(id uuid.UUID) (*session.Session, error)
}

// Session resolves the :id route parameter to a live session and stores its
// ID in the request locals. Malformed, unknown and expired IDs are all 404.
func Session(sessions SessionLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return domain.ErrSessionNotFound
		}

		if _, err := sessions.Get(id); err != nil {
			return err
		}

		c.Locals(ws.SessionIDLocal, id)
		return c.Next()
	}
}

// SessionID returns the session ID stored by the Session middleware
func SessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals(ws.SessionIDLocal).(uuid.UUID)
	if !ok {
		return uuid.Nil, domain.ErrSessionNotFound
	}
	return id, nil
}
