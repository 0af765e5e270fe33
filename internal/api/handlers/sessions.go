package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atelier/console-backend/internal/chatstate"
)

// GetSessions returns the session catalog plus the active key.
func GetSessions(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sessions":  store.Sessions(),
			"activeKey": store.ActiveKey(),
		})
	}
}

// SetSessions replaces the session catalog. Normally the gateway feed owns
// the catalog; this endpoint lets the panel seed or repair it by hand.
func SetSessions(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Sessions []chatstate.Session `json:"sessions"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		store.SetSessions(req.Sessions)
		return c.JSON(fiber.Map{
			"sessions": store.Sessions(),
		})
	}
}

// SetActiveSession switches the visible session.
func SetActiveSession(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Key string `json:"key"`
		}
		if err := c.BodyParser(&req); err != nil || req.Key == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		store.SetActive(req.Key)
		return c.JSON(fiber.Map{
			"activeKey": store.ActiveKey(),
		})
	}
}

// GetSessionMessages returns the cached log for one session.
func GetSessionMessages(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")
		return c.JSON(fiber.Map{
			"messages": store.Messages(key),
		})
	}
}

// ClearSessionMessages drops the cached log and draft for one session.
func ClearSessionMessages(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store.ClearSession(c.Params("key"))
		return c.JSON(fiber.Map{
			"message": "Session cleared",
		})
	}
}
