package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atelier/console-backend/internal/chatstate"
)

// GetState returns the full panel snapshot.
func GetState(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(store.Snapshot())
	}
}

// GetStatus returns the mirrored gateway connection state.
func GetStatus(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(store.Status())
	}
}

// GetUsage returns the token-usage snapshot.
func GetUsage(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(store.Usage())
	}
}
