package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atelier/console-backend/internal/chatstate"
)

// GetDraft returns the pending input text for a session, empty if none.
func GetDraft(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")
		return c.JSON(fiber.Map{
			"key":   key,
			"draft": store.Draft(key),
		})
	}
}

// PutDraft overwrites the pending input text for a session. An empty text
// is valid: it clears the draft.
func PutDraft(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		key := c.Params("key")
		store.SetDraft(key, req.Text)
		return c.JSON(fiber.Map{
			"key":   key,
			"draft": store.Draft(key),
		})
	}
}
