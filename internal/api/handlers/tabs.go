package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/atelier/console-backend/internal/chatstate"
)

func tabsResponse(store *chatstate.Store) fiber.Map {
	return fiber.Map{
		"openTabs":  store.OpenTabs(),
		"activeKey": store.ActiveKey(),
	}
}

// OpenTab opens (or re-activates) a tab. An omitted key opens a fresh
// locally-created session that the gateway will confirm later.
func OpenTab(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Key string `json:"key"`
		}
		if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		if req.Key == "" {
			req.Key = uuid.New().String()
		}

		store.OpenTab(req.Key)
		return c.JSON(tabsResponse(store))
	}
}

// CloseTab closes a tab. Closing the main tab is a no-op rather than an
// error; the response reflects whatever sequence resulted.
func CloseTab(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store.CloseTab(c.Params("key"))
		return c.JSON(tabsResponse(store))
	}
}

// ReorderTabs applies a new tab order. The store repairs anything that is
// not a permutation of the open set, so the response is authoritative.
func ReorderTabs(store *chatstate.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Order []string `json:"order"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		store.ReorderTabs(req.Order)
		return c.JSON(tabsResponse(store))
	}
}
