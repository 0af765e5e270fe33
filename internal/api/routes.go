package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/atelier/console-backend/internal/api/handlers"
	"github.com/atelier/console-backend/internal/chatstate"
)

// SetupRoutes configures the panel API: snapshot reads, the imperative
// chat-state operations, and the state push socket.
func SetupRoutes(app *fiber.App, store *chatstate.Store, sender handlers.GatewaySender) {
	api := app.Group("/api/v1")

	// Snapshots
	api.Get("/state", handlers.GetState(store))
	api.Get("/status", handlers.GetStatus(store))
	api.Get("/usage", handlers.GetUsage(store))

	// Sessions
	api.Get("/sessions", handlers.GetSessions(store))
	api.Put("/sessions", handlers.SetSessions(store))
	api.Post("/sessions/active", handlers.SetActiveSession(store))
	api.Get("/sessions/:key/messages", handlers.GetSessionMessages(store))
	api.Delete("/sessions/:key/messages", handlers.ClearSessionMessages(store))

	// Drafts
	api.Get("/sessions/:key/draft", handlers.GetDraft(store))
	api.Put("/sessions/:key/draft", handlers.PutDraft(store))

	// Outbound user turns
	api.Post("/messages", handlers.PostMessage(store, sender))

	// Tabs
	api.Post("/tabs", handlers.OpenTab(store))
	api.Delete("/tabs/:key", handlers.CloseTab(store))
	api.Put("/tabs", handlers.ReorderTabs(store))

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "console-backend",
		})
	})

	// State push socket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(handlers.StateSocket(store)))
}
