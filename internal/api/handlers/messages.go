package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/atelier/console-backend/internal/chatstate"
)

// GatewaySender forwards user turns to the agent gateway.
type GatewaySender interface {
	Send(sessionKey, content string) error
}

// PostMessage appends a user turn to the active session and forwards it to
// the gateway. The append happens first: the panel shows the turn even if
// the gateway is briefly unreachable, and the reply arrives as events.
func PostMessage(store *chatstate.Store, sender GatewaySender) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Content     string                 `json:"content"`
			Attachments []chatstate.Attachment `json:"attachments"`
		}
		if err := c.BodyParser(&req); err != nil || req.Content == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		msg := chatstate.Message{
			ID:          uuid.New().String(),
			Role:        chatstate.RoleUser,
			Content:     req.Content,
			Timestamp:   time.Now(),
			Attachments: req.Attachments,
		}
		store.Append(msg)

		key := store.ActiveKey()
		if err := sender.Send(key, req.Content); err != nil {
			logrus.WithError(err).WithField("session", key).Warn("forward to gateway failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(msg)
	}
}
