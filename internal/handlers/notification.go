package handlers

import (
	"github.com/gofiber/fiber/v2"

	"studiodesk/internal/notify"
)

// NotificationHandler exposes the notification feed
type NotificationHandler struct {
	feed *notify.Feed
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(feed *notify.Feed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// List returns the feed, oldest first
// GET /api/notifications
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	entries := h.feed.List()
	return c.JSON(fiber.Map{
		"data":  entries,
		"count": len(entries),
	})
}
