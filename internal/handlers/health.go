package handlers

import (
	"github.com/gofiber/fiber/v2"

	"studiodesk/internal/database"
	"studiodesk/internal/gateway"
)

// HealthHandler reports service liveness
type HealthHandler struct {
	db *database.DB
	gw *gateway.Gateway
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, gw *gateway.Gateway) *HealthHandler {
	return &HealthHandler{db: db, gw: gw}
}

// Check returns service status
// GET /health
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	status := fiber.StatusOK
	if err := h.db.Ping(); err != nil {
		dbStatus = "unreachable"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   "ok",
		"service":  "studiodesk",
		"database": dbStatus,
		"remote":   h.gw.Enabled(),
	})
}
