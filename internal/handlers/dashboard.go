package handlers

import (
	"github.com/gofiber/fiber/v2"

	"studiodesk/internal/middleware"
	"studiodesk/internal/services"
)

// DashboardHandler serves the aggregate counts for the landing page
type DashboardHandler struct {
	dashboard *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats returns entity counts and the task status breakdown
// GET /api/dashboard/stats
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	st := middleware.AppData(c)
	stats := h.dashboard.Stats(c.UserContext(), st)
	return c.JSON(fiber.Map{"data": stats})
}
