package handlers

import (
	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetAdminStats returns system-wide figures
// @Summary Admin dashboard statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=services.AdminStats}
// @Failure 403 {object} response.Response
// @Router /admin/stats [get]
func (h *DashboardHandler) GetAdminStats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.Stats(c.Context())
	if err != nil {
		return serviceError(c, err, "Failed to get dashboard statistics")
	}
	return response.Success(c, "Dashboard statistics retrieved successfully", stats)
}
