package handlers

import (
	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EmergencyHandler handles emergency alert endpoints
type EmergencyHandler struct {
	emergencyService *services.EmergencyService
}

// NewEmergencyHandler creates a new emergency handler
func NewEmergencyHandler(emergencyService *services.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{emergencyService: emergencyService}
}

// ActiveAlerts lists unresolved alerts
// @Summary Active emergency alerts
// @Tags Emergency
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.EmergencyAlert}
// @Router /emergency/alerts [get]
func (h *EmergencyHandler) ActiveAlerts(c *fiber.Ctx) error {
	alerts, err := h.emergencyService.ActiveAlerts(c.Context())
	if err != nil {
		return serviceError(c, err, "Failed to list alerts")
	}
	return response.Success(c, "", alerts)
}

// Raise reports an emergency
// @Summary Raise an emergency alert
// @Description Any resident may raise an alert; it is pushed to every connected user
// @Tags Emergency
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.AlertInput true "Alert"
// @Success 201 {object} response.Response{data=models.EmergencyAlert}
// @Router /emergency/alerts [post]
func (h *EmergencyHandler) Raise(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in services.AlertInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	alert, err := h.emergencyService.Raise(c.Context(), a, &in)
	if err != nil {
		return serviceError(c, err, "Failed to raise alert")
	}
	return response.Created(c, "Alert raised", alert)
}

// Resolve closes an alert
// @Summary Resolve an emergency alert
// @Tags Emergency
// @Produce json
// @Security BearerAuth
// @Param id path int true "Alert ID"
// @Success 200 {object} response.Response{data=models.EmergencyAlert}
// @Failure 409 {object} response.Response
// @Router /emergency/alerts/{id}/resolve [patch]
func (h *EmergencyHandler) Resolve(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid alert ID")
	}
	alert, err := h.emergencyService.Resolve(c.Context(), a, id)
	if err != nil {
		return serviceError(c, err, "Failed to resolve alert")
	}
	return response.Success(c, "Alert resolved", alert)
}

// Contacts lists hotlines
// @Summary Emergency hotlines
// @Tags Emergency
// @Produce json
// @Success 200 {object} response.Response{data=[]models.EmergencyContact}
// @Router /emergency/contacts [get]
func (h *EmergencyHandler) Contacts(c *fiber.Ctx) error {
	contacts, err := h.emergencyService.Contacts(c.Context())
	if err != nil {
		return serviceError(c, err, "Failed to list contacts")
	}
	return response.Success(c, "", contacts)
}
