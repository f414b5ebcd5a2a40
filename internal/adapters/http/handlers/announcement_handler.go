package handlers

import (
	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/pagination"
	"barangaylink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AnnouncementHandler handles announcement endpoints
type AnnouncementHandler struct {
	announcementService *services.AnnouncementService
}

// NewAnnouncementHandler creates a new announcement handler
func NewAnnouncementHandler(announcementService *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// List returns announcements, pinned first
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Announcement}
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *fiber.Ctx) error {
	p := pagination.GetParams(c)
	items, total, err := h.announcementService.List(c.Context(), p)
	if err != nil {
		return serviceError(c, err, "Failed to list announcements")
	}
	return response.Paginated(c, items, p, total)
}

// Create posts an announcement
// @Summary Post an announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.AnnouncementInput true "Announcement"
// @Success 201 {object} response.Response{data=models.Announcement}
// @Router /announcements [post]
func (h *AnnouncementHandler) Create(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in services.AnnouncementInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	item, err := h.announcementService.Create(c.Context(), a, &in)
	if err != nil {
		return serviceError(c, err, "Failed to post announcement")
	}
	return response.Created(c, "Announcement posted", item)
}

// Delete removes an announcement
// @Summary Delete an announcement
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Response
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid announcement ID")
	}
	if err := h.announcementService.Delete(c.Context(), id); err != nil {
		return serviceError(c, err, "Failed to delete announcement")
	}
	return response.Success(c, "Announcement deleted", nil)
}
