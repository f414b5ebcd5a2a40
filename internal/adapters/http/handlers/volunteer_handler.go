package handlers

import (
	"strings"

	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/pagination"
	"barangaylink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// VolunteerHandler handles volunteer endpoints
type VolunteerHandler struct {
	volunteerService *services.VolunteerService
}

// NewVolunteerHandler creates a new volunteer handler
func NewVolunteerHandler(volunteerService *services.VolunteerService) *VolunteerHandler {
	return &VolunteerHandler{volunteerService: volunteerService}
}

// List returns volunteer profiles
// @Summary List volunteers
// @Description Staff only
// @Tags Volunteers
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, APPROVED or INACTIVE"
// @Success 200 {object} response.Response{data=[]models.VolunteerProfile}
// @Router /volunteers [get]
func (h *VolunteerHandler) List(c *fiber.Ctx) error {
	p := pagination.GetParams(c)
	profiles, total, err := h.volunteerService.List(c.Context(), strings.ToUpper(c.Query("status")), p)
	if err != nil {
		return serviceError(c, err, "Failed to list volunteers")
	}
	return response.Paginated(c, profiles, p, total)
}

// Apply creates the caller's volunteer profile
// @Summary Become a volunteer
// @Tags Volunteers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.VolunteerInput true "Profile"
// @Success 201 {object} response.Response{data=models.VolunteerProfile}
// @Failure 409 {object} response.Response
// @Router /volunteers/apply [post]
func (h *VolunteerHandler) Apply(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in services.VolunteerInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	profile, err := h.volunteerService.Apply(c.Context(), a, &in)
	if err != nil {
		return serviceError(c, err, "Failed to register volunteer")
	}
	return response.Created(c, "Welcome aboard, volunteer", profile)
}

// Me returns the caller's profile
// @Summary Get my volunteer profile
// @Tags Volunteers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.VolunteerProfile}
// @Router /volunteers/me [get]
func (h *VolunteerHandler) Me(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	profile, err := h.volunteerService.Me(c.Context(), a)
	if err != nil {
		return serviceError(c, err, "Failed to get volunteer profile")
	}
	return response.Success(c, "", profile)
}

// UpdateMe changes the caller's skills and availability
// @Summary Update my volunteer profile
// @Tags Volunteers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.VolunteerInput true "Profile"
// @Success 200 {object} response.Response{data=models.VolunteerProfile}
// @Router /volunteers/me [put]
func (h *VolunteerHandler) UpdateMe(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in services.VolunteerInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	profile, err := h.volunteerService.UpdateMe(c.Context(), a, &in)
	if err != nil {
		return serviceError(c, err, "Failed to update volunteer profile")
	}
	return response.Success(c, "Volunteer profile updated", profile)
}

// Assignments returns the caller's assigned requests
// @Summary My assignments
// @Tags Volunteers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.ServiceRequest}
// @Router /volunteers/me/assignments [get]
func (h *VolunteerHandler) Assignments(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	reqs, err := h.volunteerService.Assignments(c.Context(), a)
	if err != nil {
		return serviceError(c, err, "Failed to list assignments")
	}
	return response.Success(c, "", reqs)
}
