package handlers

import (
	"strings"

	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/pagination"
	"barangaylink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DonationHandler handles donation endpoints
type DonationHandler struct {
	donationService *services.DonationService
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService *services.DonationService) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

// List returns all donations
// @Summary List donations
// @Description Staff only
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param type query string false "MONETARY or IN_KIND"
// @Param campaign query string false "Campaign"
// @Success 200 {object} response.Response{data=[]models.Donation}
// @Router /donations [get]
func (h *DonationHandler) List(c *fiber.Ctx) error {
	p := pagination.GetParams(c)
	filter := repositories.DonationFilter{
		Type:     strings.ToUpper(c.Query("type")),
		Campaign: strings.TrimSpace(c.Query("campaign")),
	}
	donations, total, err := h.donationService.List(c.Context(), filter, p)
	if err != nil {
		return serviceError(c, err, "Failed to list donations")
	}
	return response.Paginated(c, donations, p, total)
}

// Mine returns the caller's donations
// @Summary List my donations
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Donation}
// @Router /donations/my [get]
func (h *DonationHandler) Mine(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	p := pagination.GetParams(c)
	donations, total, err := h.donationService.Mine(c.Context(), a, p)
	if err != nil {
		return serviceError(c, err, "Failed to list donations")
	}
	return response.Paginated(c, donations, p, total)
}

// Get returns one donation
// @Summary Get a donation
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response{data=models.Donation}
// @Router /donations/{id} [get]
func (h *DonationHandler) Get(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid donation ID")
	}
	d, err := h.donationService.Get(c.Context(), a, id)
	if err != nil {
		return serviceError(c, err, "Failed to get donation")
	}
	return response.Success(c, "", d)
}

// Create records a donation
// @Summary Donate
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.DonationInput true "Donation"
// @Success 201 {object} response.Response{data=models.Donation}
// @Router /donations [post]
func (h *DonationHandler) Create(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in services.DonationInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	d, err := h.donationService.Create(c.Context(), a, &in)
	if err != nil {
		return serviceError(c, err, "Failed to record donation")
	}
	return response.Created(c, "Thank you for your donation", d)
}

// Stats aggregates donations
// @Summary Donation statistics
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=repositories.DonationStats}
// @Router /donations/stats [get]
func (h *DonationHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.donationService.Stats(c.Context())
	if err != nil {
		return serviceError(c, err, "Failed to get donation statistics")
	}
	return response.Success(c, "", stats)
}
