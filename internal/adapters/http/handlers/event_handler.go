package handlers

import (
	"strings"

	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/pagination"
	"barangaylink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EventHandler handles community event endpoints
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List returns events soonest first
// @Summary List events
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param upcoming query bool false "Only events that have not ended"
// @Param search query string false "Search title"
// @Success 200 {object} response.Response{data=[]models.Event}
// @Router /events [get]
func (h *EventHandler) List(c *fiber.Ctx) error {
	p := pagination.GetParams(c)
	upcoming := c.QueryBool("upcoming", false)
	events, total, err := h.eventService.List(c.Context(), upcoming, strings.TrimSpace(c.Query("search")), p)
	if err != nil {
		return serviceError(c, err, "Failed to list events")
	}
	return response.Paginated(c, events, p, total)
}

// Get returns one event
// @Summary Get an event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} response.Response{data=models.Event}
// @Failure 404 {object} response.Response
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}
	event, err := h.eventService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err, "Failed to get event")
	}
	return response.Success(c, "", event)
}

// Create schedules an event
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.EventInput true "Event"
// @Success 201 {object} response.Response{data=models.Event}
// @Router /events [post]
func (h *EventHandler) Create(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in services.EventInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	event, err := h.eventService.Create(c.Context(), a, &in)
	if err != nil {
		return serviceError(c, err, "Failed to create event")
	}
	return response.Created(c, "Event created", event)
}

// Update replaces an event's details
// @Summary Update an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param body body services.EventInput true "Event"
// @Success 200 {object} response.Response{data=models.Event}
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}
	var in services.EventInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	event, err := h.eventService.Update(c.Context(), a, id, &in)
	if err != nil {
		return serviceError(c, err, "Failed to update event")
	}
	return response.Success(c, "Event updated", event)
}

// Delete cancels an event
// @Summary Delete an event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} response.Response
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}

	if err := h.eventService.Delete(c.Context(), a, id); err != nil {
		return serviceError(c, err, "Failed to delete event")
	}
	return response.Success(c, "Event deleted", nil)
}

// Register signs the caller up
// @Summary Register for an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param body body services.EventRegisterInput false "Options"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /events/{id}/register [post]
func (h *EventHandler) Register(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}
	var in services.EventRegisterInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	if err := h.eventService.Register(c.Context(), a, id, &in); err != nil {
		return serviceError(c, err, "Failed to register")
	}
	return response.Success(c, "Registered for event", nil)
}

// Unregister removes the caller's registration
// @Summary Cancel event registration
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} response.Response
// @Router /events/{id}/register [delete]
func (h *EventHandler) Unregister(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}

	if err := h.eventService.Unregister(c.Context(), a, id); err != nil {
		return serviceError(c, err, "Failed to cancel registration")
	}
	return response.Success(c, "Registration cancelled", nil)
}

// Participants lists registrations
// @Summary List event participants
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} response.Response{data=[]models.ParticipantResponse}
// @Router /events/{id}/participants [get]
func (h *EventHandler) Participants(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}
	people, err := h.eventService.Participants(c.Context(), id)
	if err != nil {
		return serviceError(c, err, "Failed to list participants")
	}
	return response.Success(c, "", people)
}
