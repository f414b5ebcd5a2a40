package handlers

import (
	"errors"
	"strconv"

	"barangaylink/internal/core/domain"
	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/response"
	"barangaylink/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

var errBadID = errors.New("invalid id")

// actor builds the service caller from the locals set by AuthMiddleware
func actor(c *fiber.Ctx) (services.Actor, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return services.Actor{}, false
	}
	role, _ := c.Locals("role").(string)
	return services.Actor{UserID: userID, Role: domain.Role(role)}, true
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errBadID
	}
	return uint(id), nil
}

// bind parses the JSON body into in and validates it. It writes the error
// response itself and reports false when the handler should return.
func bind(c *fiber.Ctx, in any) (bool, error) {
	if err := c.BodyParser(in); err != nil {
		return false, response.BadRequest(c, "Invalid request body")
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return false, response.ValidationFailed(c, errs)
	}
	return true, nil
}

// serviceError maps domain errors to HTTP responses. fallback is the message
// used for unexpected errors.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrDonationNotFound),
		errors.Is(err, domain.ErrVolunteerNotFound),
		errors.Is(err, domain.ErrAnnouncementNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrAlertNotFound),
		errors.Is(err, domain.ErrNotRegistered),
		errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to do that")
	case errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, "Unauthorized")
	case errors.Is(err, domain.ErrUserAlreadyExists),
		errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrAlreadyVolunteer),
		errors.Is(err, domain.ErrEventFull),
		errors.Is(err, domain.ErrAlertResolved),
		errors.Is(err, domain.ErrLastAdmin),
		errors.Is(err, domain.ErrDuplicateEntry):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrNotAVolunteer),
		errors.Is(err, domain.ErrEventEnded),
		errors.Is(err, domain.ErrInvalidSchedule),
		errors.Is(err, domain.ErrInvalidDonation),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrAttachmentTooLarge):
		return response.Error(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, domain.ErrAIUnavailable), errors.Is(err, domain.ErrAICircuitOpen):
		return response.ServiceUnavailable(c, err.Error())
	case errors.Is(err, domain.ErrAIUpstream):
		return response.Error(c, fiber.StatusBadGateway, "The assistant could not answer right now")
	}

	logger.Errorf("❌ %s: %v", fallback, err)
	return response.InternalServerError(c, fallback)
}
