package handlers

import (
	"errors"
	"strings"

	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/pagination"
	"barangaylink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SetRoleRequest represents set role request body
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN MODERATOR VOLUNTEER MEMBER"`
}

// SetStatusRequest enables or disables an account
type SetStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// ListUsers handles listing all users (Admin only)
// @Summary List all users
// @Description Get a paginated list of all users (Admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param role query string false "Role"
// @Param search query string false "Search name or email"
// @Param active query bool false "Active accounts only, or inactive only"
// @Success 200 {object} response.Response{data=[]models.UserResponse}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	p := pagination.GetParams(c)
	filter := repositories.UserFilter{
		Role:   strings.ToUpper(c.Query("role")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if v := c.Query("active"); v != "" {
		active := c.QueryBool("active")
		filter.Active = &active
	}

	users, total, err := h.userService.ListUsers(c.Context(), filter, p)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}
	return response.Paginated(c, users, p, total)
}

// SetUserRole handles setting user role (Admin only)
// @Summary Set user role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetRoleRequest true "Role"
// @Success 200 {object} response.Response{data=models.UserResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users/{id}/role [patch]
func (h *UserHandler) SetUserRole(c *fiber.Ctx) error {
	adminID, _ := c.Locals("userID").(uint)
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}
	var req SetRoleRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	user, err := h.userService.SetRole(c.Context(), id, adminID, domain.Role(req.Role))
	if err != nil {
		return h.userError(c, err, "Failed to set user role")
	}
	return response.Success(c, "User role updated successfully", user)
}

// SetUserStatus enables or disables an account (Admin only)
// @Summary Activate or deactivate a user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetStatusRequest true "Status"
// @Success 200 {object} response.Response{data=models.UserResponse}
// @Router /admin/users/{id}/status [patch]
func (h *UserHandler) SetUserStatus(c *fiber.Ctx) error {
	adminID, _ := c.Locals("userID").(uint)
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}
	var req SetStatusRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	user, err := h.userService.SetActive(c.Context(), id, adminID, *req.IsActive)
	if err != nil {
		return h.userError(c, err, "Failed to update user status")
	}
	return response.Success(c, "User status updated successfully", user)
}

// DeleteUser handles deleting a user (Admin only)
// @Summary Delete user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	adminID, _ := c.Locals("userID").(uint)
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.DeleteUser(c.Context(), id, adminID); err != nil {
		return h.userError(c, err, "Failed to delete user")
	}
	return response.Success(c, "User deleted successfully", nil)
}

func (h *UserHandler) userError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrCannotDeleteSelf),
		errors.Is(err, services.ErrCannotChangeOwnRole),
		errors.Is(err, services.ErrCannotDeactivateSelf),
		errors.Is(err, services.ErrInvalidRole):
		return response.BadRequest(c, err.Error())
	}
	return serviceError(c, err, fallback)
}
