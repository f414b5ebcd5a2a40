package handlers

import (
	"barangaylink/internal/adapters/realtime"
	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/pagination"
	"barangaylink/internal/pkg/response"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles the inbox and the push channel
type NotificationHandler struct {
	notificationService *services.NotificationService
	hub                 *realtime.Hub
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService, hub *realtime.Hub) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, hub: hub}
}

// List returns the caller's notifications, newest first
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Unread only"
// @Success 200 {object} response.Response{data=[]models.Notification}
// @Router /notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	p := pagination.GetParams(c)
	items, total, err := h.notificationService.List(c.Context(), a.UserID, c.QueryBool("unread", false), p)
	if err != nil {
		return serviceError(c, err, "Failed to list notifications")
	}
	return response.Paginated(c, items, p, total)
}

// UnreadCount returns how many notifications are unread
// @Summary Unread notification count
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	n, err := h.notificationService.UnreadCount(c.Context(), a.UserID)
	if err != nil {
		return serviceError(c, err, "Failed to count notifications")
	}
	return response.Success(c, "", fiber.Map{"count": n})
}

// MarkRead marks one notification read
// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Response
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}
	if err := h.notificationService.MarkRead(c.Context(), a.UserID, id); err != nil {
		return serviceError(c, err, "Failed to update notification")
	}
	return response.Success(c, "Notification marked as read", nil)
}

// MarkAllRead marks every notification read
// @Summary Mark all notifications read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	n, err := h.notificationService.MarkAllRead(c.Context(), a.UserID)
	if err != nil {
		return serviceError(c, err, "Failed to update notifications")
	}
	return response.Success(c, "All notifications marked as read", fiber.Map{"updated": n})
}

// UpgradeCheck rejects plain HTTP requests to the push endpoint
func (h *NotificationHandler) UpgradeCheck(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return response.Error(c, fiber.StatusUpgradeRequired, "Websocket upgrade required")
	}
	return c.Next()
}

// Stream serves the push channel for the authenticated user
// @Summary Notification push channel
// @Description Websocket. Authenticate with ?token=<access token>. Messages are {type, data, timestamp}.
// @Tags Notifications
// @Param token query string true "Access token"
// @Success 101
// @Router /ws [get]
func (h *NotificationHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)
		h.hub.Serve(userID, conn)
	})
}
