package services

import (
	"context"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/pagination"
)

// Push message types, mirrored by connected clients
const (
	PushNotification   = "notification"
	PushEmergencyAlert = "emergency_alert"
	PushAlertResolved  = "alert_resolved"
	PushAnnouncement   = "announcement"
)

// NotificationService stores per-user notifications and pushes them live
type NotificationService struct {
	repo      repositories.NotificationRepository
	userRepo  repositories.UserRepository
	publisher Publisher
}

// NewNotificationService creates a new notification service. publisher may be nil.
func NewNotificationService(repo repositories.NotificationRepository, userRepo repositories.UserRepository, publisher Publisher) *NotificationService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &NotificationService{repo: repo, userRepo: userRepo, publisher: publisher}
}

// Notify stores a notification for userID and pushes it. Failures are logged,
// never returned.
func (s *NotificationService) Notify(ctx context.Context, userID uint, kind, title, message, link string) {
	if userID == 0 {
		return
	}
	n := &models.Notification{UserID: userID, Type: kind, Title: title, Message: message, Link: link}
	if err := s.repo.Create(ctx, n); err != nil {
		logger.Errorf("❌ Failed to store notification for user %d: %v", userID, err)
		return
	}
	s.publisher.SendToUser(userID, PushNotification, n)
}

// NotifyMany stores one notification per user in a single batch and pushes each
func (s *NotificationService) NotifyMany(ctx context.Context, userIDs []uint, kind, title, message, link string) {
	if len(userIDs) == 0 {
		return
	}
	batch := make([]*models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		batch = append(batch, &models.Notification{UserID: id, Type: kind, Title: title, Message: message, Link: link})
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		logger.Errorf("❌ Failed to store %d notifications: %v", len(batch), err)
		return
	}
	for _, n := range batch {
		s.publisher.SendToUser(n.UserID, PushNotification, n)
	}
}

// NotifyRoles notifies every active user holding one of roles
func (s *NotificationService) NotifyRoles(ctx context.Context, roles []domain.Role, kind, title, message, link string) {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	ids, err := s.userRepo.ListIDs(ctx, names...)
	if err != nil {
		logger.Errorf("❌ Failed to list users for roles %v: %v", names, err)
		return
	}
	s.NotifyMany(ctx, ids, kind, title, message, link)
}

// NotifyEveryone notifies every active user
func (s *NotificationService) NotifyEveryone(ctx context.Context, kind, title, message, link string) {
	ids, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		logger.Errorf("❌ Failed to list users: %v", err)
		return
	}
	s.NotifyMany(ctx, ids, kind, title, message, link)
}

// Broadcast pushes a live message to every connected user without storing it
func (s *NotificationService) Broadcast(msgType string, data any) {
	s.publisher.Broadcast(msgType, data)
}

// List returns the caller's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, p *pagination.Params) ([]*models.Notification, int64, error) {
	return s.repo.List(ctx, userID, unreadOnly, p.Offset, p.Limit)
}

// UnreadCount counts the caller's unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one of the caller's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	ok, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every notification of the caller as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
