package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/logger"
)

// AlertInput raises an emergency alert
type AlertInput struct {
	Type     string `json:"type" validate:"required,max=30"`
	Severity string `json:"severity" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	Message  string `json:"message" validate:"required,max=1000"`
	Location string `json:"location" validate:"required,max=255"`
}

// EmergencyService handles emergency alerts and hotlines
type EmergencyService struct {
	repo          repositories.EmergencyRepository
	notifications *NotificationService
}

// NewEmergencyService creates a new emergency service
func NewEmergencyService(repo repositories.EmergencyRepository, notifications *NotificationService) *EmergencyService {
	return &EmergencyService{repo: repo, notifications: notifications}
}

// ActiveAlerts returns unresolved alerts, most severe first
func (s *EmergencyService) ActiveAlerts(ctx context.Context) ([]*models.EmergencyAlert, error) {
	return s.repo.ActiveAlerts(ctx)
}

// Raise records an alert and pushes it to everyone online. Staff are also
// sent a stored notification.
func (s *EmergencyService) Raise(ctx context.Context, actor Actor, input *AlertInput) (*models.EmergencyAlert, error) {
	alert := &models.EmergencyAlert{
		Type:       strings.ToUpper(strings.TrimSpace(input.Type)),
		Severity:   input.Severity,
		Message:    strings.TrimSpace(input.Message),
		Location:   strings.TrimSpace(input.Location),
		ReporterID: actor.UserID,
		Active:     true,
	}
	if err := s.repo.CreateAlert(ctx, alert); err != nil {
		return nil, err
	}

	logger.Warnf("🚨 Emergency alert %d raised by user %d: %s at %s [%s]", alert.ID, actor.UserID, alert.Type, alert.Location, alert.Severity)
	s.notifications.Broadcast(PushEmergencyAlert, alert)
	s.notifications.NotifyRoles(ctx, []domain.Role{domain.RoleAdmin, domain.RoleModerator},
		domain.NotifyEmergency, fmt.Sprintf("%s emergency: %s", alert.Severity, alert.Type), alert.Message, "/emergency")
	return alert, nil
}

// Resolve closes an alert and pushes the resolution
func (s *EmergencyService) Resolve(ctx context.Context, actor Actor, id uint) (*models.EmergencyAlert, error) {
	alert, err := s.repo.GetAlert(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrAlertNotFound)
	}
	if !alert.Active {
		return nil, domain.ErrAlertResolved
	}

	now := time.Now()
	resolver := actor.UserID
	alert.Active = false
	alert.ResolvedAt = &now
	alert.ResolvedBy = &resolver
	if err := s.repo.UpdateAlert(ctx, alert); err != nil {
		return nil, err
	}

	logger.Infof("✅ Emergency alert %d resolved by user %d", alert.ID, actor.UserID)
	s.notifications.Broadcast(PushAlertResolved, alert)
	return alert, nil
}

// Contacts lists emergency hotlines
func (s *EmergencyService) Contacts(ctx context.Context) ([]*models.EmergencyContact, error) {
	return s.repo.Contacts(ctx)
}
