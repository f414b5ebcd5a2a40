package services

import (
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/config"
	"barangaylink/internal/pkg/metrics"
)

// Services bundles every service the HTTP layer and the scheduler use
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Dashboard     *DashboardService
	AI            *AIService
	Notifications *NotificationService
	Requests      *RequestService
	Events        *EventService
	Donations     *DonationService
	Volunteers    *VolunteerService
	Announcements *AnnouncementService
	Emergency     *EmergencyService
}

// New wires the services. publisher and rec may be nil.
func New(repos *repositories.Repositories, cfg *config.Config, publisher Publisher, rec metrics.Recorder) *Services {
	ai := NewAIService(cfg.AI, rec)
	notifications := NewNotificationService(repos.Notifications, repos.Users, publisher)
	requests := NewRequestService(repos, ai, notifications, cfg.Upload)

	return &Services{
		Auth:          NewAuthService(repos.Users, repos.RefreshTokens, repos.PasswordResets, cfg),
		Users:         NewUserService(repos.Users, repos.RefreshTokens),
		Dashboard:     NewDashboardService(repos),
		AI:            ai,
		Notifications: notifications,
		Requests:      requests,
		Events:        NewEventService(repos, notifications),
		Donations:     NewDonationService(repos, notifications),
		Volunteers:    NewVolunteerService(repos, requests, notifications),
		Announcements: NewAnnouncementService(repos.Announcements, notifications),
		Emergency:     NewEmergencyService(repos.Emergency, notifications),
	}
}
