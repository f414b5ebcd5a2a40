package repositories

import "gorm.io/gorm"

// New builds every repository over db
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(db),
		RefreshTokens:  NewRefreshTokenRepository(db),
		PasswordResets: NewPasswordResetRepository(db),
		Requests:       NewRequestRepository(db),
		Events:         NewEventRepository(db),
		Donations:      NewDonationRepository(db),
		Volunteers:     NewVolunteerRepository(db),
		Announcements:  NewAnnouncementRepository(db),
		Notifications:  NewNotificationRepository(db),
		Emergency:      NewEmergencyRepository(db),
	}
}
