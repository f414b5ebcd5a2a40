package repositories

import (
	"context"
	"time"

	"barangaylink/internal/adapters/persistence/models"
)

// UserFilter narrows user listings
type UserFilter struct {
	Role   string
	Search string
	Active *bool
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, int64, error)
	ListIDs(ctx context.Context, roles ...string) ([]uint, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
	CountActiveAdmins(ctx context.Context) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	GetByUserID(ctx context.Context, userID uint) ([]*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) (bool, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
	CountActiveByUserID(ctx context.Context, userID uint) (int64, error)
}

// PasswordResetRepository stores hashed reset tokens
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *models.PasswordReset) error
	GetValid(ctx context.Context, tokenHash string) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, id uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// RequestFilter narrows service request listings
type RequestFilter struct {
	Status      string
	Category    string
	Priority    string
	Search      string
	RequesterID uint
	AssigneeID  uint
}

// RequestRepository defines service request persistence
type RequestRepository interface {
	Create(ctx context.Context, req *models.ServiceRequest) error
	GetByID(ctx context.Context, id uint) (*models.ServiceRequest, error)
	Update(ctx context.Context, req *models.ServiceRequest) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter RequestFilter, offset, limit int) ([]*models.ServiceRequest, int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// EventRepository defines event and registration persistence
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, upcomingOnly bool, search string, offset, limit int) ([]*models.Event, int64, error)
	Count(ctx context.Context) (int64, error)

	Register(ctx context.Context, reg *models.EventRegistration) error
	Unregister(ctx context.Context, eventID, userID uint) (bool, error)
	IsRegistered(ctx context.Context, eventID, userID uint) (bool, error)
	CountRegistrations(ctx context.Context, eventIDs ...uint) (map[uint]int64, error)
	Participants(ctx context.Context, eventID uint) ([]*models.EventRegistration, error)
	DueReminders(ctx context.Context, from, to time.Time) ([]*models.EventRegistration, error)
	MarkReminded(ctx context.Context, ids []uint, at time.Time) error
}

// DonationFilter narrows donation listings
type DonationFilter struct {
	Type     string
	Campaign string
	DonorID  uint
}

// DonationStats aggregates donations
type DonationStats struct {
	TotalAmount float64          `json:"totalAmount"`
	Count       int64            `json:"count"`
	ByType      map[string]int64 `json:"byType"`
}

// DonationRepository defines donation persistence
type DonationRepository interface {
	Create(ctx context.Context, d *models.Donation) error
	GetByID(ctx context.Context, id uint) (*models.Donation, error)
	List(ctx context.Context, filter DonationFilter, offset, limit int) ([]*models.Donation, int64, error)
	Stats(ctx context.Context) (*DonationStats, error)
}

// VolunteerRepository defines volunteer profile persistence
type VolunteerRepository interface {
	Create(ctx context.Context, p *models.VolunteerProfile) error
	GetByUserID(ctx context.Context, userID uint) (*models.VolunteerProfile, error)
	Update(ctx context.Context, p *models.VolunteerProfile) error
	List(ctx context.Context, status string, offset, limit int) ([]*models.VolunteerProfile, int64, error)
}

// AnnouncementRepository defines announcement persistence
type AnnouncementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error
	GetByID(ctx context.Context, id uint) (*models.Announcement, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Announcement, int64, error)
}

// NotificationRepository defines notification persistence
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateBatch(ctx context.Context, ns []*models.Notification) error
	List(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) (bool, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

// EmergencyRepository defines alert and contact persistence
type EmergencyRepository interface {
	CreateAlert(ctx context.Context, a *models.EmergencyAlert) error
	GetAlert(ctx context.Context, id uint) (*models.EmergencyAlert, error)
	UpdateAlert(ctx context.Context, a *models.EmergencyAlert) error
	ActiveAlerts(ctx context.Context) ([]*models.EmergencyAlert, error)
	CountActive(ctx context.Context) (int64, error)
	Contacts(ctx context.Context) ([]*models.EmergencyContact, error)
	CreateContact(ctx context.Context, c *models.EmergencyContact) error
	CountContacts(ctx context.Context) (int64, error)
}

// Repositories bundles every repository for wiring
type Repositories struct {
	Users          UserRepository
	RefreshTokens  RefreshTokenRepository
	PasswordResets PasswordResetRepository
	Requests       RequestRepository
	Events         EventRepository
	Donations      DonationRepository
	Volunteers     VolunteerRepository
	Announcements  AnnouncementRepository
	Notifications  NotificationRepository
	Emergency      EmergencyRepository
}
