package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & users
// ============================================================

// User represents users table
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	FirstName   string         `gorm:"size:100;not null" json:"firstName"`
	LastName    string         `gorm:"size:100;not null" json:"lastName"`
	Phone       string         `gorm:"size:30" json:"phone,omitempty"`
	Address     string         `gorm:"size:255" json:"address,omitempty"`
	Role        string         `gorm:"size:20;default:'MEMBER';index" json:"role"`
	IsActive    bool           `gorm:"default:true" json:"isActive"`
	LastLoginAt *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// FullName joins first and last name
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Address:   u.Address,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	RevokedAt *time.Time `gorm:"index" json:"revokedAt"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// PasswordReset is a single-use reset token, stored hashed
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	TokenHash string    `gorm:"size:255;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}

// ============================================================
// Community services
// ============================================================

// ServiceRequest is a resident's request for help
type ServiceRequest struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"size:30;not null;index" json:"category"`
	Priority    string         `gorm:"size:10;not null;index" json:"priority"`
	Status      string         `gorm:"size:20;not null;index" json:"status"`
	StatusNote  string         `gorm:"type:text" json:"statusNote,omitempty"`
	Location    string         `gorm:"size:255" json:"location,omitempty"`
	RequesterID uint           `gorm:"index;not null" json:"requesterId"`
	AssigneeID  *uint          `gorm:"index" json:"assigneeId,omitempty"`
	AIScore     *float64       `json:"aiScore,omitempty"`
	AIReason    string         `gorm:"type:text" json:"aiReason,omitempty"`
	Attachments []string       `gorm:"type:text;serializer:json" json:"attachments,omitempty"`
	ResolvedAt  *time.Time     `json:"resolvedAt,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Requester *User `gorm:"foreignKey:RequesterID" json:"-"`
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}

// Event is a community activity
type Event struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:200;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Location        string         `gorm:"size:255" json:"location"`
	StartsAt        time.Time      `gorm:"not null;index" json:"startsAt"`
	EndsAt          time.Time      `gorm:"not null" json:"endsAt"`
	Capacity        int            `json:"capacity"` // 0 means unlimited
	NeedsVolunteers bool           `json:"needsVolunteers"`
	OrganizerID     uint           `gorm:"index;not null" json:"organizerId"`
	Participants    int64          `gorm:"-" json:"participants"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Event) TableName() string {
	return "events"
}

// EventRegistration links a user to an event
type EventRegistration struct {
	ID             uint `gorm:"primaryKey"`
	EventID        uint `gorm:"uniqueIndex:idx_event_user;not null"`
	UserID         uint `gorm:"uniqueIndex:idx_event_user;not null;index"`
	AsVolunteer    bool
	ReminderSentAt *time.Time `gorm:"index"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`

	Event *Event `gorm:"foreignKey:EventID"`
	User  *User  `gorm:"foreignKey:UserID"`
}

func (EventRegistration) TableName() string {
	return "event_registrations"
}

// ParticipantResponse DTO
type ParticipantResponse struct {
	UserID       uint      `json:"userId"`
	Name         string    `json:"name"`
	AsVolunteer  bool      `json:"asVolunteer"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Donation is a monetary or in-kind contribution
type Donation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DonorID   *uint     `gorm:"index" json:"donorId,omitempty"`
	DonorName string    `gorm:"size:200" json:"donorName"`
	Type      string    `gorm:"size:20;not null;index" json:"type"`
	Amount    float64   `gorm:"type:decimal(12,2)" json:"amount"`
	Items     string    `gorm:"type:text" json:"items,omitempty"`
	Campaign  string    `gorm:"size:100;index" json:"campaign,omitempty"`
	Anonymous bool      `json:"anonymous"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	Reference string    `gorm:"size:40;uniqueIndex;not null" json:"reference"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Donation) TableName() string {
	return "donations"
}

// VolunteerProfile describes a volunteer's skills and availability
type VolunteerProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"userId"`
	Name         string    `gorm:"-" json:"name,omitempty"`
	Skills       []string  `gorm:"type:text;serializer:json" json:"skills"`
	Availability string    `gorm:"size:255" json:"availability"`
	Status       string    `gorm:"size:20;not null;index" json:"status"`
	HoursLogged  float64   `json:"hoursLogged"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (VolunteerProfile) TableName() string {
	return "volunteer_profiles"
}

// ============================================================
// Communication
// ============================================================

// Announcement is a notice posted by staff
type Announcement struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	Pinned    bool           `gorm:"index" json:"pinned"`
	AuthorID  uint           `gorm:"not null" json:"authorId"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Announcement) TableName() string {
	return "announcements"
}

// Notification is a message for one user
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Type      string    `gorm:"size:30;not null" json:"type"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Link      string    `gorm:"size:255" json:"link,omitempty"`
	Read      bool      `gorm:"column:is_read;index" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

// EmergencyAlert is a broadcast about an ongoing emergency
type EmergencyAlert struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Type       string     `gorm:"size:30;not null" json:"type"`
	Severity   string     `gorm:"size:10;not null" json:"severity"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	Location   string     `gorm:"size:255" json:"location"`
	ReporterID uint       `gorm:"not null" json:"reporterId"`
	Active     bool       `gorm:"index" json:"active"`
	ResolvedBy *uint      `json:"resolvedBy,omitempty"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (EmergencyAlert) TableName() string {
	return "emergency_alerts"
}

// EmergencyContact is a hotline listed for residents
type EmergencyContact struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	Phone     string `gorm:"size:50;not null" json:"phone"`
	Agency    string `gorm:"size:100" json:"agency"`
	SortOrder int    `json:"-"`
}

func (EmergencyContact) TableName() string {
	return "emergency_contacts"
}

// All returns every model, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&PasswordReset{},
		&ServiceRequest{},
		&Event{},
		&EventRegistration{},
		&Donation{},
		&VolunteerProfile{},
		&Announcement{},
		&Notification{},
		&EmergencyAlert{},
		&EmergencyContact{},
	}
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
