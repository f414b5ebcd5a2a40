package apiclient

import "time"

// Role is a user's role. The set is fixed.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleVolunteer Role = "VOLUNTEER"
	RoleMember    Role = "MEMBER"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleVolunteer, RoleMember:
		return true
	}
	return false
}

// User is the identity carried by a session.
type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// AuthResult is the data returned by login, register and refresh.
type AuthResult struct {
	User         *User  `json:"user,omitempty"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// ServiceRequest is a resident's request for help.
type ServiceRequest struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Location    string     `json:"location,omitempty"`
	RequesterID uint       `json:"requesterId"`
	AssigneeID  *uint      `json:"assigneeId,omitempty"`
	AIScore     *float64   `json:"aiScore,omitempty"`
	AIReason    string     `json:"aiReason,omitempty"`
	Attachments []string   `json:"attachments,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ServiceRequestInput creates or updates a request.
type ServiceRequestInput struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Location    string `json:"location,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// Event is a community activity.
type Event struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	StartsAt        time.Time `json:"startsAt"`
	EndsAt          time.Time `json:"endsAt"`
	Capacity        int       `json:"capacity"`
	Participants    int       `json:"participants"`
	NeedsVolunteers bool      `json:"needsVolunteers"`
	OrganizerID     uint      `json:"organizerId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// EventInput creates or updates an event.
type EventInput struct {
	Title           string    `json:"title,omitempty"`
	Description     string    `json:"description,omitempty"`
	Location        string    `json:"location,omitempty"`
	StartsAt        time.Time `json:"startsAt,omitempty"`
	EndsAt          time.Time `json:"endsAt,omitempty"`
	Capacity        int       `json:"capacity,omitempty"`
	NeedsVolunteers bool      `json:"needsVolunteers,omitempty"`
}

// Participant is a user registered for an event.
type Participant struct {
	UserID       uint      `json:"userId"`
	Name         string    `json:"name"`
	AsVolunteer  bool      `json:"asVolunteer"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Donation is a monetary or in-kind contribution.
type Donation struct {
	ID        uint      `json:"id"`
	DonorID   *uint     `json:"donorId,omitempty"`
	DonorName string    `json:"donorName"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	Items     string    `json:"items,omitempty"`
	Campaign  string    `json:"campaign,omitempty"`
	Anonymous bool      `json:"anonymous"`
	Status    string    `json:"status"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"createdAt"`
}

// DonationInput records a donation.
type DonationInput struct {
	Type      string  `json:"type"`
	Amount    float64 `json:"amount,omitempty"`
	Items     string  `json:"items,omitempty"`
	Campaign  string  `json:"campaign,omitempty"`
	Anonymous bool    `json:"anonymous,omitempty"`
}

// DonationStats aggregates donations.
type DonationStats struct {
	TotalAmount float64          `json:"totalAmount"`
	Count       int64            `json:"count"`
	ByType      map[string]int64 `json:"byType"`
}

// VolunteerProfile describes a volunteer's availability.
type VolunteerProfile struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"userId"`
	Name         string    `json:"name,omitempty"`
	Skills       []string  `json:"skills"`
	Availability string    `json:"availability"`
	Status       string    `json:"status"`
	HoursLogged  float64   `json:"hoursLogged"`
	CreatedAt    time.Time `json:"createdAt"`
}

// VolunteerInput applies for or updates a volunteer profile.
type VolunteerInput struct {
	Skills       []string `json:"skills"`
	Availability string   `json:"availability"`
}

// AdminStats summarizes the system for the admin dashboard.
type AdminStats struct {
	Users          int64            `json:"users"`
	UsersByRole    map[string]int64 `json:"usersByRole"`
	Requests       int64            `json:"requests"`
	OpenRequests   int64            `json:"openRequests"`
	Events         int64            `json:"events"`
	DonationsTotal float64          `json:"donationsTotal"`
	ActiveAlerts   int64            `json:"activeAlerts"`
}

// Announcement is a notice posted by staff.
type Announcement struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Pinned    bool      `json:"pinned"`
	AuthorID  uint      `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// AnnouncementInput posts an announcement.
type AnnouncementInput struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Pinned bool   `json:"pinned,omitempty"`
}

// Notification is a message for one user.
type Notification struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmergencyAlert is a broadcast about an ongoing emergency.
type EmergencyAlert struct {
	ID         uint       `json:"id"`
	Type       string     `json:"type"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Location   string     `json:"location"`
	ReporterID uint       `json:"reporterId"`
	Active     bool       `json:"active"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// EmergencyAlertInput raises an alert.
type EmergencyAlertInput struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

// EmergencyContact is a hotline listed for residents.
type EmergencyContact struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Agency string `json:"agency"`
}

// ChatReply is the assistant's answer.
type ChatReply struct {
	Response         string   `json:"response"`
	Confidence       float64  `json:"confidence"`
	Category         string   `json:"category"`
	SuggestedActions []string `json:"suggested_actions"`
	Language         string   `json:"language"`
}

// PriorityPreview is the assistant's priority estimate for a draft request.
type PriorityPreview struct {
	Priority          string   `json:"priority"`
	Score             float64  `json:"score"`
	Reason            string   `json:"reason"`
	SuggestedCategory *string  `json:"suggested_category"`
	KeywordsFound     []string `json:"keywords_found"`
}
