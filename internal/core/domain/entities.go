package domain

// Role represents user role in the system
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleVolunteer Role = "VOLUNTEER"
	RoleMember    Role = "MEMBER"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleVolunteer, RoleMember:
		return true
	}
	return false
}

// IsStaff reports whether r may manage requests, events and announcements
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleModerator
}

// Service request categories, as understood by the prioritization service
const (
	CategoryEmergency      = "EMERGENCY"
	CategoryMedical        = "MEDICAL"
	CategoryFood           = "FOOD"
	CategoryDisaster       = "DISASTER"
	CategoryInfrastructure = "INFRASTRUCTURE"
	CategoryEducation      = "EDUCATION"
	CategoryLegal          = "LEGAL"
	CategoryFinancial      = "FINANCIAL"
	CategoryOther          = "OTHER"
)

// Categories lists every request category
var Categories = []string{
	CategoryEmergency, CategoryMedical, CategoryFood, CategoryDisaster, CategoryInfrastructure,
	CategoryEducation, CategoryLegal, CategoryFinancial, CategoryOther,
}

// Priorities, highest first
const (
	PriorityUrgent = "URGENT"
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// DefaultPriority is used when the prioritization service is unavailable
func DefaultPriority(category string) string {
	switch category {
	case CategoryDisaster, CategoryEmergency:
		return PriorityUrgent
	case CategoryMedical:
		return PriorityHigh
	case CategoryFood, CategoryInfrastructure, CategoryLegal:
		return PriorityMedium
	}
	return PriorityLow
}

// Service request workflow
const (
	RequestPending    = "PENDING"
	RequestInProgress = "IN_PROGRESS"
	RequestResolved   = "RESOLVED"
	RequestRejected   = "REJECTED"
)

// CanTransition reports whether a request may move from one status to another
func CanTransition(from, to string) bool {
	switch from {
	case RequestPending:
		return to == RequestInProgress || to == RequestResolved || to == RequestRejected
	case RequestInProgress:
		return to == RequestResolved || to == RequestRejected || to == RequestPending
	case RequestRejected:
		return to == RequestPending
	}
	return false
}

// Donation types and states
const (
	DonationMonetary = "MONETARY"
	DonationInKind   = "IN_KIND"

	DonationPending  = "PENDING"
	DonationReceived = "RECEIVED"
)

// Volunteer profile states
const (
	VolunteerPending  = "PENDING"
	VolunteerApproved = "APPROVED"
	VolunteerInactive = "INACTIVE"
)

// Emergency alert severities
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Notification types stored with each notification
const (
	NotifyRequestUpdate = "REQUEST_UPDATE"
	NotifyAssignment    = "ASSIGNMENT"
	NotifyEventReminder = "EVENT_REMINDER"
	NotifyAnnouncement  = "ANNOUNCEMENT"
	NotifyEmergency     = "EMERGENCY"
	NotifyDonation      = "DONATION"
)
