package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserInactive      = errors.New("user account is inactive")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrWeakPassword      = errors.New("password must be at least 8 characters")
	ErrLastAdmin         = errors.New("cannot remove the last active administrator")
)

// Request errors
var (
	ErrRequestNotFound    = errors.New("service request not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrNotAVolunteer      = errors.New("user is not an approved volunteer")
	ErrAttachmentTooLarge = errors.New("attachment too large")
)

// Event errors
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventFull         = errors.New("event is full")
	ErrEventEnded        = errors.New("event has already ended")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrNotRegistered     = errors.New("not registered for this event")
	ErrInvalidSchedule   = errors.New("event must end after it starts")
)

// Donation and volunteer errors
var (
	ErrDonationNotFound  = errors.New("donation not found")
	ErrInvalidDonation   = errors.New("monetary donations need an amount, in-kind donations need items")
	ErrVolunteerNotFound = errors.New("volunteer profile not found")
	ErrAlreadyVolunteer  = errors.New("volunteer profile already exists")
)

// Announcement, notification and emergency errors
var (
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAlertNotFound        = errors.New("emergency alert not found")
	ErrAlertResolved        = errors.New("emergency alert already resolved")
)

// AI errors
var (
	ErrAIUnavailable = errors.New("AI service is not configured")
	ErrAIUpstream    = errors.New("AI service request failed")
	ErrAICircuitOpen = errors.New("AI service temporarily unavailable")
)
