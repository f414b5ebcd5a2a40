package services

import (
	"errors"

	"barangaylink/internal/core/domain"

	"gorm.io/gorm"
)

// Publisher pushes realtime messages to connected users
type Publisher interface {
	SendToUser(userID uint, msgType string, data any)
	Broadcast(msgType string, data any)
}

type nopPublisher struct{}

func (nopPublisher) SendToUser(uint, string, any) {}
func (nopPublisher) Broadcast(string, any)        {}

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID uint
	Role   domain.Role
}

// IsStaff reports whether the actor is an admin or moderator
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// IsAdmin reports whether the actor is an admin
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// notFound maps gorm.ErrRecordNotFound to sentinel
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
