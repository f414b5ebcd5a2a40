package services

import (
	"context"
	"strings"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/pagination"
)

// AnnouncementInput posts an announcement
type AnnouncementInput struct {
	Title  string `json:"title" validate:"required,max=200"`
	Body   string `json:"body" validate:"required"`
	Pinned bool   `json:"pinned"`
}

// AnnouncementService handles staff announcements
type AnnouncementService struct {
	repo          repositories.AnnouncementRepository
	notifications *NotificationService
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(repo repositories.AnnouncementRepository, notifications *NotificationService) *AnnouncementService {
	return &AnnouncementService{repo: repo, notifications: notifications}
}

// List returns pinned announcements first, then newest
func (s *AnnouncementService) List(ctx context.Context, p *pagination.Params) ([]*models.Announcement, int64, error) {
	return s.repo.List(ctx, p.Offset, p.Limit)
}

// Create posts an announcement and pushes it to everyone online
func (s *AnnouncementService) Create(ctx context.Context, actor Actor, input *AnnouncementInput) (*models.Announcement, error) {
	a := &models.Announcement{
		Title:    strings.TrimSpace(input.Title),
		Body:     strings.TrimSpace(input.Body),
		Pinned:   input.Pinned,
		AuthorID: actor.UserID,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.notifications.Broadcast(PushAnnouncement, a)
	if a.Pinned {
		s.notifications.NotifyEveryone(ctx, domain.NotifyAnnouncement, a.Title, a.Body, "/announcements")
	}
	return a, nil
}

// Delete removes an announcement
func (s *AnnouncementService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return notFound(err, domain.ErrAnnouncementNotFound)
	}
	return s.repo.Delete(ctx, id)
}
