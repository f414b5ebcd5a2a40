package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/pagination"

	"gorm.io/gorm"
)

// EventInput creates or updates an event
type EventInput struct {
	Title           string    `json:"title" validate:"required,max=200"`
	Description     string    `json:"description"`
	Location        string    `json:"location" validate:"required,max=255"`
	StartsAt        time.Time `json:"startsAt" validate:"required"`
	EndsAt          time.Time `json:"endsAt" validate:"required"`
	Capacity        int       `json:"capacity" validate:"gte=0"`
	NeedsVolunteers bool      `json:"needsVolunteers"`
}

// EventRegisterInput signs up for an event
type EventRegisterInput struct {
	AsVolunteer bool `json:"asVolunteer"`
}

// EventService handles community events
type EventService struct {
	repo          repositories.EventRepository
	volunteerRepo repositories.VolunteerRepository
	notifications *NotificationService
	now           func() time.Time
}

// NewEventService creates a new event service
func NewEventService(repos *repositories.Repositories, notifications *NotificationService) *EventService {
	return &EventService{
		repo:          repos.Events,
		volunteerRepo: repos.Volunteers,
		notifications: notifications,
		now:           time.Now,
	}
}

// List returns events soonest first with their participant counts
func (s *EventService) List(ctx context.Context, upcomingOnly bool, search string, p *pagination.Params) ([]*models.Event, int64, error) {
	events, total, err := s.repo.List(ctx, upcomingOnly, search, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	if err := s.withCounts(ctx, events...); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Get returns one event with its participant count
func (s *EventService) Get(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrEventNotFound)
	}
	if err := s.withCounts(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) withCounts(ctx context.Context, events ...*models.Event) error {
	ids := make([]uint, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	counts, err := s.repo.CountRegistrations(ctx, ids...)
	if err != nil {
		return err
	}
	for _, e := range events {
		e.Participants = counts[e.ID]
	}
	return nil
}

// Create schedules an event
func (s *EventService) Create(ctx context.Context, actor Actor, input *EventInput) (*models.Event, error) {
	if !input.EndsAt.After(input.StartsAt) {
		return nil, domain.ErrInvalidSchedule
	}

	event := &models.Event{
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		Location:        strings.TrimSpace(input.Location),
		StartsAt:        input.StartsAt,
		EndsAt:          input.EndsAt,
		Capacity:        input.Capacity,
		NeedsVolunteers: input.NeedsVolunteers,
		OrganizerID:     actor.UserID,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	logger.Infof("📅 Event %d created by user %d: %s", event.ID, actor.UserID, event.Title)
	return event, nil
}

// Update replaces an event's details
func (s *EventService) Update(ctx context.Context, actor Actor, id uint, input *EventInput) (*models.Event, error) {
	if !input.EndsAt.After(input.StartsAt) {
		return nil, domain.ErrInvalidSchedule
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrEventNotFound)
	}

	event.Title = strings.TrimSpace(input.Title)
	event.Description = strings.TrimSpace(input.Description)
	event.Location = strings.TrimSpace(input.Location)
	event.StartsAt = input.StartsAt
	event.EndsAt = input.EndsAt
	event.Capacity = input.Capacity
	event.NeedsVolunteers = input.NeedsVolunteers

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	if err := s.withCounts(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete cancels an event and notifies its participants
func (s *EventService) Delete(ctx context.Context, actor Actor, id uint) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, domain.ErrEventNotFound)
	}
	regs, err := s.repo.Participants(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	ids := make([]uint, len(regs))
	for i, r := range regs {
		ids[i] = r.UserID
	}
	s.notifications.NotifyMany(ctx, ids, domain.NotifyEventReminder, "Event cancelled",
		fmt.Sprintf("%q on %s has been cancelled", event.Title, event.StartsAt.Format("Jan 2, 3:04 PM")), "/events")
	return nil
}

// Register signs the actor up. Volunteers must have an approved profile.
func (s *EventService) Register(ctx context.Context, actor Actor, id uint, input *EventRegisterInput) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !event.EndsAt.After(s.now()) {
		return domain.ErrEventEnded
	}
	if event.Capacity > 0 && event.Participants >= int64(event.Capacity) {
		return domain.ErrEventFull
	}

	if input.AsVolunteer {
		profile, err := s.volunteerRepo.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return notFound(err, domain.ErrNotAVolunteer)
		}
		if profile.Status != domain.VolunteerApproved {
			return domain.ErrNotAVolunteer
		}
	}

	registered, err := s.repo.IsRegistered(ctx, id, actor.UserID)
	if err != nil {
		return err
	}
	if registered {
		return domain.ErrAlreadyRegistered
	}

	err = s.repo.Register(ctx, &models.EventRegistration{EventID: id, UserID: actor.UserID, AsVolunteer: input.AsVolunteer})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyRegistered
	}
	return err
}

// Unregister removes the actor's registration
func (s *EventService) Unregister(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return notFound(err, domain.ErrEventNotFound)
	}
	removed, err := s.repo.Unregister(ctx, id, actor.UserID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotRegistered
	}
	return nil
}

// Participants lists who registered for an event
func (s *EventService) Participants(ctx context.Context, id uint) ([]*models.ParticipantResponse, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, notFound(err, domain.ErrEventNotFound)
	}
	regs, err := s.repo.Participants(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]*models.ParticipantResponse, 0, len(regs))
	for _, r := range regs {
		p := &models.ParticipantResponse{UserID: r.UserID, AsVolunteer: r.AsVolunteer, RegisteredAt: r.CreatedAt}
		if r.User != nil {
			p.Name = r.User.FullName()
		}
		out = append(out, p)
	}
	return out, nil
}

// SendReminders notifies participants of events starting within window, once
// per registration. It returns how many reminders were sent.
func (s *EventService) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()
	regs, err := s.repo.DueReminders(ctx, now, now.Add(window))
	if err != nil {
		return 0, err
	}

	ids := make([]uint, 0, len(regs))
	for _, r := range regs {
		if r.Event == nil {
			continue
		}
		s.notifications.Notify(ctx, r.UserID, domain.NotifyEventReminder, "Event starting soon",
			fmt.Sprintf("%q starts at %s at %s", r.Event.Title, r.Event.StartsAt.Format("3:04 PM"), r.Event.Location),
			fmt.Sprintf("/events/%d", r.EventID))
		ids = append(ids, r.ID)
	}
	if err := s.repo.MarkReminded(ctx, ids, now); err != nil {
		return 0, err
	}
	return len(ids), nil
}
