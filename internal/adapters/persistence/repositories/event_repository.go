package repositories

import (
	"context"
	"strings"
	"time"

	"barangaylink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// Delete soft deletes the event and drops its registrations
func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventRegistration{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, id).Error
	})
}

// List returns events soonest first
func (r *eventRepository) List(ctx context.Context, upcomingOnly bool, search string, offset, limit int) ([]*models.Event, int64, error) {
	var events []*models.Event
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Event{})
	if upcomingOnly {
		query = query.Where("ends_at >= ?", time.Now())
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(location) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("starts_at ASC").Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&count).Error
	return count, err
}

func (r *eventRepository) Register(ctx context.Context, reg *models.EventRegistration) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

// Unregister reports whether a registration was removed
func (r *eventRepository) Unregister(ctx context.Context, eventID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventRegistration{})
	return res.RowsAffected > 0, res.Error
}

func (r *eventRepository) IsRegistered(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

// CountRegistrations maps event ID to number of registrations
func (r *eventRepository) CountRegistrations(ctx context.Context, eventIDs ...uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		EventID uint
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Select("event_id, COUNT(*) AS count").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.EventID] = row.Count
	}
	return out, nil
}

func (r *eventRepository) Participants(ctx context.Context, eventID uint) ([]*models.EventRegistration, error) {
	var regs []*models.EventRegistration
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&regs).Error
	return regs, err
}

// DueReminders returns unreminded registrations for events starting in [from, to]
func (r *eventRepository) DueReminders(ctx context.Context, from, to time.Time) ([]*models.EventRegistration, error) {
	var regs []*models.EventRegistration
	err := r.db.WithContext(ctx).
		Joins("JOIN events ON events.id = event_registrations.event_id").
		Where("events.deleted_at IS NULL").
		Where("events.starts_at BETWEEN ? AND ?", from, to).
		Where("event_registrations.reminder_sent_at IS NULL").
		Preload("Event").
		Find(&regs).Error
	return regs, err
}

func (r *eventRepository) MarkReminded(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Where("id IN ?", ids).
		Update("reminder_sent_at", at).Error
}
