package repositories

import (
	"context"

	"barangaylink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type emergencyRepository struct {
	db *gorm.DB
}

// NewEmergencyRepository creates a new emergency repository
func NewEmergencyRepository(db *gorm.DB) EmergencyRepository {
	return &emergencyRepository{db: db}
}

func (r *emergencyRepository) CreateAlert(ctx context.Context, a *models.EmergencyAlert) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *emergencyRepository) GetAlert(ctx context.Context, id uint) (*models.EmergencyAlert, error) {
	var a models.EmergencyAlert
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *emergencyRepository) UpdateAlert(ctx context.Context, a *models.EmergencyAlert) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// ActiveAlerts returns unresolved alerts, most severe first
func (r *emergencyRepository) ActiveAlerts(ctx context.Context) ([]*models.EmergencyAlert, error) {
	var out []*models.EmergencyAlert
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("CASE severity WHEN 'CRITICAL' THEN 0 WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END").
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *emergencyRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EmergencyAlert{}).Where("active = ?", true).Count(&count).Error
	return count, err
}

func (r *emergencyRepository) Contacts(ctx context.Context) ([]*models.EmergencyContact, error) {
	var out []*models.EmergencyContact
	err := r.db.WithContext(ctx).Order("sort_order ASC").Order("id ASC").Find(&out).Error
	return out, err
}

func (r *emergencyRepository) CreateContact(ctx context.Context, c *models.EmergencyContact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *emergencyRepository) CountContacts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EmergencyContact{}).Count(&count).Error
	return count, err
}
