package repositories

import (
	"context"

	"barangaylink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type volunteerRepository struct {
	db *gorm.DB
}

// NewVolunteerRepository creates a new volunteer profile repository
func NewVolunteerRepository(db *gorm.DB) VolunteerRepository {
	return &volunteerRepository{db: db}
}

func (r *volunteerRepository) Create(ctx context.Context, p *models.VolunteerProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *volunteerRepository) GetByUserID(ctx context.Context, userID uint) (*models.VolunteerProfile, error) {
	var p models.VolunteerProfile
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	withName(&p)
	return &p, nil
}

func (r *volunteerRepository) Update(ctx context.Context, p *models.VolunteerProfile) error {
	return r.db.WithContext(ctx).Omit("User").Save(p).Error
}

func (r *volunteerRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.VolunteerProfile, int64, error) {
	var out []*models.VolunteerProfile
	var total int64

	query := r.db.WithContext(ctx).Model(&models.VolunteerProfile{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("User").Order("created_at DESC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	for _, p := range out {
		withName(p)
	}
	return out, total, nil
}

func withName(p *models.VolunteerProfile) {
	if p.User != nil {
		p.Name = p.User.FullName()
	}
}
