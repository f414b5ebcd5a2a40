package repositories

import (
	"context"

	"barangaylink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) Create(ctx context.Context, d *models.Donation) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *donationRepository) GetByID(ctx context.Context, id uint) (*models.Donation, error) {
	var d models.Donation
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *donationRepository) List(ctx context.Context, filter DonationFilter, offset, limit int) ([]*models.Donation, int64, error) {
	var out []*models.Donation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Donation{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Campaign != "" {
		query = query.Where("campaign = ?", filter.Campaign)
	}
	if filter.DonorID != 0 {
		query = query.Where("donor_id = ?", filter.DonorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *donationRepository) Stats(ctx context.Context) (*DonationStats, error) {
	var rows []struct {
		Type  string
		Count int64
		Total float64
	}
	err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Select("type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &DonationStats{ByType: make(map[string]int64, len(rows))}
	for _, row := range rows {
		stats.ByType[row.Type] = row.Count
		stats.Count += row.Count
		stats.TotalAmount += row.Total
	}
	return stats, nil
}
