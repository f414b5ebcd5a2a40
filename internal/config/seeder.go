package config

import (
	"strings"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/password"

	"gorm.io/gorm"
)

// DefaultEmergencyContacts are the national hotlines shown until staff edit them
var DefaultEmergencyContacts = []models.EmergencyContact{
	{Name: "National Emergency Hotline", Phone: "911", Agency: "DILG", SortOrder: 1},
	{Name: "Philippine National Police", Phone: "117", Agency: "PNP", SortOrder: 2},
	{Name: "Bureau of Fire Protection", Phone: "(02) 8426-0219", Agency: "BFP", SortOrder: 3},
	{Name: "Philippine Red Cross", Phone: "143", Agency: "PRC", SortOrder: 4},
	{Name: "NDRRMC Operations Center", Phone: "(02) 8911-5061", Agency: "NDRRMC", SortOrder: 5},
}

// Seeder handles database seeding
type Seeder struct {
	db    *gorm.DB
	admin AdminSeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, admin AdminSeedConfig) *Seeder {
	return &Seeder{db: db, admin: admin}
}

// Run executes all seeders. Individual failures are logged and skipped.
func (s *Seeder) Run() error {
	logger.Infof("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		logger.Warnf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedEmergencyContacts(); err != nil {
		logger.Warnf("⚠️ Emergency contact seeder skipped: %v", err)
	}

	logger.Infof("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the first administrator from ADMIN_EMAIL/ADMIN_PASSWORD
// when no administrator exists yet
func (s *Seeder) seedAdminUser() error {
	email := strings.ToLower(strings.TrimSpace(s.admin.Email))
	if email == "" || s.admin.Password == "" {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash(s.admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: "Barangay",
		LastName:  "Administrator",
		Role:      string(domain.RoleAdmin),
		IsActive:  true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	logger.Infof("✅ Admin user created: %s", admin.Email)
	return nil
}

func (s *Seeder) seedEmergencyContacts() error {
	var count int64
	if err := s.db.Model(&models.EmergencyContact{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	contacts := make([]models.EmergencyContact, len(DefaultEmergencyContacts))
	copy(contacts, DefaultEmergencyContacts)
	return s.db.Create(&contacts).Error
}
