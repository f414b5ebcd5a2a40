package config

import (
	"testing"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/pkg/password"
	"barangaylink/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeederCreatesAdminOnce(t *testing.T) {
	db := testutil.NewDB(t)
	seeder := NewSeeder(db, AdminSeedConfig{Email: " Admin@Barangay.ph ", Password: "changeme123"})

	require.NoError(t, seeder.Run())
	require.NoError(t, seeder.Run())

	var admins []models.User
	require.NoError(t, db.Where("role = ?", "ADMIN").Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@barangay.ph", admins[0].Email)
	assert.True(t, password.Verify("changeme123", admins[0].Password))
}

func TestSeederSkipsAdminWithoutCredentials(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, NewSeeder(db, AdminSeedConfig{}).Run())

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSeederKeepsExistingContacts(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, db.Create(&models.EmergencyContact{Name: "Barangay Hall", Phone: "0917"}).Error)

	require.NoError(t, NewSeeder(db, AdminSeedConfig{}).Run())

	var contacts []models.EmergencyContact
	require.NoError(t, db.Find(&contacts).Error)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Barangay Hall", contacts[0].Name)
}

func TestSeederAddsDefaultContacts(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, NewSeeder(db, AdminSeedConfig{}).Run())

	var count int64
	require.NoError(t, db.Model(&models.EmergencyContact{}).Count(&count).Error)
	assert.EqualValues(t, len(DefaultEmergencyContacts), count)
}
