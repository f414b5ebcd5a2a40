package repositories_test

import (
	"context"
	"testing"
	"time"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestListOrdersByPriorityThenNewest(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "juan@example.com", "MEMBER")

	for _, p := range []string{"LOW", "URGENT", "MEDIUM", "HIGH"} {
		require.NoError(t, repos.Requests.Create(ctx, &models.ServiceRequest{
			Title: p, Category: "OTHER", Priority: p, Status: "PENDING", RequesterID: u.ID,
		}))
	}

	got, total, err := repos.Requests.List(ctx, repositories.RequestFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	var order []string
	for _, r := range got {
		order = append(order, r.Priority)
	}
	assert.Equal(t, []string{"URGENT", "HIGH", "MEDIUM", "LOW"}, order)

	got, total, err = repos.Requests.List(ctx, repositories.RequestFilter{Priority: "HIGH"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "HIGH", got[0].Title)
}

func TestRequestAttachmentsRoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "juan@example.com", "MEMBER")

	req := &models.ServiceRequest{Title: "x", Category: "OTHER", Priority: "LOW", Status: "PENDING", RequesterID: u.ID}
	require.NoError(t, repos.Requests.Create(ctx, req))
	req.Attachments = append(req.Attachments, "/uploads/a.jpg", "/uploads/b.jpg")
	require.NoError(t, repos.Requests.Update(ctx, req))

	got, err := repos.Requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.jpg", "/uploads/b.jpg"}, got.Attachments)
}

func TestEventRegistrationsAndReminders(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "juan@example.com", "MEMBER")
	now := time.Now()

	soon := &models.Event{Title: "Clean-up drive", StartsAt: now.Add(30 * time.Minute), EndsAt: now.Add(3 * time.Hour), OrganizerID: u.ID}
	later := &models.Event{Title: "Feeding program", StartsAt: now.Add(48 * time.Hour), EndsAt: now.Add(50 * time.Hour), OrganizerID: u.ID}
	require.NoError(t, repos.Events.Create(ctx, soon))
	require.NoError(t, repos.Events.Create(ctx, later))

	require.NoError(t, repos.Events.Register(ctx, &models.EventRegistration{EventID: soon.ID, UserID: u.ID}))
	require.NoError(t, repos.Events.Register(ctx, &models.EventRegistration{EventID: later.ID, UserID: u.ID, AsVolunteer: true}))
	assert.Error(t, repos.Events.Register(ctx, &models.EventRegistration{EventID: soon.ID, UserID: u.ID}), "duplicate registration")

	counts, err := repos.Events.CountRegistrations(ctx, soon.ID, later.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{soon.ID: 1, later.ID: 1}, counts)

	due, err := repos.Events.DueReminders(ctx, now, now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID, due[0].EventID)
	require.NotNil(t, due[0].Event)
	assert.Equal(t, "Clean-up drive", due[0].Event.Title)

	require.NoError(t, repos.Events.MarkReminded(ctx, []uint{due[0].ID}, now))
	due, err = repos.Events.DueReminders(ctx, now, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)

	removed, err := repos.Events.Unregister(ctx, later.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repos.Events.Unregister(ctx, later.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDonationStats(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	ctx := context.Background()

	require.NoError(t, repos.Donations.Create(ctx, &models.Donation{Type: "MONETARY", Amount: 500, Status: "RECEIVED", Reference: "D-1"}))
	require.NoError(t, repos.Donations.Create(ctx, &models.Donation{Type: "MONETARY", Amount: 250.5, Status: "RECEIVED", Reference: "D-2"}))
	require.NoError(t, repos.Donations.Create(ctx, &models.Donation{Type: "IN_KIND", Items: "rice", Status: "PENDING", Reference: "D-3"}))

	stats, err := repos.Donations.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Count)
	assert.InDelta(t, 750.5, stats.TotalAmount, 0.001)
	assert.Equal(t, map[string]int64{"MONETARY": 2, "IN_KIND": 1}, stats.ByType)
}

func TestNotificationsReadState(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "a@example.com", "MEMBER")
	b := testutil.CreateUser(t, db, "b@example.com", "MEMBER")

	require.NoError(t, repos.Notifications.CreateBatch(ctx, []*models.Notification{
		{UserID: a.ID, Type: "ANNOUNCEMENT", Title: "one"},
		{UserID: a.ID, Type: "ANNOUNCEMENT", Title: "two"},
		{UserID: b.ID, Type: "ANNOUNCEMENT", Title: "three"},
	}))

	n, err := repos.Notifications.CountUnread(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, _, err := repos.Notifications.List(ctx, b.ID, false, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	ok, err := repos.Notifications.MarkRead(ctx, a.ID, list[0].ID)
	require.NoError(t, err)
	assert.False(t, ok, "cannot mark another user's notification")

	changed, err := repos.Notifications.MarkAllRead(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)
	n, err = repos.Notifications.CountUnread(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRefreshTokenPurge(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "juan@example.com", "MEMBER")

	require.NoError(t, repos.RefreshTokens.Create(ctx, &models.RefreshToken{UserID: u.ID, TokenHash: "old", ExpiresAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, repos.RefreshTokens.Create(ctx, &models.RefreshToken{UserID: u.ID, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)}))

	deleted, err := repos.RefreshTokens.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	active, err := repos.RefreshTokens.CountActiveByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)
}

func TestRefreshTokenRevokeOnlyOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "juan@example.com", "MEMBER")

	token := &models.RefreshToken{UserID: u.ID, TokenHash: "rotating", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repos.RefreshTokens.Create(ctx, token))

	revoked, err := repos.RefreshTokens.Revoke(ctx, token.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repos.RefreshTokens.Revoke(ctx, token.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	stored, err := repos.RefreshTokens.GetByTokenHash(ctx, "rotating")
	require.NoError(t, err)
	assert.True(t, stored.IsRevoked())
}
