package services

import (
	"context"
	"strings"
	"testing"

	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDonations(t *testing.T) {
	e := newEnv(t)
	svc := NewDonationService(e.repos, e.notifications)
	ctx := context.Background()
	u, donor := e.user(t, "juan@example.com", domain.RoleMember)
	_, other := e.user(t, "pedro@example.com", domain.RoleMember)
	_, mod := e.user(t, "mod@example.com", domain.RoleModerator)

	_, err := svc.Create(ctx, donor, &DonationInput{Type: domain.DonationMonetary})
	assert.ErrorIs(t, err, domain.ErrInvalidDonation)
	_, err = svc.Create(ctx, donor, &DonationInput{Type: domain.DonationInKind})
	assert.ErrorIs(t, err, domain.ErrInvalidDonation)

	cash, err := svc.Create(ctx, donor, &DonationInput{Type: domain.DonationMonetary, Amount: 500, Campaign: "typhoon relief"})
	require.NoError(t, err)
	assert.Equal(t, domain.DonationReceived, cash.Status)
	assert.Equal(t, "Juan Dela Cruz", cash.DonorName)
	assert.True(t, strings.HasPrefix(cash.Reference, "DON-"))

	goods, err := svc.Create(ctx, donor, &DonationInput{Type: domain.DonationInKind, Items: "10 sacks of rice", Anonymous: true})
	require.NoError(t, err)
	assert.Equal(t, domain.DonationPending, goods.Status)
	assert.Equal(t, "Anonymous", goods.DonorName)
	assert.NotEqual(t, cash.Reference, goods.Reference)

	_, err = svc.Get(ctx, other, cash.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Get(ctx, mod, cash.ID)
	assert.NoError(t, err)

	mine, total, err := svc.Mine(ctx, donor, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500.0, stats.TotalAmount)
	assert.Equal(t, int64(2), stats.Count)

	assert.Len(t, e.unread(t, u.ID), 2)
}

func TestVolunteerApply(t *testing.T) {
	e := newEnv(t)
	svc := NewVolunteerService(e.repos, e.requests(nil), e.notifications)
	ctx := context.Background()
	u, actor := e.user(t, "juan@example.com", domain.RoleMember)
	mod, _ := e.user(t, "mod@example.com", domain.RoleModerator)

	_, err := svc.Me(ctx, actor)
	assert.ErrorIs(t, err, domain.ErrVolunteerNotFound)

	profile, err := svc.Apply(ctx, actor, &VolunteerInput{Skills: []string{" First Aid ", "first aid", "Cooking"}, Availability: "weekends"})
	require.NoError(t, err)
	assert.Equal(t, []string{"First Aid", "Cooking"}, profile.Skills)
	assert.Equal(t, domain.VolunteerApproved, profile.Status)

	_, err = svc.Apply(ctx, actor, &VolunteerInput{Skills: []string{"x"}, Availability: "y"})
	assert.ErrorIs(t, err, domain.ErrAlreadyVolunteer)

	user, err := e.repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleVolunteer), user.Role)

	updated, err := svc.UpdateMe(ctx, actor, &VolunteerInput{Skills: []string{"Driving"}, Availability: "evenings"})
	require.NoError(t, err)
	assert.Equal(t, "evenings", updated.Availability)

	list, total, err := svc.List(ctx, domain.VolunteerApproved, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []string{"Driving"}, list[0].Skills)

	assert.Len(t, e.unread(t, mod.ID), 1)
}

func TestAnnouncements(t *testing.T) {
	e := newEnv(t)
	svc := NewAnnouncementService(e.repos.Announcements, e.notifications)
	ctx := context.Background()
	_, mod := e.user(t, "mod@example.com", domain.RoleModerator)
	u, _ := e.user(t, "juan@example.com", domain.RoleMember)

	_, err := svc.Create(ctx, mod, &AnnouncementInput{Title: "Clinic hours", Body: "Open 8-5"})
	require.NoError(t, err)
	pinned, err := svc.Create(ctx, mod, &AnnouncementInput{Title: "Curfew", Body: "10 PM", Pinned: true})
	require.NoError(t, err)

	list, total, err := svc.List(ctx, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Curfew", list[0].Title)

	// only pinned announcements become stored notifications
	notes := e.unread(t, u.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "Curfew", notes[0].Title)

	var broadcasts int
	for _, m := range e.pub.msgs {
		if m.UserID == 0 && m.Type == PushAnnouncement {
			broadcasts++
		}
	}
	assert.Equal(t, 2, broadcasts)

	require.NoError(t, svc.Delete(ctx, pinned.ID))
	assert.ErrorIs(t, svc.Delete(ctx, pinned.ID), domain.ErrAnnouncementNotFound)
}

func TestEmergencyAlerts(t *testing.T) {
	e := newEnv(t)
	svc := NewEmergencyService(e.repos.Emergency, e.notifications)
	ctx := context.Background()
	admin, adminActor := e.user(t, "admin@example.com", domain.RoleAdmin)
	_, member := e.user(t, "juan@example.com", domain.RoleMember)

	low, err := svc.Raise(ctx, member, &AlertInput{Type: "flood", Severity: "LOW", Message: "ankle deep", Location: "Purok 1"})
	require.NoError(t, err)
	assert.Equal(t, "FLOOD", low.Type)
	_, err = svc.Raise(ctx, member, &AlertInput{Type: "FIRE", Severity: "CRITICAL", Message: "house fire", Location: "Purok 3"})
	require.NoError(t, err)

	active, err := svc.ActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "CRITICAL", active[0].Severity)

	resolved, err := svc.Resolve(ctx, adminActor, low.ID)
	require.NoError(t, err)
	assert.False(t, resolved.Active)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, admin.ID, *resolved.ResolvedBy)

	_, err = svc.Resolve(ctx, adminActor, low.ID)
	assert.ErrorIs(t, err, domain.ErrAlertResolved)
	_, err = svc.Resolve(ctx, adminActor, 9999)
	assert.ErrorIs(t, err, domain.ErrAlertNotFound)

	types := e.pub.types()
	assert.Contains(t, types, PushEmergencyAlert)
	assert.Contains(t, types, PushAlertResolved)
	assert.Len(t, e.unread(t, admin.ID), 2)
}

func TestNotificationsReadState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, _ := e.user(t, "juan@example.com", domain.RoleMember)
	other, _ := e.user(t, "pedro@example.com", domain.RoleMember)

	e.notifications.Notify(ctx, u.ID, domain.NotifyDonation, "a", "a", "")
	e.notifications.Notify(ctx, u.ID, domain.NotifyDonation, "b", "b", "")
	e.notifications.Notify(ctx, 0, domain.NotifyDonation, "ignored", "ignored", "")

	count, err := e.notifications.UnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	first := e.unread(t, u.ID)[0]
	assert.ErrorIs(t, e.notifications.MarkRead(ctx, other.ID, first.ID), domain.ErrNotificationNotFound)
	require.NoError(t, e.notifications.MarkRead(ctx, u.ID, first.ID))

	unread, total, err := e.notifications.List(ctx, u.ID, true, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "b", unread[0].Title)

	n, err := e.notifications.MarkAllRead(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserManagementProtectsLastAdmin(t *testing.T) {
	e := newEnv(t)
	svc := NewUserService(e.repos.Users, e.repos.RefreshTokens)
	ctx := context.Background()
	admin, _ := e.user(t, "admin@example.com", domain.RoleAdmin)
	u, _ := e.user(t, "juan@example.com", domain.RoleMember)

	_, err := svc.SetRole(ctx, admin.ID, admin.ID, domain.RoleMember)
	assert.ErrorIs(t, err, ErrCannotChangeOwnRole)
	_, err = svc.SetRole(ctx, u.ID, admin.ID, domain.Role("CHIEF"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	// a second admin acting on a stale token cannot remove the only active one
	_, err = svc.SetRole(ctx, admin.ID, 9999, domain.RoleMember)
	assert.ErrorIs(t, err, domain.ErrLastAdmin)
	_, err = svc.SetActive(ctx, admin.ID, 9999, false)
	assert.ErrorIs(t, err, domain.ErrLastAdmin)
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, 9999), domain.ErrLastAdmin)

	got, err := svc.SetRole(ctx, u.ID, admin.ID, domain.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, "MODERATOR", got.Role)

	got, err = svc.SetActive(ctx, u.ID, admin.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	users, total, err := svc.ListUsers(ctx, repositories.UserFilter{Role: "MODERATOR"}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, u.ID, users[0].ID)

	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)
	require.NoError(t, svc.DeleteUser(ctx, u.ID, admin.ID))
	_, err = e.repos.Users.GetByID(ctx, u.ID)
	assert.Error(t, err)
}

func TestDashboardStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, member := e.user(t, "juan@example.com", domain.RoleMember)
	e.user(t, "admin@example.com", domain.RoleAdmin)

	_, err := e.requests(nil).Create(ctx, member, &CreateRequestInput{Title: "x", Description: "y", Category: "OTHER"})
	require.NoError(t, err)
	_, err = NewDonationService(e.repos, e.notifications).Create(ctx, member, &DonationInput{Type: domain.DonationMonetary, Amount: 250})
	require.NoError(t, err)

	stats, err := NewDashboardService(e.repos).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(1), stats.UsersByRole["ADMIN"])
	assert.Equal(t, int64(1), stats.Requests)
	assert.Equal(t, int64(1), stats.OpenRequests)
	assert.Equal(t, 250.0, stats.DonationsTotal)
	assert.Equal(t, int64(0), stats.ActiveAlerts)
}
