package services

import (
	"context"

	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/domain"

	"golang.org/x/sync/errgroup"
)

// DashboardService aggregates figures for the admin dashboard
type DashboardService struct {
	repos *repositories.Repositories
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repos *repositories.Repositories) *DashboardService {
	return &DashboardService{repos: repos}
}

// AdminStats represents admin dashboard data
type AdminStats struct {
	Users            int64            `json:"users"`
	UsersByRole      map[string]int64 `json:"usersByRole"`
	Requests         int64            `json:"requests"`
	OpenRequests     int64            `json:"openRequests"`
	RequestsByStatus map[string]int64 `json:"requestsByStatus"`
	Events           int64            `json:"events"`
	DonationsTotal   float64          `json:"donationsTotal"`
	ActiveAlerts     int64            `json:"activeAlerts"`
}

// Stats gathers every figure concurrently
func (s *DashboardService) Stats(ctx context.Context) (*AdminStats, error) {
	var (
		byRole    map[string]int64
		byStatus  map[string]int64
		events    int64
		donations *repositories.DonationStats
		alerts    int64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { byRole, err = s.repos.Users.CountByRole(ctx); return })
	g.Go(func() (err error) { byStatus, err = s.repos.Requests.CountByStatus(ctx); return })
	g.Go(func() (err error) { events, err = s.repos.Events.Count(ctx); return })
	g.Go(func() (err error) { donations, err = s.repos.Donations.Stats(ctx); return })
	g.Go(func() (err error) { alerts, err = s.repos.Emergency.CountActive(ctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &AdminStats{
		UsersByRole:      byRole,
		RequestsByStatus: byStatus,
		Events:           events,
		DonationsTotal:   donations.TotalAmount,
		ActiveAlerts:     alerts,
	}
	for _, n := range byRole {
		stats.Users += n
	}
	for status, n := range byStatus {
		stats.Requests += n
		if status == domain.RequestPending || status == domain.RequestInProgress {
			stats.OpenRequests += n
		}
	}
	return stats, nil
}
