package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/pagination"

	"github.com/google/uuid"
)

// DonationInput records a donation
type DonationInput struct {
	Type      string  `json:"type" validate:"required,oneof=MONETARY IN_KIND"`
	Amount    float64 `json:"amount" validate:"gte=0"`
	Items     string  `json:"items" validate:"omitempty,max=1000"`
	Campaign  string  `json:"campaign" validate:"omitempty,max=100"`
	Anonymous bool    `json:"anonymous"`
}

// DonationService handles donations
type DonationService struct {
	repo          repositories.DonationRepository
	userRepo      repositories.UserRepository
	notifications *NotificationService
}

// NewDonationService creates a new donation service
func NewDonationService(repos *repositories.Repositories, notifications *NotificationService) *DonationService {
	return &DonationService{repo: repos.Donations, userRepo: repos.Users, notifications: notifications}
}

// Create records a donation by the actor. Monetary donations are received
// immediately; in-kind donations wait for staff to collect them.
func (s *DonationService) Create(ctx context.Context, actor Actor, input *DonationInput) (*models.Donation, error) {
	d := &models.Donation{
		Type:      input.Type,
		Campaign:  strings.TrimSpace(input.Campaign),
		Anonymous: input.Anonymous,
		Reference: newReference(),
	}

	switch input.Type {
	case domain.DonationMonetary:
		if input.Amount <= 0 {
			return nil, domain.ErrInvalidDonation
		}
		d.Amount = input.Amount
		d.Status = domain.DonationReceived
	case domain.DonationInKind:
		if strings.TrimSpace(input.Items) == "" {
			return nil, domain.ErrInvalidDonation
		}
		d.Items = strings.TrimSpace(input.Items)
		d.Amount = input.Amount
		d.Status = domain.DonationPending
	default:
		return nil, domain.ErrInvalidDonation
	}

	donor, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	donorID := donor.ID
	d.DonorID = &donorID
	d.DonorName = donor.FullName()
	if d.Anonymous {
		d.DonorName = "Anonymous"
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	logger.Infof("💝 Donation %s recorded [%s %.2f]", d.Reference, d.Type, d.Amount)
	s.notifications.Notify(ctx, donor.ID, domain.NotifyDonation, "Thank you!",
		fmt.Sprintf("Your donation %s has been recorded.", d.Reference), fmt.Sprintf("/donations/%d", d.ID))
	return d, nil
}

// List returns all donations for staff
func (s *DonationService) List(ctx context.Context, filter repositories.DonationFilter, p *pagination.Params) ([]*models.Donation, int64, error) {
	return s.repo.List(ctx, filter, p.Offset, p.Limit)
}

// Mine returns the actor's own donations
func (s *DonationService) Mine(ctx context.Context, actor Actor, p *pagination.Params) ([]*models.Donation, int64, error) {
	return s.repo.List(ctx, repositories.DonationFilter{DonorID: actor.UserID}, p.Offset, p.Limit)
}

// Get returns a donation visible to staff or its donor
func (s *DonationService) Get(ctx context.Context, actor Actor, id uint) (*models.Donation, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrDonationNotFound)
	}
	if !actor.IsStaff() && (d.DonorID == nil || *d.DonorID != actor.UserID) {
		return nil, domain.ErrForbidden
	}
	return d, nil
}

// Stats aggregates all donations
func (s *DonationService) Stats(ctx context.Context) (*repositories.DonationStats, error) {
	return s.repo.Stats(ctx)
}

func newReference() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("DON-%s-%s", time.Now().Format("20060102"), id[:8])
}
