package services

import (
	"context"
	"errors"
	"strings"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/pagination"

	"gorm.io/gorm"
)

// VolunteerInput applies for or updates a volunteer profile
type VolunteerInput struct {
	Skills       []string `json:"skills" validate:"required,min=1,max=20,dive,required,max=50"`
	Availability string   `json:"availability" validate:"required,max=255"`
}

// VolunteerService handles volunteer profiles
type VolunteerService struct {
	repo          repositories.VolunteerRepository
	userRepo      repositories.UserRepository
	requests      *RequestService
	notifications *NotificationService
}

// NewVolunteerService creates a new volunteer service
func NewVolunteerService(repos *repositories.Repositories, requests *RequestService, notifications *NotificationService) *VolunteerService {
	return &VolunteerService{
		repo:          repos.Volunteers,
		userRepo:      repos.Users,
		requests:      requests,
		notifications: notifications,
	}
}

func cleanSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// Apply creates the actor's volunteer profile. Members who apply are approved
// and promoted to the volunteer role; staff keep their role.
func (s *VolunteerService) Apply(ctx context.Context, actor Actor, input *VolunteerInput) (*models.VolunteerProfile, error) {
	if _, err := s.repo.GetByUserID(ctx, actor.UserID); err == nil {
		return nil, domain.ErrAlreadyVolunteer
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}

	profile := &models.VolunteerProfile{
		UserID:       actor.UserID,
		Skills:       cleanSkills(input.Skills),
		Availability: strings.TrimSpace(input.Availability),
		Status:       domain.VolunteerApproved,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrAlreadyVolunteer
		}
		return nil, err
	}

	if user.Role == string(domain.RoleMember) {
		user.Role = string(domain.RoleVolunteer)
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	profile.Name = user.FullName()

	logger.Infof("🙋 User %d registered as volunteer", actor.UserID)
	s.notifications.NotifyRoles(ctx, []domain.Role{domain.RoleAdmin, domain.RoleModerator},
		domain.NotifyAssignment, "New volunteer", user.FullName()+" signed up as a volunteer", "/volunteers")
	return profile, nil
}

// Me returns the actor's volunteer profile
func (s *VolunteerService) Me(ctx context.Context, actor Actor) (*models.VolunteerProfile, error) {
	profile, err := s.repo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, domain.ErrVolunteerNotFound)
	}
	return profile, nil
}

// UpdateMe replaces the actor's skills and availability
func (s *VolunteerService) UpdateMe(ctx context.Context, actor Actor, input *VolunteerInput) (*models.VolunteerProfile, error) {
	profile, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	profile.Skills = cleanSkills(input.Skills)
	profile.Availability = strings.TrimSpace(input.Availability)
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// List returns volunteer profiles for staff
func (s *VolunteerService) List(ctx context.Context, status string, p *pagination.Params) ([]*models.VolunteerProfile, int64, error) {
	return s.repo.List(ctx, status, p.Offset, p.Limit)
}

// Assignments returns the open requests assigned to the actor
func (s *VolunteerService) Assignments(ctx context.Context, actor Actor) ([]*models.ServiceRequest, error) {
	reqs, _, err := s.requests.Assigned(ctx, actor, pagination.New(1, pagination.MaxLimit))
	return reqs, err
}
