package services

import (
	"context"
	"errors"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/pagination"
)

// User management errors
var (
	ErrCannotDeleteSelf     = errors.New("cannot delete your own account")
	ErrCannotChangeOwnRole  = errors.New("cannot change your own role")
	ErrCannotDeactivateSelf = errors.New("cannot deactivate your own account")
	ErrInvalidRole          = errors.New("invalid role")
)

// UserService handles user management for administrators
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// ListUsers lists users with pagination
func (s *UserService) ListUsers(ctx context.Context, filter repositories.UserFilter, p *pagination.Params) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*models.UserResponse, len(users))
	for i, user := range users {
		out[i] = user.ToResponse()
	}
	return out, total, nil
}

// SetRole changes a user's role. The last active admin cannot be demoted.
func (s *UserService) SetRole(ctx context.Context, id, adminID uint, role domain.Role) (*models.UserResponse, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if id == adminID {
		return nil, ErrCannotChangeOwnRole
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}

	if user.Role == string(domain.RoleAdmin) && role != domain.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx, user); err != nil {
			return nil, err
		}
	}

	user.Role = string(role)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Infof("👤 User %d role set to %s by admin %d", id, role, adminID)
	return user.ToResponse(), nil
}

// SetActive enables or disables an account. Disabling revokes its sessions.
func (s *UserService) SetActive(ctx context.Context, id, adminID uint, active bool) (*models.UserResponse, error) {
	if id == adminID && !active {
		return nil, ErrCannotDeactivateSelf
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}

	if !active && user.Role == string(domain.RoleAdmin) && user.IsActive {
		if err := s.ensureAnotherAdmin(ctx, user); err != nil {
			return nil, err
		}
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if !active {
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, id); err != nil {
			return nil, err
		}
	}

	logger.Infof("👤 User %d active=%t set by admin %d", id, active, adminID)
	return user.ToResponse(), nil
}

// DeleteUser deletes a user (soft delete) and revokes their sessions
func (s *UserService) DeleteUser(ctx context.Context, id, adminID uint) error {
	if id == adminID {
		return ErrCannotDeleteSelf
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, domain.ErrUserNotFound)
	}
	if user.Role == string(domain.RoleAdmin) && user.IsActive {
		if err := s.ensureAnotherAdmin(ctx, user); err != nil {
			return err
		}
	}

	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

func (s *UserService) ensureAnotherAdmin(ctx context.Context, user *models.User) error {
	admins, err := s.userRepo.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if admins <= 1 && user.IsActive {
		return domain.ErrLastAdmin
	}
	return nil
}
