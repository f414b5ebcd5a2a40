package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/config"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/jwt"
	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	resetRepo        repositories.PasswordResetRepository
	cfg              *config.Config
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	resetRepo repositories.PasswordResetRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		resetRepo:        resetRepo,
		cfg:              cfg,
		now:              time.Now,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Address   string `json:"address" validate:"omitempty,max=255"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput updates the caller's own profile; empty fields are kept
type ProfileInput struct {
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Address   string `json:"address" validate:"omitempty,max=255"`
}

// ChangePasswordInput represents a password change
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// ResetPasswordInput completes a forgot-password flow
type ResetPasswordInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	Token        string               `json:"token"`
	RefreshToken string               `json:"refreshToken"`
}

// Register registers a new member
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	email := normalizeEmail(input.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Phone:     strings.TrimSpace(input.Phone),
		Address:   strings.TrimSpace(input.Address),
		Role:      string(domain.RoleMember),
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Infof("✅ User registered: %s", user.Email)
	return s.issue(ctx, user)
}

// Login authenticates a user
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Infof("✅ User logged in: %s", user.Email)
	return s.issue(ctx, user)
}

// RefreshToken rotates a refresh token. A revoked token being presented again
// means it leaked, so every session of that user is revoked.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	if storedToken.IsRevoked() {
		return nil, s.tokenReused(ctx, storedToken.UserID)
	}
	if storedToken.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	// A concurrent refresh with the same token may have rotated it since it
	// was read; only the caller whose update lands gets a new pair.
	revoked, err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID)
	if err != nil {
		return nil, err
	}
	if !revoked {
		return nil, s.tokenReused(ctx, storedToken.UserID)
	}

	logger.Debugf("🔄 Token refreshed for user: %s", user.Email)
	return s.issue(ctx, user)
}

func (s *AuthService) tokenReused(ctx context.Context, userID uint) error {
	logger.Warnf("🚨 Revoked refresh token reused for user ID %d, revoking all sessions", userID)
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}
	return domain.ErrTokenInvalid
}

// Logout revokes the refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken))
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	logger.Infof("✅ All sessions revoked for user ID: %d", userID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return user, nil
}

// UpdateProfile changes the caller's own contact details
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, input *ProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(input.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(input.LastName); v != "" {
		user.LastName = v
	}
	if v := strings.TrimSpace(input.Phone); v != "" {
		user.Phone = v
	}
	if v := strings.TrimSpace(input.Address); v != "" {
		user.Address = v
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password, sets the new one and signs
// out every other session
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !password.Verify(input.CurrentPassword, user.Password) {
		return domain.ErrInvalidPassword
	}
	if !password.ValidatePassword(input.NewPassword) {
		return domain.ErrWeakPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	logger.Infof("🔑 Password changed for user ID: %d", userID)
	return s.refreshTokenRepo.RevokeAllByUserID(ctx, userID)
}

// ForgotPassword creates a reset token for email. It returns "" without an
// error when the address is unknown, so callers cannot probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if !user.IsActive {
		return "", nil
	}

	token := password.NewResetToken()
	reset := &models.PasswordReset{
		UserID:    user.ID,
		TokenHash: password.HashToken(token),
		ExpiresAt: s.now().Add(time.Duration(s.cfg.JWT.ResetTokenMinutes) * time.Minute),
	}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return "", err
	}

	logger.Infof("📧 Password reset requested for user ID: %d", user.ID)
	return token, nil
}

// ResetPassword consumes a reset token
func (s *AuthService) ResetPassword(ctx context.Context, input *ResetPasswordInput) error {
	reset, err := s.resetRepo.GetValid(ctx, password.HashToken(input.Token))
	if err != nil {
		return notFound(err, domain.ErrTokenInvalid)
	}

	user, err := s.GetUserByID(ctx, reset.UserID)
	if err != nil {
		return err
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if err := s.resetRepo.MarkUsed(ctx, reset.ID); err != nil {
		return err
	}

	logger.Infof("🔑 Password reset for user ID: %d", user.ID)
	return s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID)
}

// PurgeExpired removes expired refresh tokens and spent reset tokens
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	tokens, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	resets, err := s.resetRepo.DeleteExpired(ctx)
	if err != nil {
		return tokens, err
	}
	return tokens + resets, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResponse, error) {
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}
	return &AuthResponse{
		User:         user.ToResponse(),
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Email,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	return s.refreshTokenRepo.Create(ctx, token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
