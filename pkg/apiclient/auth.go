package apiclient

import (
	"context"
	"errors"
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// ProfileInput updates the signed-in user's profile.
type ProfileInput struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// AuthService wraps the /auth endpoints. Token-bearing calls (login,
// register, refresh, logout) are normally driven by a Session, which stores
// the result; calling them directly does not change any session.
type AuthService struct {
	c *Client
}

type userEnvelope struct {
	User *User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	var out AuthResult
	if err := s.c.Post(ctx, "/auth/register", in, &out, WithoutAuth(), WithoutRefresh()); err != nil {
		return nil, credentialsRejected(err)
	}
	return &out, nil
}

// Login exchanges credentials for tokens. Bad credentials fail with
// KindAuthInvalid carrying the server's message; no refresh is attempted.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResult
	if err := s.c.Post(ctx, "/auth/login", body, &out, WithoutAuth(), WithoutRefresh()); err != nil {
		return nil, credentialsRejected(err)
	}
	return &out, nil
}

// credentialsRejected reports a 401 from a sign-in endpoint as AuthInvalid:
// there is no session behind it that a refresh could recover.
func credentialsRejected(err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindAuthExpired {
		apiErr.Kind = KindAuthInvalid
	}
	return err
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var out AuthResult
	if err := s.c.Post(ctx, "/auth/refresh", body, &out, WithoutAuth(), WithoutRefresh()); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes refreshToken on the server.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refreshToken": refreshToken}
	return s.c.Post(ctx, "/auth/logout", body, nil, WithoutRefresh())
}

// LogoutAll revokes every refresh token of the signed-in user.
func (s *AuthService) LogoutAll(ctx context.Context) error {
	return s.c.Post(ctx, "/auth/logout-all", nil, nil)
}

func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var out userEnvelope
	if err := s.c.Get(ctx, "/auth/me", &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, &Error{Kind: KindServerError, Message: "response has no user", Method: "GET", Path: "/auth/me"}
	}
	return out.User, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, in ProfileInput) (*User, error) {
	var out userEnvelope
	if err := s.c.Put(ctx, "/auth/profile", in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return s.c.Post(ctx, "/auth/change-password", body, nil)
}

// ForgotPassword asks the server to issue a reset token for email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return s.c.Post(ctx, "/auth/forgot-password", body, nil, WithoutAuth(), WithoutRefresh())
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return s.c.Post(ctx, "/auth/reset-password", body, nil, WithoutAuth(), WithoutRefresh())
}
