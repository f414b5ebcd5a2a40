package middleware

import (
	"errors"
	"strings"

	"barangaylink/internal/config"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/jwt"
	"barangaylink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// bearerToken reads the access token from the Authorization header, falling
// back to the access_token cookie
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Cookies("access_token")
}

func setClaims(c *fiber.Ctx, claims *jwt.Claims) {
	c.Locals("userID", claims.UserID)
	c.Locals("email", claims.Email)
	c.Locals("role", claims.Role)
}

func authenticate(c *fiber.Ctx, cfg *config.Config, accessToken string) error {
	if accessToken == "" {
		return response.Unauthorized(c, "Access token required")
	}

	claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return response.Unauthorized(c, "Access token expired")
		}
		return response.Unauthorized(c, "Invalid access token")
	}

	setClaims(c, claims)
	return c.Next()
}

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authenticate(c, cfg, bearerToken(c))
	}
}

// QueryTokenAuth authenticates with the ?token= query parameter. Browsers
// cannot set headers on a websocket handshake.
func QueryTokenAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c)
		}
		return authenticate(c, cfg, token)
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if domain.Role(role) == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// StaffOnly middleware allows MODERATOR or ADMIN roles
func StaffOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleModerator, domain.RoleAdmin)
}

// OptionalAuth sets user info when a valid token is present and never rejects
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if claims, err := jwt.ValidateAccessToken(token, cfg.JWT.Secret); err == nil {
				setClaims(c, claims)
			}
		}
		return c.Next()
	}
}
