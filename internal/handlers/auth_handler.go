package handlers

import (
	"time"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/dto"
	"github.com/fraudshield/backend/internal/middleware"
	"github.com/fraudshield/backend/internal/models"
	"github.com/fraudshield/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	authService *services.AuthService
	google      services.GoogleAuthenticator
}

func NewAuthHandler(authService *services.AuthService, google services.GoogleAuthenticator) *AuthHandler {
	return &AuthHandler{authService: authService, google: google}
}

// Google signs a user in with a Google credential: an authorization code, an
// ID token, or an access token.
func (h *AuthHandler) Google(c *fiber.Ctx) error {
	var req dto.GoogleAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	profile, err := h.google.Authenticate(c.Context(), &req)
	if err != nil {
		return fail(c, err)
	}

	resp, err := h.authService.GoogleAuth(profile)
	if err != nil {
		return fail(c, err)
	}

	h.setRefreshCookie(c, resp.RefreshToken, resp.ExpiresAt)
	return ok(c, fiber.StatusOK, resp)
}

func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.AdminLogin(req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}

	h.setRefreshCookie(c, resp.RefreshToken, resp.ExpiresAt)
	return ok(c, fiber.StatusOK, resp)
}

// Refresh accepts the refresh token from the body or, for browser clients,
// the http-only cookie.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	_ = c.BodyParser(&req)
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies(refreshCookieName)
	}

	resp, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		h.clearRefreshCookie(c)
		return fail(c, err)
	}

	h.setRefreshCookie(c, resp.RefreshToken, resp.ExpiresAt)
	return ok(c, fiber.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	_ = c.BodyParser(&req)
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies(refreshCookieName)
	}

	if err := h.authService.Logout(req.RefreshToken); err != nil {
		return fail(c, err)
	}

	h.clearRefreshCookie(c)
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Logged out"})
}

// Me returns the authenticated user, proving the session is still live.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return ok(c, fiber.StatusOK, dto.UserResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
	})
}

// AdminMe returns the authenticated admin.
func (h *AuthHandler) AdminMe(c *fiber.Ctx) error {
	admin := middleware.CurrentAdmin(c)
	return ok(c, fiber.StatusOK, dto.AdminResponse{
		ID:       admin.ID,
		Username: admin.Username,
		Role:     string(admin.Role),
	})
}

// CreateAdmin enrolls a new admin. Routed behind SuperAdminRequired.
func (h *AuthHandler) CreateAdmin(c *fiber.Ctx) error {
	var req dto.CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if len(req.Username) < 3 || len(req.Password) < 8 {
		return fail(c, apperr.Validation("username must be at least 3 and password at least 8 characters"))
	}

	admin, err := h.authService.CreateAdmin(req.Username, req.Password, models.AdminRole(req.Role))
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusCreated, dto.AdminResponse{
		ID:       admin.ID,
		Username: admin.Username,
		Role:     string(admin.Role),
	})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/api/auth",
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/api/auth",
	})
}
