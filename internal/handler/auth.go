package handler

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agendahq/agenda/internal/domain"
	"github.com/agendahq/agenda/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Login verifies email and password credentials and returns the user with
// a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, tokens, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]any{
		"user":   user,
		"tokens": tokens,
	})
}

// Register creates a new user account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, user)
}

// GoogleRedirect redirects the user to Google's OAuth consent page.
func (h *AuthHandler) GoogleRedirect(c echo.Context) error {
	state := generateState()
	c.SetCookie(&http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	return c.Redirect(http.StatusTemporaryRedirect, h.auth.GoogleAuthURL(state))
}

// GoogleCallback handles the OAuth callback from Google.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if err := validateOAuthState(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	code := c.QueryParam("code")
	if code == "" {
		return fmt.Errorf("%w: missing code parameter", domain.ErrInvalidInput)
	}

	user, tokens, err := h.auth.GoogleCallback(c.Request().Context(), code)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]any{
		"user":   user,
		"tokens": tokens,
	})
}

// Refresh generates a new token pair from a refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tokens, err := h.auth.RefreshAccessToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, tokens)
}

// Me returns the currently authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	user, err := h.auth.GetUser(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, user)
}

func generateState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "fallback-state"
	}
	return base64.URLEncoding.EncodeToString(b)
}

func validateOAuthState(c echo.Context) error {
	cookie, err := c.Cookie("oauth_state")
	if err != nil {
		return fmt.Errorf("missing oauth_state cookie")
	}

	queryState := c.QueryParam("state")
	if queryState == "" || queryState != cookie.Value {
		return fmt.Errorf("state mismatch")
	}
	return nil
}
