package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"

	"github.com/agendahq/agenda/internal/domain"
)

// UserStore defines the user data access interface consumed by
// AuthService.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	UpsertByEmail(ctx context.Context, user domain.User) (*domain.User, error)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
}

// AuthService handles credential verification and token issuance. The
// rest of the system never sees credentials; it consumes the Actor this
// service resolves from a token.
type AuthService struct {
	users     UserStore
	jwtSecret []byte
	google    *oauth2.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, cfg AuthConfig) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(cfg.JWTSecret),
		google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     googleOAuth.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
			RedirectURL:  cfg.OAuthRedirectURL,
		},
	}
}

// TokenPair holds an access token and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login verifies an email and password and returns the user with a token
// pair. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrUnauthorized
		}
		return nil, nil, err
	}
	if user.Password == nil {
		return nil, nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)); err != nil {
		return nil, nil, domain.ErrUnauthorized
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// GoogleAuthURL returns the Google OAuth authorization URL.
func (s *AuthService) GoogleAuthURL(state string) string {
	return s.google.AuthCodeURL(state)
}

// GoogleCallback exchanges the authorization code, upserts the account
// and returns a token pair. OAuth accounts always start with the USER
// role; an existing account keeps whatever role it already has.
func (s *AuthService) GoogleCallback(ctx context.Context, code string) (*domain.User, *TokenPair, error) {
	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("google token exchange: %w", err)
	}

	info, err := fetchGoogleUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch google user info: %w", err)
	}

	user, err := s.users.UpsertByEmail(ctx, domain.User{
		Email: info.Email,
		Name:  info.Name,
		Role:  domain.RoleUser,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("upsert google user: %w", err)
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// ValidateToken validates a JWT access token and returns the actor it
// identifies.
func (s *AuthService) ValidateToken(tokenString string) (domain.Actor, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return domain.Actor{}, err
	}

	tokenType, _ := claims["type"].(string)
	if tokenType != "access" {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	return actorFromClaims(claims)
}

// RefreshAccessToken validates a refresh token and returns a new token
// pair. The role claim is re-read from the store so a role change takes
// effect on refresh.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return nil, err
	}

	tokenType, _ := claims["type"].(string)
	if tokenType != "refresh" {
		return nil, domain.ErrUnauthorized
	}

	actor, err := actorFromClaims(claims)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return s.generateTokenPair(user)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// EnsureAdmin creates the bootstrap admin account when it does not exist
// yet. Safe to call on every startup.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	hash := string(hashed)

	return s.users.Create(ctx, domain.User{
		Email:    email,
		Password: &hash,
		Name:     "Admin",
		Role:     domain.RoleAdmin,
	})
}

// Register creates a regular user account with a hashed password.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hash := string(hashed)

	return s.users.Create(ctx, domain.User{
		Email:    email,
		Password: &hash,
		Name:     name,
		Role:     domain.RoleUser,
	})
}

func (s *AuthService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func actorFromClaims(claims jwt.MapClaims) (domain.Actor, error) {
	sub, ok := claims["sub"].(float64)
	if !ok {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	role, _ := claims["role"].(string)
	if role != string(domain.RoleUser) && role != string(domain.RoleAdmin) {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	return domain.Actor{ID: int64(sub), Role: domain.Role(role)}, nil
}

func (s *AuthService) generateTokenPair(user *domain.User) (*TokenPair, error) {
	now := time.Now()

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"type": "access",
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	})
	accessStr, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"type": "refresh",
		"iat":  now.Unix(),
		"exp":  now.Add(7 * 24 * time.Hour).Unix(),
	})
	refreshStr, err := refreshToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessStr, RefreshToken: refreshStr}, nil
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func fetchGoogleUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}
