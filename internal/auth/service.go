package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"founder-portal/ops-portal/ops-portal-backend/internal/config"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service authenticates the single founder account configured for the portal.
type Service struct {
	cfg config.SecurityConfig
	now func() time.Time
}

func NewService(cfg config.SecurityConfig) *Service {
	return &Service{cfg: cfg, now: time.Now}
}

// Token is an issued bearer token
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login checks the credentials and issues a signed token.
func (s *Service) Login(email, password string) (*Token, error) {
	if s.cfg.JWTSecret == "" || s.cfg.FounderEmail == "" || s.cfg.FounderPasswordHash == "" {
		return nil, fmt.Errorf("login is not configured")
	}

	given := strings.ToLower(strings.TrimSpace(email))
	want := strings.ToLower(s.cfg.FounderEmail)
	if subtle.ConstantTimeCompare([]byte(given), []byte(want)) != 1 {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.FounderPasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.cfg.TokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   want,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
		Issuer:    "ops-portal",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expires}, nil
}
