package auth

import (
	"fmt"
	"time"

	"github.com/karobar-pay/karobar_pay/internal/config"
	"github.com/karobar-pay/karobar_pay/internal/identity"
)

// refreshMultiplier sizes the refresh token window relative to the
// access token window.
const refreshMultiplier = 7

// Service issues access tokens for authenticated principals.
type Service struct {
	cfg config.Platform
}

// NewService constructs a token service.
func NewService(cfg config.Platform) *Service {
	return &Service{cfg: cfg}
}

// TokenPair carries the issued tokens and the access token lifetime in
// seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Issue signs an access/refresh token pair for the given principal.
func (s *Service) Issue(kind identity.Kind, subject string) (TokenPair, error) {
	access, err := s.sign(kind, subject, "access", s.cfg.TokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(kind, subject, "refresh", s.cfg.TokenTTL*refreshMultiplier)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.TokenTTL.Seconds()),
	}, nil
}

func (s *Service) sign(kind identity.Kind, subject, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := map[string]any{
		"sub":  subject,
		"kind": string(kind),
		"use":  use,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return SignHS256(claims, []byte(s.cfg.TokenSecret))
}

// Claims is the verified content of an access token.
type Claims struct {
	Subject string
	Kind    identity.Kind
}

// Verify checks an access token and extracts its claims.
func (s *Service) Verify(token string) (Claims, error) {
	raw, err := ParseAndVerifyHS256(token, []byte(s.cfg.TokenSecret))
	if err != nil {
		return Claims{}, err
	}
	if use, _ := raw["use"].(string); use != "access" {
		return Claims{}, fmt.Errorf("not an access token")
	}
	exp, _ := raw["exp"].(float64)
	if int64(exp) <= time.Now().Unix() {
		return Claims{}, fmt.Errorf("token expired")
	}
	sub, _ := raw["sub"].(string)
	if sub == "" {
		return Claims{}, fmt.Errorf("missing subject")
	}
	kind, _ := raw["kind"].(string)
	return Claims{Subject: sub, Kind: identity.Kind(kind)}, nil
}
