package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrMalformedToken = errors.New("malformed token")
)

// TokenClaims represents the claims carried by an access token
type TokenClaims struct {
	Subject   string    `json:"sub"` // user email
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for access token creation and
// validation. Implementations include JWTService (HS256) and PasetoService
// (PASETO v4.local).
type TokenService interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Verify(tokenStr string) (*TokenClaims, error)
}

// JWTService signs and verifies HS256 tokens with a symmetric secret.
// Verification is stateless: any process holding the secret can validate a
// token without shared mutable state.
type JWTService struct {
	secret   []byte
	audience string // empty disables the aud check
}

func NewJWTService(secret []byte, audience string) *JWTService {
	return &JWTService{secret: secret, audience: audience}
}

// Issue creates an HS256 token with the subject and an expiry of now + ttl
func (s *JWTService) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates the signature and expiry (and audience when configured)
// and returns the decoded claims
func (s *JWTService) Verify(tokenStr string) (*TokenClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		default:
			return nil, ErrInvalidToken
		}
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	out := &TokenClaims{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}
